package models

// TagCount is a tag with the number of posts carrying it.
type TagCount struct {
	Tag
	Count int `json:"count"`
}
