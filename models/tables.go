package models

import "time"

type User struct {
	ID            uint          `gorm:"primary_key;autoIncrement" json:"id"`
	Username      string        `gorm:"size:20;unique;not null" json:"username"`
	Nickname      string        `gorm:"size:20" json:"nickname"`
	Email         string        `gorm:"size:100;unique;not null" json:"-"`
	PasswordHash  string        `gorm:"column:password;not null" json:"-"` // json:"-" keeps hashes out of API responses
	Role          Role          `gorm:"default:100" json:"role"`
	ActivationKey string        `gorm:"size:40" json:"-"`
	DateJoined    time.Time     `json:"date_joined"`
	LastLogin     time.Time     `json:"last_login"`
	LastRequest   time.Time     `json:"-"`
	Block         bool          `gorm:"default:false" json:"block"`
	Twitter       *TwitterToken `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// UserCode is a single-use signup invitation carrying the role the new account receives.
type UserCode struct {
	ID   uint   `gorm:"primary_key;autoIncrement" json:"id"`
	Code string `gorm:"size:20;not null;index" json:"code"`
	Role Role   `gorm:"default:100" json:"role"`
}

type TwitterToken struct {
	ID           uint   `gorm:"primary_key;autoIncrement"`
	UserID       uint   `gorm:"not null;uniqueIndex"`
	AccessToken  string `gorm:"not null"`
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

type Post struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	Title       string    `gorm:"size:100;index" json:"title"`
	Slug        string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Content     string    `gorm:"type:text" json:"content"`
	TagString   string    `gorm:"column:tags;size:100;index" json:"tags"`
	NumComments int       `gorm:"default:0" json:"num_comments"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Tag struct {
	ID   uint   `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:80;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:80;uniqueIndex;not null" json:"slug"`
}

type PostTag struct {
	PostID uint `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`
	Post   Post `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tag    Tag  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Comment struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  *uint     `gorm:"index" json:"author_id,omitempty"` // nil for anonymous visitors
	Author    *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	Parent    *Comment  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Email     string    `gorm:"size:50" json:"-"`
	Nickname  string    `gorm:"size:50" json:"nickname"`
	Website   string    `gorm:"size:100" json:"website,omitempty"`
	Body      string    `gorm:"column:comment;type:text" json:"comment"`
	IP        uint32    `json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// DisplayName prefers the registered author's nickname over the anonymous one.
func (c *Comment) DisplayName() string {
	if c.Author != nil && c.Author.ID != 0 {
		if c.Author.Nickname != "" {
			return c.Author.Nickname
		}
		return c.Author.Username
	}
	return c.Nickname
}

type Link struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:50;not null" json:"name"`
	URL         string    `gorm:"column:link;size:100;not null" json:"link"`
	Logo        string    `gorm:"size:100" json:"logo,omitempty"`
	Description string    `gorm:"size:100" json:"description"`
	Email       string    `gorm:"size:50" json:"-"`
	Passed      bool      `gorm:"default:false;index" json:"passed"`
	CreatedAt   time.Time `json:"created_at"`
}
