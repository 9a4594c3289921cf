package models

import "fmt"

// URL is the canonical address of a post, built from its UTC creation date.
func (p *Post) URL() string {
	d := p.CreatedAt.UTC()
	return fmt.Sprintf("/p/%d/%d/%d/%s", d.Year(), int(d.Month()), d.Day(), p.Slug)
}

// PublishedOn reports whether the post was created on the given UTC date.
func (p *Post) PublishedOn(year, month, day int) bool {
	d := p.CreatedAt.UTC()
	return d.Year() == year && int(d.Month()) == month && d.Day() == day
}

func (c *Comment) URL() string {
	return fmt.Sprintf("%s#comment-%d", c.Post.URL(), c.ID)
}
