package blog

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"presslog/markup"
	"presslog/models"
	"presslog/store"
)

const atomContentType = "application/atom+xml; charset=utf-8"

type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomAuthor struct {
	Name string `xml:"name"`
	URI  string `xml:"uri,omitempty"`
}

type atomText struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	ID        string     `xml:"id"`
	Link      atomLink   `xml:"link"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
	Author    atomAuthor `xml:"author"`
	Content   atomText   `xml:"content"`
}

func (b *BlogModule) absolute(path string) string {
	return strings.TrimRight(b.env.Config.Domain, "/") + path
}

func (b *BlogModule) buildFeed(title, path string, posts []models.Post) *atomFeed {
	feed := &atomFeed{
		Title: title,
		ID:    b.absolute(path),
		Links: []atomLink{
			{Href: b.absolute(path), Rel: "self"},
			{Href: b.absolute("/")},
		},
	}

	updated := time.Time{}
	for i := range posts {
		p := &posts[i]
		if p.UpdatedAt.After(updated) {
			updated = p.UpdatedAt
		}
		url := b.absolute(p.URL())
		feed.Entries = append(feed.Entries, atomEntry{
			Title:     p.Title,
			ID:        url,
			Link:      atomLink{Href: url},
			Published: p.CreatedAt.UTC().Format(time.RFC3339),
			Updated:   p.UpdatedAt.UTC().Format(time.RFC3339),
			Author:    atomAuthor{Name: p.Author.Username, URI: b.absolute("/people/" + p.Author.Username)},
			Content:   atomText{Type: "html", Body: markup.Post(p.Content)},
		})
	}
	if updated.IsZero() {
		updated = time.Now()
	}
	feed.Updated = updated.UTC().Format(time.RFC3339)
	return feed
}

func (b *BlogModule) writeFeed(c *gin.Context, feed *atomFeed) {
	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		b.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, atomContentType, append([]byte(xml.Header), out...))
}

func (b *BlogModule) feed(c *gin.Context) {
	posts, err := b.store.LatestPosts(c.Request.Context(), store.PostQuery{}, FeedSize)
	if err != nil {
		b.respondError(c, err)
		return
	}
	b.writeFeed(c, b.buildFeed(b.env.Config.BlogTitle, "/feeds/", posts))
}

func (b *BlogModule) tagFeed(c *gin.Context) {
	ctx := c.Request.Context()
	tag, err := b.store.TagBySlug(ctx, c.Param("slug"))
	if err != nil {
		b.respondError(c, err)
		return
	}
	posts, err := b.store.LatestPosts(ctx, store.PostQuery{TagID: tag.ID}, FeedSize)
	if err != nil {
		b.respondError(c, err)
		return
	}
	title := b.env.Config.BlogTitle + ": " + tag.Name
	b.writeFeed(c, b.buildFeed(title, "/feeds/tag/"+tag.Slug, posts))
}
