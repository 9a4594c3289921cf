package blog

import (
	"time"

	"github.com/gin-gonic/gin"

	"presslog/access"
	"presslog/markup"
	"presslog/models"
	"presslog/store"
	"presslog/views"
)

type tagLink struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

type authorView struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	URL      string `json:"url"`
}

type postSummary struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	URL         string     `json:"url"`
	Author      authorView `json:"author"`
	Summary     string     `json:"summary"`
	ReadMore    bool       `json:"read_more"`
	Tags        []tagLink  `json:"tags"`
	NumComments int        `json:"num_comments"`
	CreatedAt   time.Time  `json:"created_at"`
}

type postLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type postDetail struct {
	postSummary
	HTML      string        `json:"html"`
	CanEdit   bool          `json:"can_edit"`
	CanDelete bool          `json:"can_delete"`
	Prev      *postLink     `json:"prev"`
	Next      *postLink     `json:"next"`
	Comments  []commentView `json:"comments"`
}

type commentView struct {
	ID        uint          `json:"id"`
	ParentID  *uint         `json:"parent_id,omitempty"`
	Author    string        `json:"author"`
	Website   string        `json:"website,omitempty"`
	HTML      string        `json:"html"`
	CreatedAt time.Time     `json:"created_at"`
	Depth     int           `json:"depth"`
	CanReply  bool          `json:"can_reply"`
	CanDelete bool          `json:"can_delete"`
	Children  []commentView `json:"children"`
}

func tagLinks(raw string) []tagLink {
	names := store.SplitTags(raw)
	out := make([]tagLink, len(names))
	for i, t := range names {
		out[i] = tagLink{Name: t.Name, Slug: t.Slug, URL: "/tags/" + t.Slug}
	}
	return out
}

func presentAuthor(u models.User) authorView {
	return authorView{Username: u.Username, Nickname: u.Nickname, URL: "/people/" + u.Username}
}

func presentSummary(p *models.Post) postSummary {
	summary, more := views.Summary(markup.Post(p.Content), p.URL())
	return postSummary{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		URL:         p.URL(),
		Author:      presentAuthor(p.Author),
		Summary:     summary,
		ReadMore:    more,
		Tags:        tagLinks(p.TagString),
		NumComments: p.NumComments,
		CreatedAt:   p.CreatedAt,
	}
}

func presentLink(p *models.Post) *postLink {
	if p == nil {
		return nil
	}
	return &postLink{Title: p.Title, URL: p.URL()}
}

// presentComments renders a comment tree for actor. The cached comments carry no
// post, so post is attached before the access rules run.
func presentComments(actor *models.User, post *models.Post, nodes []*views.CommentNode) []commentView {
	out := make([]commentView, 0, len(nodes))
	for _, n := range nodes {
		c := &n.Comment
		c.Post = *post
		out = append(out, commentView{
			ID:        c.ID,
			ParentID:  c.ParentID,
			Author:    c.DisplayName(),
			Website:   c.Website,
			HTML:      markup.Comment(c.Body),
			CreatedAt: c.CreatedAt,
			Depth:     n.Depth,
			CanReply:  access.Can(actor, c, access.Reply),
			CanDelete: access.Can(actor, c, access.Delete),
			Children:  presentComments(actor, post, n.Children),
		})
	}
	return out
}

func presentPosts(page *store.Page[models.Post]) gin.H {
	posts := make([]postSummary, len(page.Items))
	for i := range page.Items {
		posts[i] = presentSummary(&page.Items[i])
	}
	return gin.H{
		"posts":    posts,
		"page":     page.Page,
		"pages":    page.Pages,
		"total":    page.Total,
		"has_prev": page.HasPrev,
		"has_next": page.HasNext,
	}
}
