package blog

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"presslog/cache"
	"presslog/models"
	"presslog/views"
)

type latestComment struct {
	ID        uint      `json:"id"`
	Author    string    `json:"author"`
	PostTitle string    `json:"post_title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// sidebar returns the fragments shown beside every page. Each is read through the
// cache and recomputed on a miss.
func (b *BlogModule) sidebar(c *gin.Context) {
	ctx := c.Request.Context()

	cloud, err := b.tagCloud(c)
	if err != nil {
		b.respondError(c, err)
		return
	}

	links, err := cache.Fetch(b.env.Cache, cache.KeyLinks, func() ([]models.Link, error) {
		return b.store.LatestLinks(ctx, SidebarLinks)
	})
	if err != nil {
		b.respondError(c, err)
		return
	}

	now := time.Now().UTC()
	archives, err := cache.Fetch(b.env.Cache, cache.ArchivesKey(now), func() ([]views.ArchiveMonth, error) {
		earliest, err := b.store.EarliestPostDate(ctx)
		if err != nil {
			return nil, err
		}
		return views.ArchiveLinks(views.Months(earliest, now)), nil
	})
	if err != nil {
		b.respondError(c, err)
		return
	}

	comments, err := cache.Fetch(b.env.Cache, cache.KeyLatestComments, func() ([]latestComment, error) {
		latest, err := b.store.LatestComments(ctx, SidebarComments)
		if err != nil {
			return nil, err
		}
		out := make([]latestComment, len(latest))
		for i := range latest {
			cm := &latest[i]
			out[i] = latestComment{
				ID:        cm.ID,
				Author:    cm.DisplayName(),
				PostTitle: cm.Post.Title,
				URL:       cm.URL(),
				CreatedAt: cm.CreatedAt,
			}
		}
		return out, nil
	})
	if err != nil {
		b.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":            cloud,
		"links":           links,
		"archives":        archives,
		"latest_comments": comments,
	})
}
