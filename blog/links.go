package blog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"presslog/access"
	"presslog/cache"
	"presslog/common"
	"presslog/models"
	"presslog/store"
)

type linkForm struct {
	Name        string `form:"name" json:"name"`
	URL         string `form:"link" json:"link"`
	Email       string `form:"email" json:"email"`
	Logo        string `form:"logo" json:"logo"`
	Description string `form:"description" json:"description"`
}

type linkView struct {
	models.Link
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// links lists passed links to visitors. Logged in users also see the pending ones.
func (b *BlogModule) links(c *gin.Context) {
	actor := common.Actor(c)
	page, err := b.store.ListLinks(c.Request.Context(), actor != nil, pageParam(c))
	if err != nil {
		b.respondError(c, err)
		return
	}

	links := make([]linkView, len(page.Items))
	for i := range page.Items {
		l := &page.Items[i]
		links[i] = linkView{
			Link:      *l,
			CanEdit:   access.Can(actor, l, access.Edit),
			CanDelete: access.Can(actor, l, access.Delete),
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"links":    links,
		"page":     page.Page,
		"pages":    page.Pages,
		"has_prev": page.HasPrev,
		"has_next": page.HasNext,
	})
}

func (b *BlogModule) addLink(c *gin.Context) {
	var form linkForm
	if err := c.ShouldBind(&form); err != nil {
		b.respondError(c, common.FromBinding(err))
		return
	}

	link, err := b.store.AddLink(c.Request.Context(), common.Actor(c), store.LinkInput{
		Name:        form.Name,
		URL:         form.URL,
		Email:       form.Email,
		Logo:        form.Logo,
		Description: form.Description,
	})
	if err != nil {
		b.respondError(c, err)
		return
	}
	if link.Passed {
		cache.InvalidateLinks(b.env.Cache)
	}
	c.JSON(http.StatusCreated, link)
}
