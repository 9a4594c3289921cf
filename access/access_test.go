package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"presslog/common"
	"presslog/models"
)

var (
	author    = &models.User{ID: 1, Username: "author", Role: models.RoleMember}
	member    = &models.User{ID: 2, Username: "member", Role: models.RoleMember}
	moderator = &models.User{ID: 3, Username: "mod", Role: models.RoleModerator}
	admin     = &models.User{ID: 4, Username: "admin", Role: models.RoleAdmin}
	commenter = &models.User{ID: 5, Username: "commenter", Role: models.RoleMember}
)

func uintPtr(v uint) *uint { return &v }

func TestPostRules(t *testing.T) {
	post := &models.Post{ID: 10, AuthorID: author.ID}

	tests := []struct {
		name   string
		actor  *models.User
		action Action
		want   bool
	}{
		{"author edits", author, Edit, true},
		{"member edits", member, Edit, false},
		{"moderator edits", moderator, Edit, false},
		{"author deletes", author, Delete, true},
		{"member deletes", member, Delete, false},
		{"moderator deletes", moderator, Delete, true},
		{"admin deletes", admin, Delete, true},
		{"anonymous deletes", nil, Delete, false},
		{"reply is not a post action", author, Reply, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.actor, post, tt.action))
		})
	}
}

func TestCommentRules(t *testing.T) {
	post := models.Post{ID: 10, AuthorID: author.ID}
	byCommenter := &models.Comment{ID: 1, PostID: 10, Post: post, AuthorID: uintPtr(commenter.ID)}
	anonymous := &models.Comment{ID: 2, PostID: 10, Post: post, Nickname: "guest"}

	tests := []struct {
		name    string
		actor   *models.User
		comment *models.Comment
		action  Action
		want    bool
	}{
		{"post author replies", author, byCommenter, Reply, true},
		{"commenter replies", commenter, byCommenter, Reply, false},
		{"moderator replies", moderator, byCommenter, Reply, false},
		{"comment author deletes", commenter, byCommenter, Delete, true},
		{"post author deletes", author, anonymous, Delete, true},
		{"moderator deletes", moderator, anonymous, Delete, true},
		{"member deletes", member, byCommenter, Delete, false},
		{"anonymous deletes", nil, anonymous, Delete, false},
		{"edit is not a comment action", author, byCommenter, Edit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.actor, tt.comment, tt.action))
		})
	}
}

func TestLinkRules(t *testing.T) {
	link := &models.Link{ID: 1}

	assert.False(t, Can(member, link, Edit))
	assert.False(t, Can(member, link, Delete))
	assert.True(t, Can(moderator, link, Edit))
	assert.True(t, Can(admin, link, Delete))
	assert.False(t, Can(nil, link, Edit))
}

func TestUserEditRule(t *testing.T) {
	assert.True(t, Can(admin, admin, Edit))
	assert.False(t, Can(admin, member, Edit), "an admin cannot edit someone else")
	assert.False(t, Can(member, member, Edit), "a member cannot edit themselves")
	assert.False(t, Can(moderator, moderator, Edit))
	assert.False(t, Can(nil, admin, Edit))
}

func TestUnknownPairsDeny(t *testing.T) {
	assert.False(t, Can(admin, &models.Tag{ID: 1}, Edit))
	assert.False(t, Can(admin, "post", Delete))
	assert.False(t, Can(admin, (*models.Post)(nil), Delete))
}

func TestCheck(t *testing.T) {
	post := &models.Post{ID: 10, AuthorID: author.ID}

	assert.NoError(t, Check(author, post, Delete))
	assert.ErrorIs(t, Check(member, post, Delete), common.ErrForbidden)
	assert.ErrorIs(t, Check(nil, post, Delete), common.ErrUnauthenticated)
}
