// Package access decides what a signed-in user may do to posts, comments, links
// and accounts. A nil actor is an anonymous visitor and is never granted a rule.
package access

import (
	"presslog/common"
	"presslog/models"
)

type Action string

const (
	Edit   Action = "edit"
	Delete Action = "delete"
	Reply  Action = "reply"
)

func isAuthor(actor *models.User, authorID uint) bool {
	return actor != nil && actor.ID != 0 && actor.ID == authorID
}

func isModerator(actor *models.User) bool {
	return actor != nil && actor.Role.IsModerator()
}

func CanEditPost(actor *models.User, post *models.Post) bool {
	return post != nil && isAuthor(actor, post.AuthorID)
}

// CanDeletePost grants the author and any moderator.
func CanDeletePost(actor *models.User, post *models.Post) bool {
	return post != nil && (isAuthor(actor, post.AuthorID) || isModerator(actor))
}

// CanReplyComment grants the author of the post the comment belongs to. comment.Post
// must be loaded.
func CanReplyComment(actor *models.User, comment *models.Comment) bool {
	return comment != nil && isAuthor(actor, comment.Post.AuthorID)
}

// CanDeleteComment grants the comment author, the post author and moderators.
// comment.Post must be loaded.
func CanDeleteComment(actor *models.User, comment *models.Comment) bool {
	if comment == nil || actor == nil {
		return false
	}
	if comment.AuthorID != nil && isAuthor(actor, *comment.AuthorID) {
		return true
	}
	return isAuthor(actor, comment.Post.AuthorID) || isModerator(actor)
}

func CanEditLink(actor *models.User, _ *models.Link) bool {
	return isModerator(actor)
}

func CanDeleteLink(actor *models.User, _ *models.Link) bool {
	return isModerator(actor)
}

// CanEditUser requires the actor to be the user and an admin.
func CanEditUser(actor *models.User, user *models.User) bool {
	return user != nil && isAuthor(actor, user.ID) && actor.Role.IsAdmin()
}

// Can reports whether actor may apply action to resource. Unknown resource and
// action pairs are denied.
func Can(actor *models.User, resource any, action Action) bool {
	switch r := resource.(type) {
	case *models.Post:
		switch action {
		case Edit:
			return CanEditPost(actor, r)
		case Delete:
			return CanDeletePost(actor, r)
		}
	case *models.Comment:
		switch action {
		case Reply:
			return CanReplyComment(actor, r)
		case Delete:
			return CanDeleteComment(actor, r)
		}
	case *models.Link:
		switch action {
		case Edit:
			return CanEditLink(actor, r)
		case Delete:
			return CanDeleteLink(actor, r)
		}
	case *models.User:
		if action == Edit {
			return CanEditUser(actor, r)
		}
	}
	return false
}

// Check is Can as an error: ErrUnauthenticated for anonymous visitors and
// ErrForbidden when the rule denies.
func Check(actor *models.User, resource any, action Action) error {
	if actor == nil {
		return common.ErrUnauthenticated
	}
	if !Can(actor, resource, action) {
		return common.ErrForbidden
	}
	return nil
}
