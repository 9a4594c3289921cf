package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"presslog/common"
	"presslog/models"
)

type CommentInput struct {
	Email    string
	Nickname string
	Website  string
	Body     string
	IP       string
}

func (in CommentInput) validate(anonymous bool) error {
	ve := &common.ValidationError{}
	if anonymous {
		check(ve, "email", in.Email, "required", "Email required")
		check(ve, "email", in.Email, "email", "A valid email address is required")
		check(ve, "nickname", strings.TrimSpace(in.Nickname), "required", "Nickname required")
	}
	check(ve, "website", in.Website, "omitempty,url", "A valid url is required")
	check(ve, "comment", strings.TrimSpace(in.Body), "required", "Comment required")
	return ve.OrNil()
}

// AddComment stores a comment on post, as a reply to parentID when it is set.
// A logged in author is recorded in place of the anonymous fields.
func (s *Store) AddComment(ctx context.Context, post *models.Post, parentID *uint, author *models.User, in CommentInput) (*models.Comment, error) {
	if err := in.validate(author == nil); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   post.ID,
		ParentID: parentID,
		Email:    strings.TrimSpace(in.Email),
		Nickname: strings.TrimSpace(in.Nickname),
		Website:  strings.TrimSpace(in.Website),
		Body:     in.Body,
		IP:       common.IPToUint32(in.IP),
	}
	if author != nil {
		comment.AuthorID = &author.ID
		comment.Email = author.Email
		comment.Nickname = author.Nickname
		if comment.Nickname == "" {
			comment.Nickname = author.Username
		}
	}

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		if parentID != nil {
			var parent models.Comment
			if err := tx.First(&parent, *parentID).Error; err != nil {
				return notFound(err, fmt.Sprintf("comment %d", *parentID))
			}
			if parent.PostID != post.ID {
				return common.NewValidationError("parent_id", "The comment you reply to belongs to another post")
			}
		}

		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return s.recountComments(tx, post)
	})
	if err != nil {
		return nil, err
	}

	comment.Post = *post
	comment.Author = author
	return comment, nil
}

func (s *Store) recountComments(tx *gorm.DB, post *models.Post) error {
	var n int64
	if err := tx.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&n).Error; err != nil {
		return fmt.Errorf("count comments of post %d: %w", post.ID, err)
	}
	if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumn("num_comments", n).Error; err != nil {
		return fmt.Errorf("update comment count of post %d: %w", post.ID, err)
	}
	post.NumComments = int(n)
	return nil
}

// GetComment loads a comment with its post, which the access rules need.
func (s *Store) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("Post").Preload("Author").First(&comment, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("comment %d", id))
	}
	return &comment, nil
}

// Comments returns the comments of a post in ascending id order.
func (s *Store) Comments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).Preload("Author").Where("post_id = ?", postID).Order("id").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comments of post %d: %w", postID, err)
	}
	return comments, nil
}

// LatestComments returns the n newest comments with their posts.
func (s *Store) LatestComments(ctx context.Context, n int) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).Preload("Post").Preload("Author").Order("id DESC").Limit(n).Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("latest comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment and its replies and recounts the post.
func (s *Store) DeleteComment(ctx context.Context, comment *models.Comment) error {
	return s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Comment{}, comment.ID).Error; err != nil {
			return fmt.Errorf("delete comment %d: %w", comment.ID, err)
		}
		return s.recountComments(tx, &comment.Post)
	})
}
