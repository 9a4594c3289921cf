package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"presslog/models"
	"presslog/slug"
)

// TagName is a normalized entry of a post's tag string.
type TagName struct {
	Name string
	Slug string
}

// SplitTags parses a comma separated tag string. Names are trimmed and
// lowercased; entries without a usable slug are dropped and later entries with
// an already seen slug are ignored.
func SplitTags(raw string) []TagName {
	var out []TagName
	seen := map[string]bool{}
	for _, token := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(token))
		if name == "" {
			continue
		}
		s := slug.Slugify(name)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, TagName{Name: name, Slug: s})
	}
	return out
}

// ApplyTags replaces the tags of post with those named in raw, creating missing
// tags. It runs in tx so the caller's post write and the association commit
// together.
func (s *Store) ApplyTags(ctx context.Context, tx *gorm.DB, post *models.Post, raw string) error {
	tx = tx.WithContext(ctx)

	if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
		return fmt.Errorf("clear tags of post %d: %w", post.ID, err)
	}

	for _, name := range SplitTags(raw) {
		tag, err := s.tagFor(tx, name)
		if err != nil {
			return err
		}

		link := models.PostTag{PostID: post.ID, TagID: tag.ID}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return fmt.Errorf("tag post %d with %s: %w", post.ID, tag.Slug, err)
		}
	}
	return nil
}

func (s *Store) tagFor(tx *gorm.DB, name TagName) (*models.Tag, error) {
	var tag models.Tag
	err := tx.Where("slug = ?", name.Slug).Take(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find tag %s: %w", name.Slug, err)
	}

	tag = models.Tag{Name: name.Name, Slug: name.Slug}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag)
	if res.Error == nil && res.RowsAffected == 1 {
		return &tag, nil
	}
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("create tag %s: %w", name.Slug, res.Error)
	}

	// another writer created it first
	if s.OnTagConflict != nil {
		s.OnTagConflict()
	}
	var existing models.Tag
	if err := tx.Where("slug = ?", name.Slug).Take(&existing).Error; err != nil {
		return nil, fmt.Errorf("reload tag %s: %w", name.Slug, err)
	}
	return &existing, nil
}

func (s *Store) TagBySlug(ctx context.Context, tagSlug string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).Where("slug = ?", tagSlug).Take(&tag).Error; err != nil {
		return nil, notFound(err, "tag "+tagSlug)
	}
	return &tag, nil
}

// TagsOf returns the tags of a post by name.
func (s *Store) TagsOf(ctx context.Context, postID uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.PostTag{}).Select("tag_id").Where("post_id = ?", postID)).
		Order("name").
		Find(&tags).Error
	return tags, err
}

// TagCounts returns every tag with its number of posts, including unused tags.
func (s *Store) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	counts := []models.TagCount{}
	err := s.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.id, tags.name, tags.slug, COUNT(post_tags.post_id) AS count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id, tags.name, tags.slug").
		Order("tags.name").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count tags: %w", err)
	}
	return counts, nil
}
