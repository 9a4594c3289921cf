package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"presslog/common"
	"presslog/models"
	"presslog/slug"
)

const (
	PostsPerPage = 40
	MaxSlugLen   = 50
	MaxTitleLen  = 100
)

// PostQuery narrows a post listing. Zero fields do not filter.
type PostQuery struct {
	Year, Month, Day int
	AuthorID         uint
	TagID            uint
	// Keywords must all match the title, content or tags.
	Keywords []string
}

// DateRange returns the half-open interval selected by Year, Month and Day.
func (q PostQuery) DateRange() (time.Time, time.Time, bool) {
	if q.Year == 0 {
		return time.Time{}, time.Time{}, false
	}
	month, day := time.January, 1
	if q.Month > 0 {
		month = time.Month(q.Month)
	}
	if q.Day > 0 {
		day = q.Day
	}
	start := time.Date(q.Year, month, day, 0, 0, 0, 0, time.UTC)

	switch {
	case q.Day > 0:
		return start, start.AddDate(0, 0, 1), true
	case q.Month > 0:
		return start, start.AddDate(0, 1, 0), true
	default:
		return start, start.AddDate(1, 0, 0), true
	}
}

// keywords match literally, so LIKE wildcards are escaped
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (s *Store) postQuery(ctx context.Context, q PostQuery) *gorm.DB {
	db := s.db.WithContext(ctx).Model(&models.Post{})

	if start, end, ok := q.DateRange(); ok {
		db = db.Where("created_at >= ? AND created_at < ?", start, end)
	}
	if q.AuthorID != 0 {
		db = db.Where("author_id = ?", q.AuthorID)
	}
	if q.TagID != 0 {
		db = db.Where("id IN (?)", s.db.Model(&models.PostTag{}).Select("post_id").Where("tag_id = ?", q.TagID))
	}
	for _, kw := range q.Keywords {
		like := "%" + likeEscaper.Replace(kw) + "%"
		db = db.Where(`(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\')`, like, like, like)
	}
	return db
}

// ListPosts returns one page of posts matching q, newest first.
func (s *Store) ListPosts(ctx context.Context, q PostQuery, page int) (*Page[models.Post], error) {
	p, err := paginate[models.Post](func() *gorm.DB {
		return s.postQuery(ctx, q)
	}, "created_at DESC, id DESC", page, PostsPerPage, "Author")
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return p, nil
}

// LatestPosts returns the n newest posts matching q.
func (s *Store) LatestPosts(ctx context.Context, q PostQuery, n int) ([]models.Post, error) {
	posts := []models.Post{}
	err := s.postQuery(ctx, q).Preload("Author").Order("created_at DESC, id DESC").Limit(n).Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("latest posts: %w", err)
	}
	return posts, nil
}

// SplitKeywords turns a search string into keywords.
func SplitKeywords(q string) []string {
	return strings.Fields(q)
}

func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("post %d", id))
	}
	return &post, nil
}

func (s *Store) PostBySlug(ctx context.Context, postSlug string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").Where("slug = ?", postSlug).Take(&post).Error; err != nil {
		return nil, notFound(err, "post "+postSlug)
	}
	return &post, nil
}

// Adjacent returns the posts published right before and after post, either of
// which may be nil.
func (s *Store) Adjacent(ctx context.Context, post *models.Post) (prev, next *models.Post, err error) {
	db := s.db.WithContext(ctx)

	var older []models.Post
	err = db.Where("created_at < ? OR (created_at = ? AND id < ?)", post.CreatedAt, post.CreatedAt, post.ID).
		Order("created_at DESC, id DESC").Limit(1).Find(&older).Error
	if err != nil {
		return nil, nil, fmt.Errorf("previous post: %w", err)
	}

	var newer []models.Post
	err = db.Where("created_at > ? OR (created_at = ? AND id > ?)", post.CreatedAt, post.CreatedAt, post.ID).
		Order("created_at ASC, id ASC").Limit(1).Find(&newer).Error
	if err != nil {
		return nil, nil, fmt.Errorf("next post: %w", err)
	}

	if len(older) > 0 {
		prev = &older[0]
	}
	if len(newer) > 0 {
		next = &newer[0]
	}
	return prev, next, nil
}

// EarliestPostDate returns the creation time of the oldest post, or nil when
// there are no posts.
func (s *Store) EarliestPostDate(ctx context.Context) (*time.Time, error) {
	var posts []models.Post
	if err := s.db.WithContext(ctx).Order("created_at ASC").Limit(1).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("earliest post: %w", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0].CreatedAt, nil
}

type PostInput struct {
	Title   string
	Slug    string
	Content string
	Tags    string
}

// postSlug validates in and picks the slug to store. For an edit, existing is
// the post being changed and a blank slug keeps its current one.
func (s *Store) postSlug(tx *gorm.DB, in PostInput, existing *models.Post) (string, error) {
	ve := &common.ValidationError{}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		ve.Add("title", "Title required")
	} else if utf8.RuneCountInString(title) > MaxTitleLen {
		ve.Add("title", "Title is too long")
	}
	if strings.TrimSpace(in.Tags) == "" {
		ve.Add("tags", "Tags required")
	}

	explicit := strings.TrimSpace(in.Slug) != ""
	if len(in.Slug) > MaxSlugLen {
		ve.Add("slug", "Slug must be less than 50 characters")
		return "", ve
	}

	var candidate string
	switch {
	case explicit:
		candidate = slug.Truncate(slug.Slugify(in.Slug), MaxSlugLen)
	case existing != nil:
		return existing.Slug, ve.OrNil()
	default:
		candidate = slug.Truncate(slug.Slugify(title), MaxSlugLen)
	}

	if candidate == "" {
		if title != "" || explicit {
			ve.Add("slug", "Slug is required")
		}
		return "", ve.OrNil()
	}

	taken := tx.Model(&models.Post{}).Where("slug = ?", candidate)
	if existing != nil {
		taken = taken.Where("id <> ?", existing.ID)
	}
	var n int64
	if err := taken.Count(&n).Error; err != nil {
		return "", err
	}
	if n > 0 {
		if explicit {
			ve.Add("slug", "This slug is taken")
		} else {
			ve.Add("slug", "Slug is required")
		}
	}
	return candidate, ve.OrNil()
}

// CreatePost validates in and stores a new post by author with its tags.
func (s *Store) CreatePost(ctx context.Context, author *models.User, in PostInput) (*models.Post, error) {
	post := &models.Post{
		AuthorID:  author.ID,
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		TagString: strings.TrimSpace(in.Tags),
	}

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		postSlug, err := s.postSlug(tx, in, nil)
		if err != nil {
			return err
		}
		post.Slug = postSlug

		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.NewValidationError("slug", "This slug is taken")
			}
			return fmt.Errorf("create post: %w", err)
		}
		return s.ApplyTags(ctx, tx, post, post.TagString)
	})
	if err != nil {
		return nil, err
	}

	post.Author = *author
	return post, nil
}

// UpdatePost applies in to post and replaces its tags.
func (s *Store) UpdatePost(ctx context.Context, post *models.Post, in PostInput) error {
	return s.Transaction(ctx, func(tx *gorm.DB) error {
		postSlug, err := s.postSlug(tx, in, post)
		if err != nil {
			return err
		}

		post.Title = strings.TrimSpace(in.Title)
		post.Slug = postSlug
		post.Content = in.Content
		post.TagString = strings.TrimSpace(in.Tags)

		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.NewValidationError("slug", "This slug is taken")
			}
			return fmt.Errorf("update post %d: %w", post.ID, err)
		}
		return s.ApplyTags(ctx, tx, post, post.TagString)
	})
}

// DeletePost removes a post with its comments and tag associations.
func (s *Store) DeletePost(ctx context.Context, post *models.Post) error {
	return s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments of post %d: %w", post.ID, err)
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
			return fmt.Errorf("delete tags of post %d: %w", post.ID, err)
		}
		if err := tx.Delete(&models.Post{}, post.ID).Error; err != nil {
			return fmt.Errorf("delete post %d: %w", post.ID, err)
		}
		return nil
	})
}
