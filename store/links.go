package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"presslog/common"
	"presslog/models"
)

const LinksPerPage = 80

type LinkInput struct {
	Name        string
	URL         string
	Email       string
	Logo        string
	Description string
}

func (in LinkInput) validate() error {
	ve := &common.ValidationError{}
	check(ve, "name", strings.TrimSpace(in.Name), "required", "Name required")
	check(ve, "link", in.URL, "required,url", "A valid url is required")
	check(ve, "email", in.Email, "required,email", "A valid email is required")
	check(ve, "logo", in.Logo, "omitempty,url", "A valid url is required")
	return ve.OrNil()
}

// ListLinks returns one page of links. Pending links are left out unless
// withPending is set.
func (s *Store) ListLinks(ctx context.Context, withPending bool, page int) (*Page[models.Link], error) {
	p, err := paginate[models.Link](func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&models.Link{})
		if !withPending {
			db = db.Where("passed = ?", true)
		}
		return db
	}, "id", page, LinksPerPage)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return p, nil
}

// LatestLinks returns the n newest passed links.
func (s *Store) LatestLinks(ctx context.Context, n int) ([]models.Link, error) {
	links := []models.Link{}
	err := s.db.WithContext(ctx).Where("passed = ?", true).Order("id DESC").Limit(n).Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("latest links: %w", err)
	}
	return links, nil
}

// AddLink stores a submitted link. Links added by moderators are passed at once.
func (s *Store) AddLink(ctx context.Context, by *models.User, in LinkInput) (*models.Link, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	link := &models.Link{
		Name:        strings.TrimSpace(in.Name),
		URL:         strings.TrimSpace(in.URL),
		Email:       strings.TrimSpace(in.Email),
		Logo:        strings.TrimSpace(in.Logo),
		Description: in.Description,
		Passed:      by != nil && by.Role.IsModerator(),
	}
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

func (s *Store) GetLink(ctx context.Context, id uint) (*models.Link, error) {
	var link models.Link
	if err := s.db.WithContext(ctx).First(&link, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("link %d", id))
	}
	return &link, nil
}

func (s *Store) PassLink(ctx context.Context, link *models.Link) error {
	if err := s.db.WithContext(ctx).Model(link).Update("passed", true).Error; err != nil {
		return fmt.Errorf("pass link %d: %w", link.ID, err)
	}
	link.Passed = true
	return nil
}

func (s *Store) DeleteLink(ctx context.Context, link *models.Link) error {
	if err := s.db.WithContext(ctx).Delete(&models.Link{}, link.ID).Error; err != nil {
		return fmt.Errorf("delete link %d: %w", link.ID, err)
	}
	return nil
}
