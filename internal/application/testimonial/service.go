package testimonial

import (
	"context"
	"strings"

	"github.com/site-api/internal/domain"
)

type ListResult struct {
	Count int                  `json:"count"`
	Items []domain.Testimonial `json:"items"`
}

type Service interface {
	List(ctx context.Context) (*ListResult, error)
}

type testimonialStore interface {
	List(ctx context.Context) ([]domain.Testimonial, error)
}

type service struct {
	repo testimonialStore
}

func NewService(repo testimonialStore) Service {
	return &service{repo: repo}
}

// List returns testimonials newest first, with a placeholder author where none was given.
func (s *service) List(ctx context.Context) (*ListResult, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Testimonial{}
	}
	for i := range items {
		if strings.TrimSpace(items[i].Author) == "" {
			items[i].Author = domain.DefaultTestimonialAuthor
		}
	}
	return &ListResult{Count: len(items), Items: items}, nil
}
