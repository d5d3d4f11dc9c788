package memory

import (
	"context"
	"sort"

	"github.com/site-api/internal/domain"
)

type TestimonialRepo struct{ s *Store }

func NewTestimonialRepo(s *Store) *TestimonialRepo { return &TestimonialRepo{s: s} }

// Add seeds a testimonial. There is no public write path.
func (r *TestimonialRepo) Add(t domain.Testimonial) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.testimonials = append(r.s.testimonials, t)
}

func (r *TestimonialRepo) List(_ context.Context) ([]domain.Testimonial, error) {
	r.s.mu.Lock()
	out := make([]domain.Testimonial, len(r.s.testimonials))
	copy(out, r.s.testimonials)
	r.s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
