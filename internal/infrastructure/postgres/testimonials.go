package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/site-api/internal/domain"
)

type TestimonialRepo struct{ pool *pgxpool.Pool }

func NewTestimonialRepo(pool *pgxpool.Pool) *TestimonialRepo { return &TestimonialRepo{pool: pool} }

func (r *TestimonialRepo) List(ctx context.Context) ([]domain.Testimonial, error) {
	const q = `
SELECT testimonial_id, sender_id, author, message, created_at
FROM testimonials ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Testimonial, error) {
		var t domain.Testimonial
		err := row.Scan(&t.TestimonialID, &t.SenderID, &t.Author, &t.Message, &t.CreatedAt)
		return t, err
	})
}
