package dynamo

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/site-api/internal/domain"
)

type TestimonialRepo struct {
	client    API
	tableName string
}

func NewTestimonialRepo(client API, tableName string) *TestimonialRepo {
	return &TestimonialRepo{client: client, tableName: tableName}
}

// List scans the whole table and returns testimonials newest first.
func (r *TestimonialRepo) List(ctx context.Context) ([]domain.Testimonial, error) {
	var all []domain.Testimonial
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Testimonial
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}
