package testimonial

import (
	"context"
	"errors"
	"testing"

	"github.com/site-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) List(ctx context.Context) ([]domain.Testimonial, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]domain.Testimonial)
	return items, args.Error(1)
}

func TestList_DefaultsAuthor(t *testing.T) {
	st := &mockStore{}
	st.On("List", mock.Anything).Return([]domain.Testimonial{
		{TestimonialID: "t2", Author: "Bo", Message: "great"},
		{TestimonialID: "t1", Author: "  ", Message: "fine"},
	}, nil)

	res, err := NewService(st).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "Bo", res.Items[0].Author)
	assert.Equal(t, domain.DefaultTestimonialAuthor, res.Items[1].Author)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	st := &mockStore{}
	st.On("List", mock.Anything).Return(nil, nil)

	res, err := NewService(st).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Equal(t, 0, res.Count)
}

func TestList_StoreError(t *testing.T) {
	st := &mockStore{}
	st.On("List", mock.Anything).Return(nil, errors.New("scan failed"))

	_, err := NewService(st).List(context.Background())
	assert.Error(t, err)
}
