package id

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesAsULID(t *testing.T) {
	_, err := ulid.Parse(New())
	require.NoError(t, err)
}

func TestNew_SortsInGenerationOrder(t *testing.T) {
	prev := New()
	for i := 0; i < 500; i++ {
		next := New()
		assert.Less(t, prev, next)
		prev = next
	}
}
