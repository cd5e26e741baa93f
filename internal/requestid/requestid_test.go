package requestid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	id := Generate()
	ctx := With(context.Background(), id)

	got, ok := From(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestFrom_Absent(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
}

func TestGenerate_Unique(t *testing.T) {
	assert.NotEqual(t, Generate(), Generate())
}
