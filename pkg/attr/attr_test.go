package attr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", CorrelationID(ctx))

	ctx = WithCorrelationID(ctx, "req-123")
	assert.Equal(t, "req-123", CorrelationID(ctx))
	assert.Equal(t, "req-123", ExtractCorrelationID(ctx).Value.String())

	// empty IDs never overwrite an existing one
	ctx = WithCorrelationID(ctx, "")
	assert.Equal(t, "req-123", CorrelationID(ctx))
}

func TestError(t *testing.T) {
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
}
