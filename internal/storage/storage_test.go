package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNotFoundMapsRecordNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, notFound(fmt.Errorf("query: %w", gorm.ErrRecordNotFound)), ErrNotFound)

	other := errors.New("connection refused")
	assert.Equal(t, other, notFound(other))
}

func TestPublishWithoutRedisIsNoop(t *testing.T) {
	s := NewStorageService(nil, nil)
	assert.NoError(t, s.Publish(t.Context(), "channel", []byte("x")))
}
