package identity_test

import (
	"fmt"
	"testing"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("failed to find user 1: %w", identity.ErrUserNotFound)
	assert.True(t, identity.IsNotFound(wrapped))
	assert.False(t, identity.IsMalformedSubject(wrapped))

	_, err := (&identity.Token{ID: "x1"}).UserID()
	assert.True(t, identity.IsMalformedSubject(err))
	assert.False(t, identity.IsNotFound(err))
}
