package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseIdentityProvider(t *testing.T) {
	p, ok := ParseIdentityProvider(" google ")
	assert.True(t, ok)
	assert.Equal(t, IdentityProviderGoogle, p)

	_, ok = ParseIdentityProvider("github")
	assert.False(t, ok)
}

func TestUserPatchApply(t *testing.T) {
	now := time.Now()
	tag := IdentityProviderOIDC

	assert.True(t, UserPatch{}.IsEmpty())
	assert.Nil(t, UserPatch{}.Apply(nil))

	patch := UserPatch{LastSignedIn: &now, IdentityProvider: &tag}
	assert.False(t, patch.IsEmpty())
	assert.Equal(t, []string{"last_signed_in", "identity_provider"}, patch.Columns())

	user := patch.Apply(&User{ID: 1})
	assert.Equal(t, IdentityProviderOIDC, user.IdentityProvider)
	assert.True(t, user.LastSignedIn.Equal(now))
	assert.False(t, user.IsEmailVerified())

	now = now.Add(time.Hour)
	assert.False(t, user.LastSignedIn.Equal(now), "apply copies the time")
}
