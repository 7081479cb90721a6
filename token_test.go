package identity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenUserID(t *testing.T) {
	id, err := (&identity.Token{ID: "42"}).UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = (&identity.Token{Subject: "43"}).UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(43), id)

	var nilTok *identity.Token
	_, err = nilTok.UserID()
	assert.True(t, identity.IsMalformedSubject(err))
}

func TestTokenCloneIsDeep(t *testing.T) {
	verified := time.Now()
	tok := &identity.Token{ID: "1", EmailVerified: &verified, Extra: map[string]any{"a": 1}}

	c := tok.Clone()
	c.Extra["a"] = 2
	*c.EmailVerified = verified.Add(time.Hour)

	assert.Equal(t, 1, tok.Extra["a"])
	assert.True(t, tok.EmailVerified.Equal(verified))
}

func TestTokenJSONUsesCamelCase(t *testing.T) {
	verified := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(&identity.Token{ID: "1", Email: "a@b.c", EmailVerified: &verified})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"1","email":"a@b.c","emailVerified":"2024-05-01T12:00:00Z","lastSignedIn":null}`, string(raw))
}
