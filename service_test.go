package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestServiceSignInDenied(t *testing.T) {
	store := new(MockUserStore)
	sink := &capturingSink{}
	svc := identity.NewService(
		newTestReconciler(store, &testClock{now: baseTime}),
		identity.WithSignInGate(identity.SignInGateFunc(func(context.Context, identity.Profile) (bool, error) {
			return false, nil
		})),
		identity.WithServiceLogger(nopLogger{}),
		identity.WithServiceActivitySink(sink),
		identity.WithServiceClock(func() time.Time { return baseTime }),
	)

	tok, err := svc.SignIn(context.Background(), identity.SignInEvent{
		Profile: identity.Profile{ID: "1", Email: "ada@example.com"},
	})
	assert.Nil(t, tok)
	assert.ErrorIs(t, err, identity.ErrSignInDenied)
	assert.Equal(t, []identity.ActivityEventType{identity.ActivityEventSignInDenied}, sink.types())
	require.Len(t, sink.events, 1)
	assert.True(t, sink.events[0].OccurredAt.Equal(baseTime))
	store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestServiceSignInLinksNewAccount(t *testing.T) {
	store := newMemoryStore(&identity.User{ID: 7, Name: "Ada", Email: "ada@example.com"})
	linker := new(MockAccountLinker)
	linker.On("Link", mock.Anything, int64(7), map[string]any{
		"provider":          "google",
		"providerAccountId": "g-1",
	}).Return(nil).Once()

	sink := &capturingSink{}
	svc := identity.NewService(
		newTestReconciler(store, &testClock{now: baseTime}),
		identity.WithAccountLinker(linker),
		identity.WithServiceLogger(nopLogger{}),
		identity.WithServiceActivitySink(sink),
	)

	tok, err := svc.SignIn(context.Background(), identity.SignInEvent{
		Profile: identity.Profile{ID: "7", Email: "ada@example.com"},
		Account: map[string]any{
			"provider":           "google",
			"providerAccountId":  "g-1",
			"not-before-policy":  0,
			"refresh_expires_in": 1800,
		},
		NewAccount: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "7", tok.ID)
	require.NotNil(t, tok.EmailVerified)
	assert.Equal(t, identity.IdentityProviderGoogle, store.user(7).IdentityProvider)
	assert.Equal(t, []identity.ActivityEventType{identity.ActivityEventAccountLinked}, sink.types())
	linker.AssertExpectations(t)
}

func TestServiceSignInExistingAccountSkipsLinker(t *testing.T) {
	store := newMemoryStore(&identity.User{ID: 7, Email: "ada@example.com"})
	linker := new(MockAccountLinker)

	svc := identity.NewService(
		newTestReconciler(store, &testClock{now: baseTime}),
		identity.WithAccountLinker(linker),
		identity.WithServiceLogger(nopLogger{}),
	)

	_, err := svc.SignUp(context.Background(), identity.SignInEvent{
		Profile: identity.Profile{ID: "7", Email: "ada@example.com"},
		Account: map[string]any{"provider": "google"},
	})
	require.NoError(t, err)

	linker.AssertNotCalled(t, "Link", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, identity.IdentityProviderGoogle, store.user(7).IdentityProvider)
}

func TestServiceSignInWithoutAccount(t *testing.T) {
	store := newMemoryStore(&identity.User{ID: 7, Email: "ada@example.com"})
	svc := identity.NewService(newTestReconciler(store, &testClock{now: baseTime}))

	tok, err := svc.SignIn(context.Background(), identity.SignInEvent{
		Profile: identity.Profile{ID: "7", Email: "ada@example.com"},
	})
	require.NoError(t, err)

	require.NotNil(t, tok.EmailVerified, "first touch grants verification")
	assert.Equal(t, identity.IdentityProvider(""), store.user(7).IdentityProvider)
}

func TestServiceRefreshAndSession(t *testing.T) {
	store := newMemoryStore(&identity.User{ID: 7, Name: "Ada", Email: "ada@example.com"})
	clock := &testClock{now: baseTime}
	svc := identity.NewService(newTestReconciler(store, clock))

	tok, err := svc.Refresh(context.Background(), &identity.Token{ID: "7"})
	require.NoError(t, err)

	session, err := svc.Session(tok, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), session.User.ID)
	assert.Equal(t, "Ada", session.User.Name)
	assert.True(t, session.IsEmailVerified())

	writes := store.totalUpdates()
	_, err = svc.Refresh(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, writes, store.totalUpdates(), "a fresh token does not touch the store")
}
