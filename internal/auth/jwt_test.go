package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	j := New("secret")
	tok, err := j.Sign("alice", time.Minute)
	require.NoError(t, err)

	sub, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := New("secret-a").Sign("alice", time.Minute)
	require.NoError(t, err)

	_, err = New("secret-b").Verify(tok)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := New("secret").Sign("alice", -time.Minute)
	require.NoError(t, err)

	_, err = New("secret").Verify(tok)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := New("secret").Verify("not.a.token")
	assert.Error(t, err)
}

func TestSignEmptyIdentity(t *testing.T) {
	_, err := New("secret").Sign("", time.Minute)
	assert.Error(t, err)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, Identity(ctx))
	assert.Equal(t, "alice", Identity(WithIdentity(ctx, "alice")))
}
