package password

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(bcrypt.MinCost, 2)
	require.NoError(t, err)
	return h
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "wonderland")
	require.NoError(t, err)
	assert.NotEqual(t, "wonderland", hash)

	ok, err := h.Verify(ctx, "wonderland", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "looking-glass", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_SaltPerCall(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	first, err := h.Hash(ctx, "same")
	require.NoError(t, err)
	second, err := h.Hash(ctx, "same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHasher_MalformedHash(t *testing.T) {
	h := newTestHasher(t)

	ok, err := h.Verify(context.Background(), "anything", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestHasher_TooLongPassword(t *testing.T) {
	h := newTestHasher(t)

	_, err := h.Hash(context.Background(), strings.Repeat("a", 73))
	require.Error(t, err)
}

func TestHasher_CanceledContext(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost, 1)
	require.NoError(t, err)

	// Hold the only slot so the next call has to wait.
	require.NoError(t, h.pool.Acquire(context.Background(), 1))
	defer h.pool.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.Hash(ctx, "pw")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = h.Verify(ctx, "pw", "hash")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHasher_Defaults(t *testing.T) {
	h, err := NewHasher(0, 0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)

	_, err = NewHasher(bcrypt.MaxCost+1, 1)
	assert.Error(t, err)
}
