package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, zap.NewNop())
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Set then Get returns fields", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, OptionKey(1), map[string]string{"runtime": "3-7분", "age_group": "4-6세"}))

		got, err := store.Get(ctx, OptionKey(1))
		require.NoError(t, err)
		assert.Equal(t, "3-7분", got["runtime"])
		assert.Equal(t, "4-6세", got["age_group"])
	})

	t.Run("Missing key yields empty map", func(t *testing.T) {
		store := newTestStore(t)
		got, err := store.Get(ctx, DraftKey(42))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Scopes are isolated per user and purpose", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, DraftKey(1), map[string]string{"draft_text": "하나."}))
		require.NoError(t, store.Set(ctx, DraftKey(2), map[string]string{"draft_text": "둘."}))
		require.NoError(t, store.Set(ctx, MoralsKey(1), map[string]string{"selected_ids": "[3]"}))

		one, err := store.Get(ctx, DraftKey(1))
		require.NoError(t, err)
		assert.Equal(t, "하나.", one["draft_text"])

		two, err := store.Get(ctx, DraftKey(2))
		require.NoError(t, err)
		assert.Equal(t, "둘.", two["draft_text"])
	})

	t.Run("Last writer wins per field", func(t *testing.T) {
		// Concurrent flows for the same user interleave; this is the accepted
		// consistency model, not a guaranteed serialization.
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, DraftKey(1), map[string]string{"draft_text": "첫 초안."}))
		require.NoError(t, store.Set(ctx, DraftKey(1), map[string]string{"draft_text": "고친 초안."}))

		got, err := store.Get(ctx, DraftKey(1))
		require.NoError(t, err)
		assert.Equal(t, "고친 초안.", got["draft_text"])
	})

	t.Run("Delete clears multiple scopes at once", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, OptionKey(1), map[string]string{"runtime": "3-7분"}))
		require.NoError(t, store.Set(ctx, DraftKey(1), map[string]string{"draft_text": "초안."}))
		require.NoError(t, store.Delete(ctx, OptionKey(1), DraftKey(1), MoralsKey(1)))

		opt, err := store.Get(ctx, OptionKey(1))
		require.NoError(t, err)
		assert.Empty(t, opt)
		draft, err := store.Get(ctx, DraftKey(1))
		require.NoError(t, err)
		assert.Empty(t, draft)
	})
}
