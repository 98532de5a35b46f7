package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-engine/interview"
)

func sampleSession(id string) *Session {
	return &Session{
		ID:        id,
		Status:    StatusWaitingForAnswer,
		State:     interview.NewState("резюме", "вакансия", "Backend Developer"),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	defer store.Close()

	ctx := context.Background()
	sess := sampleSession("s1")
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.State.Resume, got.State.Resume)

	// The returned copy is detached from the stored one.
	got.Status = StatusCompleted
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StatusWaitingForAnswer, again.Status)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	defer store.Close()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleSession("s1")))
	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ExpiryOnRead(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(20 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleSession("s1")))

	time.Sleep(40 * time.Millisecond)
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_JanitorReclaims(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(20 * time.Millisecond)
	defer store.Close()

	require.NoError(t, store.Put(context.Background(), sampleSession("s1")))
	require.Eventually(t, func() bool { return store.Len() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestMemoryStore_PutRefreshesExpiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(50 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	sess := sampleSession("s1")
	require.NoError(t, store.Put(ctx, sess))

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, store.Put(ctx, sess))
	time.Sleep(30 * time.Millisecond)

	_, err := store.Get(ctx, "s1")
	assert.NoError(t, err)
}
