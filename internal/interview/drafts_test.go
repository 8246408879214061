package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rehearse/internal/questions"
)

func sampleDraft(id string) *Draft {
	return &Draft{
		ID:        id,
		UserID:    DefaultUserID,
		JobRole:   "Data Analyst",
		Questions: []questions.Question{{ID: "q1", Text: "Describe a dashboard you built."}},
		Answers:   map[string]string{},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// exerciseDraftStore checks the behavior every DraftStore shares.
func exerciseDraftStore(t *testing.T, s DraftStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrDraftNotFound)

	d := sampleDraft("d1")
	require.NoError(t, s.Save(ctx, d))

	// Mutating the caller's copy must not leak into the store.
	d.Answers["q1"] = "changed after save"

	got, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", got.JobRole)
	assert.Empty(t, got.Answers)
	assert.True(t, got.CreatedAt.Equal(d.CreatedAt))
	require.Len(t, got.Questions, 1)

	got.Answers["q1"] = "A sales dashboard."
	require.NoError(t, s.Save(ctx, got))
	again, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "A sales dashboard.", again.Answers["q1"])

	require.NoError(t, s.Delete(ctx, "d1"))
	require.NoError(t, s.Delete(ctx, "d1"))
	_, err = s.Get(ctx, "d1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

// exerciseConcurrentUpdates answers every question from its own goroutine
// and expects all answers to survive.
func exerciseConcurrentUpdates(t *testing.T, s DraftStore) {
	t.Helper()
	ctx := context.Background()

	d := sampleDraft("busy")
	d.Questions = nil
	for i := 1; i <= 8; i++ {
		d.Questions = append(d.Questions, questions.Question{ID: fmt.Sprintf("q%d", i)})
	}
	require.NoError(t, s.Save(ctx, d))

	var wg sync.WaitGroup
	for _, q := range d.Questions {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := s.Update(ctx, "busy", func(d *Draft) error {
				d.Answers[id] = "answer to " + id
				return nil
			})
			assert.NoError(t, err)
		}(q.ID)
	}
	wg.Wait()

	got, err := s.Get(ctx, "busy")
	require.NoError(t, err)
	assert.Len(t, got.Answers, 8)
	assert.Equal(t, "answer to q3", got.Answers["q3"])

	errBoom := errors.New("boom")
	_, err = s.Update(ctx, "busy", func(d *Draft) error {
		d.Answers["q1"] = "discarded"
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	got, err = s.Get(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, "answer to q1", got.Answers["q1"])

	_, err = s.Update(ctx, "missing", func(*Draft) error { return nil })
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

// exerciseClaim checks that one submission claim is live per draft.
func exerciseClaim(t *testing.T, s DraftStore) {
	t.Helper()
	ctx := context.Background()

	release, err := s.Claim(ctx, "d1")
	require.NoError(t, err)

	_, err = s.Claim(ctx, "d1")
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	other, err := s.Claim(ctx, "d2")
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := s.Claim(ctx, "d1")
	require.NoError(t, err)
	again()
}

func TestMemoryDrafts(t *testing.T) {
	exerciseDraftStore(t, NewMemoryDrafts(time.Hour))
}

func TestMemoryDrafts_ConcurrentUpdates(t *testing.T) {
	exerciseConcurrentUpdates(t, NewMemoryDrafts(time.Hour))
}

func TestMemoryDrafts_Claim(t *testing.T) {
	exerciseClaim(t, NewMemoryDrafts(time.Hour))
}

func TestMemoryDrafts_ClaimExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryDrafts(time.Hour)
	m.now = func() time.Time { return now }

	stale, err := m.Claim(ctx, "d1")
	require.NoError(t, err)

	now = now.Add(SubmitClaimTTL + time.Second)
	fresh, err := m.Claim(ctx, "d1")
	require.NoError(t, err)

	// Releasing the expired claim leaves the fresh one in place.
	stale()
	_, err = m.Claim(ctx, "d1")
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	fresh()
}

func TestMemoryDrafts_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryDrafts(time.Minute)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, sampleDraft("a")))
	now = now.Add(30 * time.Second)
	require.NoError(t, m.Save(ctx, sampleDraft("b")))
	assert.Equal(t, 2, m.Len())

	now = now.Add(45 * time.Second)
	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = m.Get(ctx, "b")
	assert.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func newRedisDrafts(t *testing.T, ttl time.Duration) (*RedisDrafts, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDrafts(client, ttl), mr
}

func TestRedisDrafts(t *testing.T) {
	s, _ := newRedisDrafts(t, time.Hour)
	exerciseDraftStore(t, s)
}

func TestRedisDrafts_ConcurrentUpdates(t *testing.T) {
	s, _ := newRedisDrafts(t, time.Hour)
	exerciseConcurrentUpdates(t, s)
}

func TestRedisDrafts_Claim(t *testing.T) {
	s, mr := newRedisDrafts(t, time.Hour)
	exerciseClaim(t, s)

	release, err := s.Claim(context.Background(), "d3")
	require.NoError(t, err)
	key := draftKeyPrefix + "d3" + claimKeySuffix
	assert.Equal(t, SubmitClaimTTL, mr.TTL(key))

	mr.FastForward(SubmitClaimTTL + time.Second)
	fresh, err := s.Claim(context.Background(), "d3")
	require.NoError(t, err)
	release()
	assert.True(t, mr.Exists(key), "an expired claim must not release its successor")
	fresh()
	assert.False(t, mr.Exists(key))
}

func TestRedisDrafts_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisDrafts(t, time.Minute)

	require.NoError(t, s.Save(ctx, sampleDraft("a")))
	assert.True(t, mr.Exists(draftKeyPrefix+"a"))
	assert.Equal(t, time.Minute, mr.TTL(draftKeyPrefix+"a"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestRedisDrafts_Unavailable(t *testing.T) {
	s, mr := newRedisDrafts(t, time.Minute)
	mr.Close()

	_, err := s.Get(context.Background(), "a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDraftNotFound)
}
