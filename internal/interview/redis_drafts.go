package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	draftKeyPrefix = "rehearse:draft:"
	claimKeySuffix = ":submit"

	// updateAttempts bounds optimistic retries when another writer
	// touches the draft between WATCH and EXEC.
	updateAttempts = 10
)

// RedisDrafts is a DraftStore backed by Redis, shared by every server
// process pointed at the same instance.
type RedisDrafts struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisDrafts creates a Redis-backed store. A zero ttl uses
// DefaultDraftTTL.
func NewRedisDrafts(client redis.UniversalClient, ttl time.Duration) *RedisDrafts {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &RedisDrafts{client: client, ttl: ttl}
}

func (r *RedisDrafts) Save(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := r.client.Set(ctx, draftKeyPrefix+d.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (r *RedisDrafts) Get(ctx context.Context, id string) (*Draft, error) {
	return load(ctx, r.client, id)
}

// Update runs fn inside a WATCH/MULTI transaction and retries when a
// concurrent writer wins the race.
func (r *RedisDrafts) Update(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error) {
	key := draftKeyPrefix + id
	var out *Draft

	txf := func(tx *redis.Tx) error {
		d, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode draft: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			out = d
		}
		return err
	}

	for range updateAttempts {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("update draft %s: %w", id, redis.TxFailedErr)
}

// Claim sets a token under the draft's submit key with SETNX. Release
// deletes the key only while it still holds that token.
func (r *RedisDrafts) Claim(ctx context.Context, id string) (func(), error) {
	key := draftKeyPrefix + id + claimKeySuffix
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, SubmitClaimTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("claim draft: %w", err)
	}
	if !ok {
		return nil, ErrSubmitInProgress
	}

	release := func() {
		bg := context.WithoutCancel(ctx)
		_ = r.client.Watch(bg, func(tx *redis.Tx) error {
			held, err := tx.Get(bg, key).Result()
			if err != nil || held != token {
				return nil
			}
			_, err = tx.TxPipelined(bg, func(pipe redis.Pipeliner) error {
				pipe.Del(bg, key)
				return nil
			})
			return err
		}, key)
	}
	return release, nil
}

func (r *RedisDrafts) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, draftKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c stringGetter, id string) (*Draft, error) {
	data, err := c.Get(ctx, draftKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	if d.Answers == nil {
		d.Answers = map[string]string{}
	}
	return &d, nil
}
