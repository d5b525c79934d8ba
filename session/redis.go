package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"clearance/portal/security"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session as one JSON value under one key
type RedisStore struct {
	client *redis.Client
	cipher *security.Cipher
	prefix string

	// ExpireWithRefresh sets the key TTL to the refresh token's expiry
	ExpireWithRefresh bool
}

// NewRedisStore returns a store using keys "clearance:session:<id>"
func NewRedisStore(client *redis.Client, cipher *security.Cipher) *RedisStore {
	return &RedisStore{client: client, cipher: cipher, prefix: "clearance:session:"}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) Session {
	if id == "" {
		return Session{}
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	value, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return Session{}
	}
	if err != nil {
		log.Printf("Error reading session %s from redis: %v", shortID(id), err)
		return Session{}
	}

	var rec record
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		log.Printf("Discarding malformed session %s: %v", shortID(id), err)
		return Session{}
	}

	sess, err := decode(s.cipher, rec)
	if err != nil {
		log.Printf("Discarding stored session %s: %v", shortID(id), err)
		return Session{}
	}

	return sess
}

func (s *RedisStore) Set(ctx context.Context, id string, sess Session) error {
	if id == "" {
		return errors.New("session id is required")
	}
	if !sess.Consistent() {
		return ErrTornSession
	}
	if sess.IsEmpty() {
		return s.Clear(ctx, id)
	}

	rec, err := encode(s.cipher, sess)
	if err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	var ttl time.Duration
	if s.ExpireWithRefresh {
		if exp, ok := TokenExpiry(sess.RefreshToken); ok {
			ttl = time.Until(exp)
			if ttl <= 0 {
				return s.Clear(ctx, id)
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
