package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gogotex/docmanager/internal/document"
	"github.com/redis/go-redis/v9"
)

// RedisRepo stores documents as JSON in a single hash and draws identifiers
// from an INCR counter, so several processes can share one store.
// Keys: "<prefix>docs" (hash id -> json) and "<prefix>seq" (counter).
type RedisRepo struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisRepo creates a Redis-backed document store. Prefix may be empty.
func NewRedisRepo(client *redis.Client, prefix string) *RedisRepo {
	if prefix == "" {
		prefix = "docmanager:"
	}
	return &RedisRepo{
		client: client,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *RedisRepo) docsKey() string { return r.prefix + "docs" }
func (r *RedisRepo) seqKey() string  { return r.prefix + "seq" }

func (r *RedisRepo) Save(ctx context.Context, doc document.Document) (document.Document, error) {
	if doc.ID == "" {
		n, err := r.client.Incr(ctx, r.seqKey()).Result()
		if err != nil {
			return document.Document{}, fmt.Errorf("redis next id: %w", err)
		}
		doc.ID = strconv.FormatInt(n-1, 10)
		doc.CreatedAt = r.now()
	} else {
		existing, ok, err := r.FindByID(ctx, doc.ID)
		if err != nil {
			return document.Document{}, err
		}
		if ok {
			doc.CreatedAt = existing.CreatedAt
		}
	}
	// match what FindByID decodes: no monotonic reading, UTC
	doc.CreatedAt = doc.CreatedAt.Round(0).UTC()
	b, err := json.Marshal(doc)
	if err != nil {
		return document.Document{}, err
	}
	if err := r.client.HSet(ctx, r.docsKey(), doc.ID, b).Err(); err != nil {
		return document.Document{}, fmt.Errorf("redis save %s: %w", doc.ID, err)
	}
	return doc, nil
}

func (r *RedisRepo) FindByID(ctx context.Context, id string) (document.Document, bool, error) {
	b, err := r.client.HGet(ctx, r.docsKey(), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return document.Document{}, false, nil
		}
		return document.Document{}, false, fmt.Errorf("redis get %s: %w", id, err)
	}
	var d document.Document
	if err := json.Unmarshal(b, &d); err != nil {
		return document.Document{}, false, fmt.Errorf("decode %s: %w", id, err)
	}
	return d, true, nil
}

// Search loads every stored document and filters it in process.
func (r *RedisRepo) Search(ctx context.Context, req document.SearchRequest) ([]document.Document, error) {
	vals, err := r.client.HVals(ctx, r.docsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	out := make([]document.Document, 0, len(vals))
	for _, v := range vals {
		var d document.Document
		if err := json.Unmarshal([]byte(v), &d); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		if document.Matches(d, req) {
			out = append(out, d)
		}
	}
	return out, nil
}
