package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result statuses.
const (
	ResultPending = "pending"
	ResultDone    = "done"
	ResultFailed  = "failed"
)

// Result is the outcome of an extraction job.
type Result struct {
	JobID  string          `json:"jobId"`
	Kind   string          `json:"kind"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ResultStore holds job outcomes for the API to hand back to callers.
type ResultStore interface {
	Put(ctx context.Context, res Result) error
	Get(ctx context.Context, jobID string) (Result, bool, error)
}

// MemoryResults is the in-process result store matching InMemory.
type MemoryResults struct {
	mu      sync.RWMutex
	results map[string]Result
}

// NewMemoryResults creates an empty result store.
func NewMemoryResults() *MemoryResults {
	return &MemoryResults{results: make(map[string]Result)}
}

// Put stores a result.
func (s *MemoryResults) Put(_ context.Context, res Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[res.JobID] = res
	return nil
}

// Get returns the result for a job id.
func (s *MemoryResults) Get(_ context.Context, jobID string) (Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[jobID]
	return res, ok, nil
}

// RedisResults stores job outcomes in Redis with a TTL, so API and worker
// processes can share them.
type RedisResults struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisResults creates a store under the given key prefix.
func NewRedisResults(client *redis.Client, prefix string) *RedisResults {
	if prefix == "" {
		prefix = "attendly:results:"
	}
	return &RedisResults{client: client, prefix: prefix, ttl: 24 * time.Hour}
}

// Put stores a result.
func (s *RedisResults) Put(ctx context.Context, res Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+res.JobID, payload, s.ttl).Err()
}

// Get returns the result for a job id.
func (s *RedisResults) Get(ctx context.Context, jobID string) (Result, bool, error) {
	payload, err := s.client.Get(ctx, s.prefix+jobID).Result()
	if errors.Is(err, redis.Nil) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	var res Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return Result{}, false, err
	}
	return res, true, nil
}
