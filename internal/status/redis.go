package status

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
)

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisStore returns a Redis-backed status store so multiple backend
// replicas can serve the same polling traffic. Requires REDIS_ADDR.
func NewRedisStore(log *logger.Logger) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{
		log: log.With("service", "RedisStatusStore"),
		rdb: rdb,
		ttl: 24 * time.Hour,
	}, nil
}

func statusKey(topologyID uuid.UUID) string {
	return "kg:build_status:" + topologyID.String()
}

func (s *redisStore) Set(ctx context.Context, topologyID uuid.UUID, st BuildStatus) error {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, statusKey(topologyID), raw, s.ttl).Err()
}

func (s *redisStore) Update(ctx context.Context, topologyID uuid.UUID, progress int, message string) error {
	st, ok, err := s.Get(ctx, topologyID)
	if err != nil {
		return err
	}
	if !ok {
		st = BuildStatus{Status: StateProcessing, CreatedAt: time.Now().UTC()}
	}
	st.Progress = progress
	st.Message = message
	return s.Set(ctx, topologyID, st)
}

func (s *redisStore) Get(ctx context.Context, topologyID uuid.UUID) (BuildStatus, bool, error) {
	raw, err := s.rdb.Get(ctx, statusKey(topologyID)).Bytes()
	if err == goredis.Nil {
		return BuildStatus{}, false, nil
	}
	if err != nil {
		return BuildStatus{}, false, err
	}
	var st BuildStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return BuildStatus{}, false, err
	}
	return st, true, nil
}

func (s *redisStore) Delete(ctx context.Context, topologyID uuid.UUID) error {
	return s.rdb.Del(ctx, statusKey(topologyID)).Err()
}
