package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

var ErrRunNotFound = errors.New("分队任务不存在")

// Store 将分队任务的进度保存到 redis 中，方便在 API 进程重启后仍然可以查询
type Store struct {
	rdb        *redis.Client
	expiration time.Duration
}

func NewStore(rdb *redis.Client, expiration time.Duration) *Store {
	return &Store{
		rdb:        rdb,
		expiration: expiration,
	}
}

func key(id string) string {
	return fmt.Sprintf("roster_run_%s", id)
}

func (s *Store) SaveRun(ctx context.Context, run *domain.RosterRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(run.ID), data, s.expiration).Err()
}

func (s *Store) LoadRun(ctx context.Context, id string) (*domain.RosterRun, error) {
	data, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	run := &domain.RosterRun{}
	if err := json.Unmarshal(data, run); err != nil {
		return nil, err
	}
	return run, nil
}
