package redisbridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeList is an in-memory ListClient backed by a map of lists.
type fakeList struct {
	mu      sync.Mutex
	lists   map[string][]string
	pushes  int
	pushErr error
	popErr  error
}

func newFakeList() *fakeList {
	return &fakeList{lists: make(map[string][]string)}
}

func (f *fakeList) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pushErr != nil {
		return redis.NewIntResult(0, f.pushErr)
	}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return redis.NewIntResult(0, errors.New("fake: non-string value"))
		}
		f.lists[key] = append(f.lists[key], s)
	}
	f.pushes++
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeList) BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	deadline := time.Now().Add(timeout)
	for {
		f.mu.Lock()
		if f.popErr != nil {
			err := f.popErr
			f.mu.Unlock()
			return redis.NewStringSliceResult(nil, err)
		}
		for _, key := range keys {
			if l := f.lists[key]; len(l) > 0 {
				f.lists[key] = l[1:]
				f.mu.Unlock()
				return redis.NewStringSliceResult([]string{key, l[0]}, nil)
			}
		}
		f.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return redis.NewStringSliceResult(nil, err)
		}
		if time.Now().After(deadline) {
			return redis.NewStringSliceResult(nil, redis.Nil)
		}
		time.Sleep(time.Millisecond)
	}
}

func (f *fakeList) push(key string, values ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[key] = append(f.lists[key], values...)
}

func (f *fakeList) list(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lists[key]...)
}

func (f *fakeList) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushes
}
