package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	replayLock sync.Mutex
	_          ReplayCache = make(ReplayMap)
	_          ReplayCache = ReplayRedis{}
)

// A ReplayCache can store responses paired to idempotency keys.
//
// A ReplayCache ought return a newly initialized Replay
// when a key does not match an existing Replay.
type ReplayCache interface {
	Get(ctx context.Context, key string) (Replay, bool)
	Set(ctx context.Context, key string, rep Replay)
}

// A ReplayMap stores idempotency key, Replay value pairs in a map.
//
// Server restarts reset this map.
// ReplayMap ought not be used for production environments.
type ReplayMap map[string]replayMapVal

// NewReplayMap initializes a ReplayMap for use
// in an Idempotent middleware as a cache.
func NewReplayMap() ReplayMap { return make(ReplayMap) }

// A replayMapVal is stored in a ReplayMap, wrapping a Replay.
type replayMapVal struct {
	Replay

	at time.Time
}

// Get retrieves the result of the request matching the idempotency key
// much like a regular map.
func (m ReplayMap) Get(ctx context.Context, key string) (Replay, bool) {
	if key == "" {
		return Replay{}, false
	}

	select {
	case <-ctx.Done():
		return Replay{}, false

	default:
		replayLock.Lock()
		defer replayLock.Unlock()

		v, ok := m[key]
		return v.Replay, ok
	}
}

// Set overwrites the value paired to key in the map.
//
// For each call to Set, keys older than 24 hours are evicted.
func (m ReplayMap) Set(ctx context.Context, key string, rep Replay) {
	select {
	case <-ctx.Done():
		return
	default:
		replayLock.Lock()
		defer replayLock.Unlock()

		yesterday := time.Now().AddDate(0, 0, -1)
		for k, v := range m {
			if v.at.Before(yesterday) {
				delete(m, k)
			}
		}

		m[key] = replayMapVal{Replay: rep, at: time.Now()}
	}
}

// A ReplayRedis connects to a Redis backend
// for the purposes of caching idempotent responses.
//
// Multi-node deployments need it so a retried transition
// replays no matter which node serves the retry.
type ReplayRedis struct {
	client *redis.Client
}

// NewReplayRedis constructs a ReplayRedis with the options passed in.
func NewReplayRedis(opts *redis.Options) ReplayRedis {
	return ReplayRedis{client: redis.NewClient(opts)}
}

// Get retrieves the Replay paired to key from the connected Redis backend.
func (i ReplayRedis) Get(ctx context.Context, key string) (Replay, bool) {
	select {
	case <-ctx.Done():
		return Replay{}, false
	default:
		b, err := i.client.Get(ctx, key).Bytes()
		if err != nil {
			return Replay{}, false
		}

		rep := new(Replay)
		if err := rep.GobDecode(b); err != nil {
			return Replay{}, false
		}

		return *rep, true
	}
}

// Set saves the Replay by pairing it to the key in the Redis backend.
//
// Cached replays expire after 24 hours.
func (i ReplayRedis) Set(ctx context.Context, key string, rep Replay) {
	select {
	case <-ctx.Done():
		return
	default:
		b, err := rep.GobEncode()
		if err != nil {
			return
		}
		i.client.Set(ctx, key, b, 24*time.Hour)
	}
}
