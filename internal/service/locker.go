package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bracket-bff/internal/domain"
	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"
	"bracket-bff/pkg/redis"
	"github.com/google/uuid"
)

// Locker serializes mutating operations on one tournament
type Locker interface {
	// Lock blocks until the tournament is free or ctx ends. The returned func releases it
	// and is safe to call more than once.
	Lock(ctx context.Context, tournamentID string) (unlock func(), err error)
}

// KeyedLocker is an in-process mutex per tournament
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLocker creates an in-process locker
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedEntry)}
}

// Lock acquires the tournament's slot, honouring ctx while waiting
func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &keyedEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			l.release(key, entry)
		})
	}, nil
}

func (l *KeyedLocker) release(key string, entry *keyedEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

// size returns the number of tracked keys
func (l *KeyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// RedisLocker extends the in-process lock with a Redis lease so that replicas
// sharing one Redis also serialize on a tournament.
type RedisLocker struct {
	local      *KeyedLocker
	client     *redis.Client
	ttl        time.Duration
	retryEvery time.Duration
	renewEvery time.Duration
	logger     *logger.Logger
}

// NewRedisLocker creates a distributed locker. ttl bounds how long a crashed
// holder can block others; a live holder renews its lease every ttl/3.
func NewRedisLocker(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = redis.TTLTournamentLock
	}
	return &RedisLocker{
		local:      NewKeyedLocker(),
		client:     client,
		ttl:        ttl,
		retryEvery: 50 * time.Millisecond,
		renewEvery: max(ttl/3, time.Millisecond),
		logger:     log,
	}
}

// Lock acquires the local slot first, then the Redis lease
func (l *RedisLocker) Lock(ctx context.Context, tournamentID string) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	key := l.client.KeyBuilder.KeyTournamentLock(tournamentID)
	token := uuid.NewString()

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl)
		if err != nil {
			unlockLocal()
			return nil, fmt.Errorf("failed to acquire tournament lock: %w", err)
		}
		if acquired {
			break
		}

		timer := time.NewTimer(l.retryEvery)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			unlockLocal()
			return nil, ctx.Err()
		}
	}

	stop := make(chan struct{})
	renewed := make(chan struct{})
	go l.renew(key, token, tournamentID, stop, renewed)

	var once sync.Once
	return func() {
		once.Do(func() {
			defer unlockLocal()

			close(stop)
			<-renewed

			releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			released, err := l.client.CompareAndDelete(releaseCtx, key, token)
			if err != nil {
				l.logger.WithError(err).WithField("tournament_id", tournamentID).
					Warn("Failed to release tournament lock, it will expire on its own")
				return
			}
			if !released {
				l.logger.WithField("tournament_id", tournamentID).
					Warn("Tournament lock expired before release")
			}
		})
	}, nil
}

// renew extends the lease until stop is closed or the lease is found to belong to someone else
func (l *RedisLocker) renew(key, token, tournamentID string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.renewEvery)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		extended, err := l.client.CompareAndExpire(ctx, key, token, l.ttl)
		cancel()

		if err != nil {
			l.logger.WithError(err).WithField("tournament_id", tournamentID).
				Warn("Failed to renew tournament lock")
			continue
		}
		if !extended {
			l.logger.WithField("tournament_id", tournamentID).
				Error("Tournament lock lost while held")
			return
		}
	}
}

// lockTournament takes the tournament's lock and maps failures onto the error taxonomy
func lockTournament(ctx context.Context, locker Locker, tournamentID domain.ProviderID) (func(), error) {
	unlock, err := locker.Lock(ctx, tournamentID.String())
	if err != nil {
		if errors.IsTimeout(err) {
			return nil, errors.NewTimeoutError("Timed out waiting for another update of this tournament", err)
		}
		return nil, errors.NewInternalError("failed to lock tournament", err)
	}
	return unlock, nil
}
