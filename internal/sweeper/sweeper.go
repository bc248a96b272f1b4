// Package sweeper runs the time-gated maintenance pass: expired-message
// purging and stale-presence eviction. It is invoked opportunistically from
// the poll read path rather than on its own timer, so cleanup cadence is
// bounded by actual traffic.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/lalith-99/roomcast/internal/repository"
	"go.uber.org/zap"
)

// Sweeper owns the "last run" state explicitly, with an injectable clock, so
// tests control time instead of racing a package-level variable.
type Sweeper struct {
	rooms    repository.RoomRepository
	messages repository.MessageRepository
	users    repository.UserRepository
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	lastRun time.Time
	now     func() time.Time
}

func New(rooms repository.RoomRepository, messages repository.MessageRepository, users repository.UserRepository, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		rooms:    rooms,
		messages: messages,
		users:    users,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// MaybeSweep runs the maintenance pass if at least the configured interval
// has elapsed since the previous run; otherwise it returns immediately. The
// gate amortizes the room-by-room scan across request volume. Errors are
// logged, never propagated: maintenance must not fail a poll.
func (s *Sweeper) MaybeSweep(ctx context.Context) {
	s.mu.Lock()
	if s.now().Sub(s.lastRun) < s.interval {
		s.mu.Unlock()
		return
	}
	s.lastRun = s.now()
	s.mu.Unlock()

	s.sweep(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) {
	purged := 0
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		s.logger.Warn("sweep: list rooms", zap.Error(err))
	}
	for _, room := range rooms {
		n, err := s.messages.PurgeExpired(ctx, room.ID)
		if err != nil {
			s.logger.Warn("sweep: purge room", zap.String("room", room.ID), zap.Error(err))
			continue
		}
		purged += n
	}

	evicted, err := s.users.SweepInactive(ctx)
	if err != nil {
		s.logger.Warn("sweep: evict users", zap.Error(err))
	}

	if purged > 0 || evicted > 0 {
		s.logger.Info("sweep complete", zap.Int("messages_purged", purged), zap.Int("users_evicted", evicted))
	}
}
