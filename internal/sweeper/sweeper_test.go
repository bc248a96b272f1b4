package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/lalith-99/roomcast/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// countingRepos implements just enough of the repository interfaces to
// observe how often a sweep actually runs.
type countingRepos struct {
	purges int
	evicts int
}

func (c *countingRepos) Create(ctx context.Context, room *models.Room) (*models.Room, error) {
	return room, nil
}
func (c *countingRepos) Get(ctx context.Context, roomID string) (*models.Room, error) {
	return &models.Room{ID: roomID}, nil
}
func (c *countingRepos) ListAll(ctx context.Context) ([]models.Room, error) {
	return []models.Room{{ID: "general"}, {ID: "dev"}}, nil
}
func (c *countingRepos) Join(ctx context.Context, roomID, userID string) error  { return nil }
func (c *countingRepos) Leave(ctx context.Context, roomID, userID string) error { return nil }
func (c *countingRepos) Delete(ctx context.Context, roomID string) error        { return nil }
func (c *countingRepos) EnsureDefaultRoom(ctx context.Context) (*models.Room, error) {
	return &models.Room{ID: "general"}, nil
}

func (c *countingRepos) Append(ctx context.Context, msg *models.Message) error { return nil }
func (c *countingRepos) ListSince(ctx context.Context, roomID string, since int64) ([]models.Message, error) {
	return nil, nil
}
func (c *countingRepos) PurgeExpired(ctx context.Context, roomID string) (int, error) {
	c.purges++
	return 0, nil
}

func (c *countingRepos) Upsert(ctx context.Context, user *models.User) error { return nil }
func (c *countingRepos) Remove(ctx context.Context, userID string) error     { return nil }
func (c *countingRepos) List(ctx context.Context) ([]models.User, error)     { return nil, nil }
func (c *countingRepos) ListOnline(ctx context.Context) ([]models.User, error) {
	return nil, nil
}
func (c *countingRepos) SweepInactive(ctx context.Context) (int, error) {
	c.evicts++
	return 0, nil
}

func TestMaybeSweepGatesOnInterval(t *testing.T) {
	repos := &countingRepos{}
	s := New(repos, repos, repos, 5*time.Minute, zap.NewNop())

	clock := time.Now()
	s.now = func() time.Time { return clock }
	ctx := context.Background()

	// First call runs: lastRun starts at the zero time.
	s.MaybeSweep(ctx)
	assert.Equal(t, 2, repos.purges, "one purge per room")
	assert.Equal(t, 1, repos.evicts)

	// Within the interval: gated, nothing happens.
	clock = clock.Add(time.Minute)
	s.MaybeSweep(ctx)
	s.MaybeSweep(ctx)
	assert.Equal(t, 2, repos.purges)
	assert.Equal(t, 1, repos.evicts)

	// Past the interval: runs again.
	clock = clock.Add(5 * time.Minute)
	s.MaybeSweep(ctx)
	assert.Equal(t, 4, repos.purges)
	assert.Equal(t, 2, repos.evicts)
}
