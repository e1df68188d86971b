package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/squadtype"
)

type memoryStore struct {
	mu      sync.Mutex
	err     error
	rosters []*domain.Roster
}

func (s *memoryStore) InsertRoster(roster *domain.Roster) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	roster.ID = int64(len(s.rosters) + 1)
	s.rosters = append(s.rosters, roster)
	return nil
}

type memoryProgress struct {
	mu   sync.Mutex
	runs map[string]domain.RosterRun
}

func newMemoryProgress() *memoryProgress {
	return &memoryProgress{runs: make(map[string]domain.RosterRun)}
}

func (p *memoryProgress) SaveRun(ctx context.Context, run *domain.RosterRun) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs[run.ID] = *run
	return nil
}

func (p *memoryProgress) LoadRun(ctx context.Context, id string) (*domain.RosterRun, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	run, ok := p.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return &run, nil
}

type recordingPublisher struct {
	mu         sync.Mutex
	rosters    []*domain.Roster
	commanders [][]*domain.Player
}

func (p *recordingPublisher) PublishRoster(ctx context.Context, roster *domain.Roster, commanders []*domain.Player) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rosters = append(p.rosters, roster)
	p.commanders = append(p.commanders, commanders)
	return nil
}

type fixture struct {
	manager   *Manager
	store     *memoryStore
	progress  *memoryProgress
	publisher *recordingPublisher
}

func newFixture(registry *squadtype.Registry, maxSearchSeconds int) *fixture {
	cfg := &config.Config{}
	cfg.Search.MaxResult = 1000
	cfg.Search.MaxSearchDurationSeconds = maxSearchSeconds
	cfg.Search.SmallResultSize = 50
	cfg.Search.SmallResultSizeDurationSeconds = 1
	cfg.Search.MaxBacktracks = 20000
	cfg.Redis.OperationTimeout = 1

	f := &fixture{
		store:     &memoryStore{},
		progress:  newMemoryProgress(),
		publisher: &recordingPublisher{},
	}
	f.manager = New(cfg, registry, f.store, f.progress, f.publisher)
	return f
}

var nextID int64

func player(roles ...string) *domain.Player {
	nextID++
	return &domain.Player{ID: nextID, AccountName: fmt.Sprintf("Player.%04d", nextID), Roles: roles}
}

// perfectPool 可以恰好组成 n 个完美的小队
func perfectPool(st domain.SquadType, n int) (commanders, trainees []*domain.Player) {
	for i := 0; i < n; i++ {
		commanders = append(commanders, player(domain.RoleDPS))
		for _, role := range st.SpecialRoles {
			trainees = append(trainees, player(role))
		}
		for j := 0; j < st.DPSSlots()-1; j++ {
			trainees = append(trainees, player(domain.RoleDPS))
		}
	}
	return commanders, trainees
}

// dpsOnlyPool 没有任何人能打特殊位置，因此永远找不到解
func dpsOnlyPool(n int) (commanders, trainees []*domain.Player) {
	for i := 0; i < n; i++ {
		commanders = append(commanders, player(domain.RoleDPS))
		for j := 0; j < 9; j++ {
			trainees = append(trainees, player(domain.RoleDPS))
		}
	}
	return commanders, trainees
}

func TestRunSucceedsAndPersists(t *testing.T) {
	f := newFixture(squadtype.NewRegistry(nil), 30)
	commanders, trainees := perfectPool(domain.DefaultSquadType(), 2)
	for _, c := range commanders {
		c.IsTrainer = false
	}

	started := f.manager.Start(commanders, trainees, 2)
	assert.Equal(t, domain.RosterRunRunning, started.Status)
	f.manager.Wait()

	run, err := f.manager.Get(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterRunSucceeded, run.Status)
	require.NotNil(t, run.RosterID)
	require.NotNil(t, run.BestHeuristic)
	assert.Equal(t, 10, *run.BestHeuristic)
	assert.NotNil(t, run.FinishedAt)

	require.Len(t, f.store.rosters, 1)
	roster := f.store.rosters[0]
	assert.Equal(t, started.ID, roster.RunID)
	assert.Equal(t, domain.DefaultSquadHandle, roster.SquadType)
	assert.Equal(t, 2, roster.NumSquads)

	for _, c := range commanders {
		assert.True(t, c.IsTrainer)
		require.NotNil(t, c.AssignedRole)
		assert.Equal(t, domain.RoleDPS, *c.AssignedRole)
	}
	for _, tr := range trainees {
		require.NotNil(t, tr.AssignedRole)
		assert.Equal(t, tr.PreferredRole(), *tr.AssignedRole)
	}

	require.Len(t, f.publisher.rosters, 1)
	assert.Same(t, roster, f.publisher.rosters[0])

	saved, err := f.progress.LoadRun(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterRunSucceeded, saved.Status)
}

func TestRunUsesEnabledSquadType(t *testing.T) {
	duo := domain.SquadType{Handle: "duo", Enabled: true, Size: 2, SpecialRoles: []string{"heal_quickness"}}
	f := newFixture(squadtype.NewRegistry([]domain.SquadType{duo}), 30)
	commanders, trainees := perfectPool(duo, 3)

	started := f.manager.Start(commanders, trainees, 3)
	f.manager.Wait()

	run, err := f.manager.Get(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterRunSucceeded, run.Status)
	require.Len(t, f.store.rosters, 1)
	assert.Equal(t, "duo", f.store.rosters[0].SquadType)
	assert.Equal(t, 3, f.store.rosters[0].NumSquads)
}

func TestRunExhausted(t *testing.T) {
	f := newFixture(squadtype.NewRegistry(nil), 0)
	commanders, trainees := dpsOnlyPool(2)

	started := f.manager.Start(commanders, trainees, 2)
	f.manager.Wait()

	run, err := f.manager.Get(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterRunExhausted, run.Status)
	assert.NotEmpty(t, run.Error)
	assert.Nil(t, run.RosterID)
	assert.Empty(t, f.store.rosters)
	assert.Empty(t, f.publisher.rosters)
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(squadtype.NewRegistry(nil), 60)
	commanders, trainees := dpsOnlyPool(2)

	started := f.manager.Start(commanders, trainees, 2)
	_, err := f.manager.Cancel(started.ID)
	require.NoError(t, err)
	f.manager.Wait()

	run, err := f.manager.Get(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterRunCancelled, run.Status)
	assert.Empty(t, f.store.rosters)

	_, err = f.manager.Cancel("unknown")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestShutdownCancelsRunningRuns(t *testing.T) {
	f := newFixture(squadtype.NewRegistry(nil), 60)
	commanders, trainees := dpsOnlyPool(1)

	started := f.manager.Start(commanders, trainees, 1)
	f.manager.Shutdown()

	run, err := f.manager.Get(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterRunCancelled, run.Status)
}

func TestRunFailsWhenStoreFails(t *testing.T) {
	f := newFixture(squadtype.NewRegistry(nil), 30)
	f.store.err = errors.New("connection refused")
	commanders, trainees := perfectPool(domain.DefaultSquadType(), 1)

	started := f.manager.Start(commanders, trainees, 1)
	f.manager.Wait()

	run, err := f.manager.Get(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterRunFailed, run.Status)
	assert.Equal(t, "connection refused", run.Error)
	assert.Empty(t, f.publisher.rosters)
}

func TestGetFallsBackToProgressStore(t *testing.T) {
	f := newFixture(squadtype.NewRegistry(nil), 30)
	require.NoError(t, f.progress.SaveRun(context.Background(), &domain.RosterRun{ID: "earlier", Status: domain.RosterRunSucceeded}))

	run, err := f.manager.Get(context.Background(), "earlier")
	require.NoError(t, err)
	assert.Equal(t, domain.RosterRunSucceeded, run.Status)

	_, err = f.manager.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestFinishedRunsAreEvicted(t *testing.T) {
	f := newFixture(squadtype.NewRegistry(nil), 30)

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		commanders, trainees := perfectPool(domain.DefaultSquadType(), 1)
		ids = append(ids, f.manager.Start(commanders, trainees, 1).ID)
	}
	f.manager.Wait()

	f.manager.mu.Lock()
	assert.Empty(t, f.manager.runs)
	f.manager.mu.Unlock()

	for _, id := range ids {
		run, err := f.manager.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.RosterRunSucceeded, run.Status)
		require.NotNil(t, run.RosterID)

		_, err = f.manager.Cancel(id)
		assert.ErrorIs(t, err, ErrRunNotFound)
	}
}
