package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/progress"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/search"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/squadplan"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/utils"
)

var ErrRunNotFound = progress.ErrRunNotFound

type SquadTypes interface {
	FirstEnabledHandle() string
	Lookup(handle string) (domain.SquadType, bool)
}

type RosterStore interface {
	InsertRoster(roster *domain.Roster) error
}

// ProgressStore 在找不到任务时应该返回 ErrRunNotFound
type ProgressStore interface {
	SaveRun(ctx context.Context, run *domain.RosterRun) error
	LoadRun(ctx context.Context, id string) (*domain.RosterRun, error)
}

type Publisher interface {
	PublishRoster(ctx context.Context, roster *domain.Roster, commanders []*domain.Player) error
}

// Manager 在后台 goroutine 中执行分队搜索，并记录每个任务的进度
type Manager struct {
	parameters    *search.Parameters
	maxBacktracks int
	timeout       time.Duration
	squadTypes    SquadTypes
	store         RosterStore
	progress      ProgressStore
	publisher     Publisher

	mu   sync.Mutex
	runs map[string]*run
	wg   sync.WaitGroup
}

type run struct {
	mu         sync.Mutex
	info       domain.RosterRun
	commanders []*domain.Player
	driver     *search.Driver
}

func (r *run) snapshot() *domain.RosterRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	info := r.info
	return &info
}

func New(cfg *config.Config, squadTypes SquadTypes, store RosterStore, progress ProgressStore, publisher Publisher) *Manager {
	return &Manager{
		parameters: &search.Parameters{
			MaxResult:                  cfg.Search.MaxResult,
			MaxSearchDuration:          time.Duration(cfg.Search.MaxSearchDurationSeconds) * time.Second,
			SmallResultSize:            cfg.Search.SmallResultSize,
			SmallResultSizeMinDuration: time.Duration(cfg.Search.SmallResultSizeDurationSeconds) * time.Second,
		},
		maxBacktracks: cfg.Search.MaxBacktracks,
		timeout:       time.Duration(cfg.Redis.OperationTimeout) * time.Second,
		squadTypes:    squadTypes,
		store:         store,
		progress:      progress,
		publisher:     publisher,
		runs:          make(map[string]*run),
	}
}

type planAdapter struct {
	plan *squadplan.SquadPlan
}

func (a planAdapter) ExpandOrReturnSolution() (search.Plan, error) {
	solution, err := a.plan.ExpandOrReturnSolution()
	if err != nil || solution == nil {
		return nil, err
	}
	return planAdapter{plan: solution}, nil
}

func (a planAdapter) Heuristic() int {
	return a.plan.Heuristic()
}

func (a planAdapter) NumSquads() int {
	return a.plan.NumSquads()
}

// newFactory 只在第一次构造时解析小队类型，之后的配置变化不影响本次搜索
func (m *Manager) newFactory() search.PlanFactory {
	var resolved *domain.SquadType
	return func(trainees, commanders []*domain.Player, numSquads int, handle string) search.Plan {
		if resolved == nil || resolved.Handle != handle {
			st, ok := m.squadTypes.Lookup(handle)
			if !ok {
				st = domain.DefaultSquadType()
			}
			resolved = &st
		}
		return planAdapter{
			plan: squadplan.New(trainees, commanders, numSquads, *resolved, squadplan.WithMaxBacktracks(m.maxBacktracks)),
		}
	}
}

// Start 在后台开始一次分队搜索，玩家在搜索结束前不能被其他地方修改
func (m *Manager) Start(commanders, trainees []*domain.Player, maxSquads int) *domain.RosterRun {
	r := &run{
		info: domain.RosterRun{
			ID:        uuid.NewString(),
			Status:    domain.RosterRunRunning,
			MaxSquads: maxSquads,
			StartedAt: time.Now(),
		},
		commanders: commanders,
	}

	r.driver = search.New(commanders, trainees, maxSquads, m.newFactory(), m.squadTypes, func(added search.Plan, size int) {
		m.onResult(r, added, size)
	}, search.WithParameters(m.parameters), search.WithLogger(slog.Default().With("run", r.info.ID)))

	m.mu.Lock()
	m.runs[r.info.ID] = r
	m.mu.Unlock()

	m.saveProgress(r)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		plan, err := r.driver.Run(context.Background())
		m.finish(r, plan, err)
	}()

	return r.snapshot()
}

func (m *Manager) onResult(r *run, added search.Plan, size int) {
	r.mu.Lock()
	r.info.ResultCount = size
	improved := false
	if h := added.Heuristic(); r.info.BestHeuristic == nil || h < *r.info.BestHeuristic {
		r.info.BestHeuristic = &h
		improved = true
	}
	r.mu.Unlock()

	// 不需要每个结果都写一次 redis
	if improved || size%25 == 0 {
		m.saveProgress(r)
	}
}

func (m *Manager) finish(r *run, plan search.Plan, err error) {
	// 先写入最终状态再从内存中移除，之后的查询由进度存储负责
	defer m.evict(r)
	defer m.saveProgress(r)

	now := time.Now()
	r.mu.Lock()
	r.info.FinishedAt = &now
	r.mu.Unlock()

	setStatus := func(status domain.RosterRunStatus, err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.info.Status = status
		if err != nil {
			r.info.Error = err.Error()
		}
	}

	switch {
	case errors.Is(err, search.ErrCancelled):
		setStatus(domain.RosterRunCancelled, nil)
		return
	case errors.Is(err, search.ErrExhausted):
		setStatus(domain.RosterRunExhausted, err)
		return
	case err != nil:
		setStatus(domain.RosterRunFailed, err)
		return
	}

	solution := plan.(planAdapter).plan
	roster := solution.Roster()
	roster.RunID = r.info.ID

	// 保存之前再检查一次结果是否满足小队的组成规则
	if err := utils.ValidateRoster(roster, solution.SquadType()); err != nil {
		slog.Error("分队结果不合法", "run", r.info.ID, "error", err)
		setStatus(domain.RosterRunFailed, err)
		return
	}

	solution.Apply()

	if err := m.store.InsertRoster(roster); err != nil {
		slog.Error("无法保存分队结果", "run", r.info.ID, "error", err)
		setStatus(domain.RosterRunFailed, err)
		return
	}

	r.mu.Lock()
	r.info.Status = domain.RosterRunSucceeded
	r.info.RosterID = &roster.ID
	heuristic := roster.Heuristic
	r.info.BestHeuristic = &heuristic
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	// 通知失败不影响分队结果
	if err := m.publisher.PublishRoster(ctx, roster, r.commanders); err != nil {
		slog.Error("无法发送分队通知", "run", r.info.ID, "error", err)
	}
}

func (m *Manager) evict(r *run) {
	m.mu.Lock()
	delete(m.runs, r.info.ID)
	m.mu.Unlock()
}

func (m *Manager) saveProgress(r *run) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if err := m.progress.SaveRun(ctx, r.snapshot()); err != nil {
		slog.Error("无法保存分队进度", "run", r.info.ID, "error", err)
	}
}

// Get 优先返回内存中的任务，不存在时再去 redis 中查找
func (m *Manager) Get(ctx context.Context, id string) (*domain.RosterRun, error) {
	m.mu.Lock()
	r, ok := m.runs[id]
	m.mu.Unlock()

	if ok {
		return r.snapshot(), nil
	}

	info, err := m.progress.LoadRun(ctx, id)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Cancel 是幂等的，已经结束的任务不在内存中，返回 ErrRunNotFound
func (m *Manager) Cancel(id string) (*domain.RosterRun, error) {
	m.mu.Lock()
	r, ok := m.runs[id]
	m.mu.Unlock()

	if !ok {
		return nil, ErrRunNotFound
	}

	r.driver.Cancel()
	return r.snapshot(), nil
}

// Shutdown 取消所有任务并等待它们结束
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for _, r := range m.runs {
		r.driver.Cancel()
	}
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Manager) Wait() {
	m.wg.Wait()
}
