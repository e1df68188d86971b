package search

import (
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubSolution struct {
	heuristic int
	numSquads int
	seq       int
}

func (s *stubSolution) ExpandOrReturnSolution() (Plan, error) { return s, nil }
func (s *stubSolution) Heuristic() int                        { return s.heuristic }
func (s *stubSolution) NumSquads() int                        { return s.numSquads }

// solveFunc 模拟一次深度优先搜索，call 从 1 开始计数
type solveFunc func(numSquads, call int) (Plan, error)

type stubState struct {
	solver    *stubSolver
	numSquads int
}

func (s *stubState) ExpandOrReturnSolution() (Plan, error) {
	return s.solver.solve(s.numSquads)
}
func (s *stubState) Heuristic() int { return 1 << 30 }
func (s *stubState) NumSquads() int { return s.numSquads }

type stubSolver struct {
	mu         sync.Mutex
	fn         solveFunc
	calls      int
	squadTypes []string
	counts     []int // 每次构造搜索状态时的小队数量
}

func newStubSolver(fn solveFunc) *stubSolver {
	return &stubSolver{fn: fn}
}

func (s *stubSolver) factory(trainees, commanders []*domain.Player, numSquads int, squadType string) Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = append(s.counts, numSquads)
	s.squadTypes = append(s.squadTypes, squadType)
	return &stubState{solver: s, numSquads: numSquads}
}

func (s *stubSolver) solve(numSquads int) (Plan, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.fn(numSquads, call)
}

type staticSquadTypes struct {
	mu     sync.Mutex
	handle string
	reads  int
}

func (s *staticSquadTypes) FirstEnabledHandle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.handle == "" {
		return domain.DefaultSquadHandle
	}
	return s.handle
}

func players(n int, roles ...string) []*domain.Player {
	ps := make([]*domain.Player, n)
	for i := range ps {
		ps[i] = &domain.Player{ID: int64(i + 1), Roles: roles}
	}
	return ps
}
