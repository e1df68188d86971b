package search

import "sync"

// Listener 在结果集增长后被同步调用，调用时新结果已经可以通过 ResultSink 读到
type Listener func(added Plan, size int)

// ResultSink 是只追加的结果集合，可以被订阅
type ResultSink struct {
	mu        sync.RWMutex
	plans     []Plan
	listeners []Listener
}

func NewResultSink() *ResultSink {
	return &ResultSink{}
}

func (s *ResultSink) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *ResultSink) Append(plan Plan) {
	s.mu.Lock()
	s.plans = append(s.plans, plan)
	size := len(s.plans)
	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l(plan, size)
	}
}

func (s *ResultSink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plans)
}

// Plans 按插入顺序返回所有结果的拷贝
func (s *ResultSink) Plans() []Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := make([]Plan, len(s.plans))
	copy(plans, s.plans)
	return plans
}

// Min 返回启发值最小的结果，相同时取最先插入的
func (s *ResultSink) Min() Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best Plan
	bestHeuristic := 0
	for _, plan := range s.plans {
		h := plan.Heuristic()
		if best == nil || h < bestHeuristic {
			best = plan
			bestHeuristic = h
		}
	}
	return best
}
