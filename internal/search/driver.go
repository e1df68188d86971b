package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

// Driver 反复调用贪心的深度优先搜索，在限定时间内收集多个解并选出启发值最小的一个
//
// 深度优先搜索每次构造时都会打乱输入，所以多次调用通常会走向不同的分支。
// 与其穷举所有解，不如调用很多次然后挑最好的，这样能在很短的时间内得到一个不错的结果。
type Driver struct {
	parameters *Parameters
	commanders []*domain.Player
	trainees   []*domain.Player
	maxSquads  int
	factory    PlanFactory
	squadTypes SquadTypeSource
	results    *ResultSink
	clock      Clock
	logger     *slog.Logger

	cancelled atomic.Bool
}

type Option func(*Driver)

func WithParameters(parameters *Parameters) Option {
	return func(d *Driver) {
		d.parameters = parameters
	}
}

func WithClock(clock Clock) Option {
	return func(d *Driver) {
		d.clock = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// New 会重置所有玩家的位置，并把所有指挥官标记为训练者
func New(commanders, trainees []*domain.Player, maxSquads int, factory PlanFactory, squadTypes SquadTypeSource, listener Listener, opts ...Option) *Driver {
	d := &Driver{
		parameters: DefaultParameters(),
		commanders: commanders,
		trainees:   trainees,
		maxSquads:  maxSquads,
		factory:    factory,
		squadTypes: squadTypes,
		results:    NewResultSink(),
		clock:      realClock{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, p := range d.commanders {
		p.ResetAssignedRole()
		p.SetTrainer(true)
	}
	for _, p := range d.trainees {
		p.ResetAssignedRole()
	}

	d.results.Subscribe(listener)

	return d
}

func (d *Driver) Results() *ResultSink {
	return d.results
}

// Cancel 可以在任意 goroutine 中调用，多次调用没有副作用
func (d *Driver) Cancel() {
	d.cancelled.Store(true)
}

func (d *Driver) isCancelled(ctx context.Context) bool {
	return d.cancelled.Load() || ctx.Err() != nil
}

// expand 让搜索状态给出一个解，任何错误（包括 panic）都视为本次没有找到解
func (d *Driver) expand(plan Plan) (solution Plan) {
	defer func() {
		if err := recover(); err != nil {
			d.logger.Debug("搜索过程中发生 panic", "error", fmt.Sprint(err))
			solution = nil
		}
	}()

	solution, err := plan.ExpandOrReturnSolution()
	if err != nil {
		d.logger.Debug("本次搜索失败", "error", err)
		return nil
	}
	return solution
}

// Run 阻塞直到选出结果、被取消或小队数量减少到 0
func (d *Driver) Run(ctx context.Context) (Plan, error) {
	// 小队类型只在开始时读取一次，之后配置的变化不影响本次搜索
	squadType := d.squadTypes.FirstEnabledHandle()

	if d.maxSquads <= 0 {
		return nil, ErrExhausted
	}

	plan := d.factory(d.trainees, d.commanders, d.maxSquads, squadType)
	numSquads := plan.NumSquads()
	if numSquads <= 0 {
		return nil, ErrExhausted
	}
	// 跨阶段保留，不在减少小队数量时重置
	minHeuristic := math.MaxInt

	d.logger.Info("开始搜索分队方案", "squads", numSquads, "squadType", squadType, "maxResult", d.parameters.MaxResult, "maxDuration", d.parameters.MaxSearchDuration)
	startTime := d.clock.Now()

	for {
		if d.isCancelled(ctx) {
			d.logger.Info("分队搜索已取消", "results", d.results.Len())
			return nil, ErrCancelled
		}

		solution := d.expand(plan)
		if solution == nil {
			d.logger.Debug("本次没有找到解，换一个起点重新开始", "results", d.results.Len())
		} else {
			minHeuristic = min(minHeuristic, solution.Heuristic())
		}

		// 有时候可以直接找到完美的方案：所有小队都是 5 个输出并且没有指挥官在特殊位置上
		if solution != nil && minHeuristic == numSquads*perfectScorePerSquad {
			d.logger.Info("找到完美方案，停止搜索", "squads", numSquads, "heuristic", minHeuristic)
			return solution, nil
		}

		elapsed := d.clock.Now().Sub(startTime)

		// 超时仍然没有任何结果，减少小队数量后重新搜索
		if elapsed > d.parameters.MaxSearchDuration && d.results.Len() == 0 {
			d.logger.Info("搜索超时，减少小队数量后重试", "duration", elapsed, "squads", numSquads-1)
			numSquads--
			if numSquads == 0 {
				return nil, ErrExhausted
			}
			startTime = d.clock.Now()
			plan = d.factory(d.trainees, d.commanders, numSquads, squadType)
			continue
		}

		if solution != nil {
			d.results.Append(solution)
		}

		// 结果足够多或者已经超时，选出启发值最小的方案
		size := d.results.Len()
		smallBatchAcceptable := size >= d.parameters.SmallResultSize && elapsed >= d.parameters.SmallResultSizeMinDuration
		if size > 0 && (size >= d.parameters.MaxResult || elapsed > d.parameters.MaxSearchDuration || smallBatchAcceptable) {
			best := d.results.Min()
			d.logger.Info("分队搜索完成", "duration", elapsed, "results", size, "heuristic", best.Heuristic())
			return best, nil
		}

		plan = d.factory(d.trainees, d.commanders, numSquads, squadType)
	}
}
