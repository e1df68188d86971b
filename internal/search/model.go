package search

import (
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

const (
	MaxResult                      = 1000
	MaxSearchDurationSeconds       = 30
	SmallResultSize                = 50
	SmallResultSizeDurationSeconds = 1

	// 每个小队的理论最低启发值
	perfectScorePerSquad = 5
)

var (
	ErrCancelled = errors.New("搜索已被取消")
	ErrExhausted = errors.New("减少到 0 个小队仍然没有找到任何解")
)

// Plan 是搜索状态，ExpandOrReturnSolution 返回 nil 表示本次没有找到解
type Plan interface {
	ExpandOrReturnSolution() (Plan, error)
	Heuristic() int
	NumSquads() int
}

// PlanFactory 每次调用都应该返回一个新的、内部顺序被打乱的搜索状态
type PlanFactory func(trainees, commanders []*domain.Player, numSquads int, squadType string) Plan

// SquadTypeSource 提供当前配置的小队类型
type SquadTypeSource interface {
	FirstEnabledHandle() string
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// 搜索参数
type Parameters struct {
	MaxResult                  int           // 结果数量上限
	MaxSearchDuration          time.Duration // 每个小队数量阶段的最长搜索时间
	SmallResultSize            int           // 快速结束所需的结果数量
	SmallResultSizeMinDuration time.Duration // 快速结束前至少要搜索的时间
}

func DefaultParameters() *Parameters {
	return &Parameters{
		MaxResult:                  MaxResult,
		MaxSearchDuration:          MaxSearchDurationSeconds * time.Second,
		SmallResultSize:            SmallResultSize,
		SmallResultSizeMinDuration: SmallResultSizeDurationSeconds * time.Second,
	}
}
