package squadplan

import (
	"errors"
	"math"
	"math/rand"

	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

const (
	// 每个小队的理论最低分：指挥官打输出且所有学员都在自己最想打的位置上
	perfectSquadScore = 5
	// 指挥官被分到特殊位置时的惩罚
	commanderSpecialPenalty = 3

	DefaultMaxBacktracks = 20000
)

var ErrTooManyBacktracks = errors.New("回溯次数过多，放弃本次搜索")

type Member struct {
	Player *domain.Player
	Role   string
}

type Squad struct {
	Commander *domain.Player
	Members   []Member // 包含指挥官本人
}

// SquadPlan 是分队问题的一个搜索状态
// 每次构造都会打乱指挥官和学员的顺序，因此相同输入构造出的两个 SquadPlan 通常会走不同的分支
type SquadPlan struct {
	trainees      []*domain.Player
	commanders    []*domain.Player
	numSquads     int
	squadType     domain.SquadType
	maxBacktracks int
	rng           *rand.Rand

	squads []*Squad // 只有解才会有这个字段
}

type Option func(*SquadPlan)

func WithRand(rng *rand.Rand) Option {
	return func(p *SquadPlan) {
		p.rng = rng
	}
}

func WithMaxBacktracks(n int) Option {
	return func(p *SquadPlan) {
		if n > 0 {
			p.maxBacktracks = n
		}
	}
}

func New(trainees, commanders []*domain.Player, numSquads int, squadType domain.SquadType, opts ...Option) *SquadPlan {
	p := &SquadPlan{
		trainees:      make([]*domain.Player, len(trainees)),
		commanders:    make([]*domain.Player, len(commanders)),
		squadType:     squadType,
		maxBacktracks: DefaultMaxBacktracks,
	}
	copy(p.trainees, trainees)
	copy(p.commanders, commanders)

	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	// 小队数量不能超过指挥官数量，也不能超过学员能填满的小队数量
	n := min(numSquads, len(commanders))
	if squadType.Size > 1 {
		n = min(n, len(trainees)/(squadType.Size-1))
	}
	p.numSquads = max(n, 0)

	p.rng.Shuffle(len(p.commanders), func(i, j int) {
		p.commanders[i], p.commanders[j] = p.commanders[j], p.commanders[i]
	})
	p.rng.Shuffle(len(p.trainees), func(i, j int) {
		p.trainees[i], p.trainees[j] = p.trainees[j], p.trainees[i]
	})

	return p
}

func (p *SquadPlan) NumSquads() int {
	return p.numSquads
}

func (p *SquadPlan) SquadType() domain.SquadType {
	return p.squadType
}

func (p *SquadPlan) IsSolution() bool {
	return p.squads != nil
}

func (p *SquadPlan) Squads() []*Squad {
	return p.squads
}

/**
 * 计算分队结果的启发值，越小越好
 * 每个小队的得分 = 5 + 3 * 指挥官是否在特殊位置 + 没有在最想打的位置上的学员数量
 * 因此最低分为 numSquads * 5
 */
func (p *SquadPlan) Heuristic() int {
	if p.squads == nil {
		return math.MaxInt32
	}

	score := 0
	for _, squad := range p.squads {
		score += perfectSquadScore
		for _, m := range squad.Members {
			if m.Player == squad.Commander {
				if m.Role != domain.RoleDPS {
					score += commanderSpecialPenalty
				}
				continue
			}
			if m.Role != m.Player.PreferredRole() {
				score++
			}
		}
	}
	return score
}

// ExpandOrReturnSolution 进行一次贪心的深度优先搜索
// 找到解时返回解；搜索空间内没有解时返回 nil；回溯次数超过上限时返回 ErrTooManyBacktracks
func (p *SquadPlan) ExpandOrReturnSolution() (*SquadPlan, error) {
	if p.squads != nil {
		return p, nil
	}
	if p.numSquads == 0 {
		return nil, nil
	}

	s := newSearch(p)
	defer s.release()

	ok, err := s.fill(0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return &SquadPlan{
		trainees:      p.trainees,
		commanders:    p.commanders,
		numSquads:     p.numSquads,
		squadType:     p.squadType,
		maxBacktracks: p.maxBacktracks,
		rng:           p.rng,
		squads:        s.snapshot(),
	}, nil
}

// Apply 将解中的位置写回到玩家身上，没有被分到小队的玩家会被清空位置
func (p *SquadPlan) Apply() {
	for _, player := range p.commanders {
		player.ResetAssignedRole()
	}
	for _, player := range p.trainees {
		player.ResetAssignedRole()
	}
	for _, squad := range p.squads {
		for _, m := range squad.Members {
			m.Player.AssignRole(m.Role)
		}
	}
}

func (p *SquadPlan) Roster() *domain.Roster {
	roster := &domain.Roster{
		SquadType: p.squadType.Handle,
		NumSquads: p.numSquads,
		Heuristic: p.Heuristic(),
		Squads:    make([]domain.RosterSquad, 0, len(p.squads)),
	}

	for i, squad := range p.squads {
		rs := domain.RosterSquad{
			Index:       i + 1,
			CommanderID: squad.Commander.ID,
			Members:     make([]domain.RosterMember, 0, len(squad.Members)),
		}
		for _, m := range squad.Members {
			rs.Members = append(rs.Members, domain.RosterMember{
				PlayerID:    m.Player.ID,
				AccountName: m.Player.AccountName,
				Role:        m.Role,
				IsCommander: m.Player == squad.Commander,
			})
		}
		roster.Squads = append(roster.Squads, rs)
	}

	return roster
}
