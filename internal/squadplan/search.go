package squadplan

import (
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

type slot struct {
	squad int
	role  string
	last  bool // 是否是小队的最后一个位置
}

type search struct {
	plan       *SquadPlan
	slots      []slot
	commanders []*domain.Player // 第 i 个指挥官带第 i 个小队
	filled     []*domain.Player // 与 slots 一一对应
	used       map[*domain.Player]bool
	steps      int
}

func newSearch(p *SquadPlan) *search {
	s := &search{
		plan:       p,
		commanders: p.commanders[:p.numSquads],
		used:       make(map[*domain.Player]bool),
	}

	dps := p.squadType.DPSSlots()
	for i := 0; i < p.numSquads; i++ {
		for _, role := range p.squadType.SpecialRoles {
			s.slots = append(s.slots, slot{squad: i, role: role})
		}
		for j := 0; j < dps; j++ {
			s.slots = append(s.slots, slot{squad: i, role: domain.RoleDPS})
		}
		if len(s.slots) > 0 {
			s.slots[len(s.slots)-1].last = true
		}
	}
	s.filled = make([]*domain.Player, len(s.slots))

	return s
}

// candidates 返回可以填入这个位置的玩家，顺序是随机的
func (s *search) candidates(sl slot) []*domain.Player {
	commander := s.commanders[sl.squad]

	if !s.used[commander] {
		// 指挥官必须在自己的小队中，最后一个位置只能留给他
		if sl.last {
			if commander.CanPlay(sl.role) {
				return []*domain.Player{commander}
			}
			return nil
		}
	}

	candidates := make([]*domain.Player, 0, len(s.plan.trainees)+1)
	if !s.used[commander] && commander.CanPlay(sl.role) {
		candidates = append(candidates, commander)
	}
	for _, trainee := range s.plan.trainees {
		if !s.used[trainee] && trainee.CanPlay(sl.role) {
			candidates = append(candidates, trainee)
		}
	}

	s.plan.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates
}

func (s *search) fill(i int) (bool, error) {
	if i == len(s.slots) {
		return true, nil
	}

	sl := s.slots[i]
	for _, candidate := range s.candidates(sl) {
		s.steps++
		if s.steps > s.plan.maxBacktracks {
			return false, ErrTooManyBacktracks
		}

		s.place(i, candidate)
		ok, err := s.fill(i + 1)
		if err != nil || ok {
			return ok, err
		}
		s.unplace(i)
	}

	return false, nil
}

func (s *search) place(i int, player *domain.Player) {
	s.filled[i] = player
	s.used[player] = true
	player.AssignRole(s.slots[i].role)
}

func (s *search) unplace(i int) {
	player := s.filled[i]
	s.filled[i] = nil
	delete(s.used, player)
	player.ResetAssignedRole()
}

func (s *search) snapshot() []*Squad {
	squads := make([]*Squad, len(s.commanders))
	for i, commander := range s.commanders {
		squads[i] = &Squad{Commander: commander}
	}
	for i, sl := range s.slots {
		squads[sl.squad].Members = append(squads[sl.squad].Members, Member{
			Player: s.filled[i],
			Role:   sl.role,
		})
	}
	return squads
}

// release 清空本次搜索写到玩家身上的位置，最终采用的解通过 Apply 写回
func (s *search) release() {
	for i, player := range s.filled {
		if player != nil {
			s.unplace(i)
		}
	}
}
