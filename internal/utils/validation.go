package utils

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

func ValidateMaxSquads(maxSquads int, commanders int) error {
	if maxSquads <= 0 {
		return errors.New("小队数量必须大于 0")
	}
	if commanders == 0 {
		return errors.New("至少需要一名指挥官")
	}
	return nil
}

// ValidateDisjointPlayers 检查指挥官和学员之间没有重复的玩家
func ValidateDisjointPlayers(commanderIDs, traineeIDs []int64) error {
	seen := make(map[int64]bool, len(commanderIDs))
	for _, id := range commanderIDs {
		if seen[id] {
			return fmt.Errorf("指挥官 %d 重复", id)
		}
		seen[id] = true
	}
	for _, id := range traineeIDs {
		if seen[id] {
			return fmt.Errorf("玩家 %d 重复或者同时是指挥官和学员", id)
		}
		seen[id] = true
	}
	return nil
}

// ValidateRoster 检查分队结果是否满足小队类型的组成规则
func ValidateRoster(roster *domain.Roster, squadType domain.SquadType) error {
	if len(roster.Squads) != roster.NumSquads {
		return fmt.Errorf("小队数量 %d 与结果中的小队数量 %d 不一致", roster.NumSquads, len(roster.Squads))
	}

	seen := make(map[int64]bool)
	for _, squad := range roster.Squads {
		if len(squad.Members) != squadType.Size {
			return fmt.Errorf("第 %d 小队有 %d 人，应为 %d 人", squad.Index, len(squad.Members), squadType.Size)
		}

		commanders := 0
		roles := make([]string, 0, len(squad.Members))
		for _, m := range squad.Members {
			if seen[m.PlayerID] {
				return fmt.Errorf("玩家 %d 被分配到了多个位置", m.PlayerID)
			}
			seen[m.PlayerID] = true

			if m.IsCommander {
				if m.PlayerID != squad.CommanderID {
					return fmt.Errorf("第 %d 小队的指挥官不一致", squad.Index)
				}
				commanders++
			}
			roles = append(roles, m.Role)
		}
		if commanders != 1 {
			return fmt.Errorf("第 %d 小队必须恰好有一名指挥官", squad.Index)
		}

		// 每个特殊位置都要有人
		for _, role := range squadType.SpecialRoles {
			i := slices.Index(roles, role)
			if i < 0 {
				return fmt.Errorf("第 %d 小队缺少 %s", squad.Index, role)
			}
			roles = slices.Delete(roles, i, i+1)
		}
		for _, role := range roles {
			if role != domain.RoleDPS {
				return fmt.Errorf("第 %d 小队存在多余的位置 %s", squad.Index, role)
			}
		}
	}

	return nil
}
