package domain

import (
	"slices"
	"time"
)

const RoleDPS = "dps"

// Player 是报名参加训练的玩家，指挥官和学员都用这个结构表示
type Player struct {
	ID          int64     `json:"id"`
	AccountName string    `json:"accountName"`
	DiscordName string    `json:"discordName"`
	Email       string    `json:"email"`
	Roles       []string  `json:"roles"` // 按偏好排序，第一个是最想打的位置
	IsTrainer   bool      `json:"isTrainer"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`

	// 搜索过程中被分配到的位置，nil 表示还没有分配
	AssignedRole *string `json:"assignedRole"`
}

func (p *Player) ResetAssignedRole() {
	p.AssignedRole = nil
}

func (p *Player) SetTrainer(isTrainer bool) {
	p.IsTrainer = isTrainer
}

func (p *Player) AssignRole(role string) {
	p.AssignedRole = &role
}

// CanPlay 判断玩家是否报名了这个位置，没有填写任何位置的玩家默认只能打输出
func (p *Player) CanPlay(role string) bool {
	if len(p.Roles) == 0 {
		return role == RoleDPS
	}
	return slices.Contains(p.Roles, role)
}

// PreferredRole 返回玩家最想打的位置
func (p *Player) PreferredRole() string {
	if len(p.Roles) == 0 {
		return RoleDPS
	}
	return p.Roles[0]
}
