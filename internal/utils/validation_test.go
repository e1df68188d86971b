package utils

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

func duoType() domain.SquadType {
	return domain.SquadType{Handle: "duo", Size: 3, SpecialRoles: []string{"heal_quickness"}}
}

func validRoster() *domain.Roster {
	return &domain.Roster{
		SquadType: "duo",
		NumSquads: 1,
		Squads: []domain.RosterSquad{
			{
				Index:       1,
				CommanderID: 1,
				Members: []domain.RosterMember{
					{PlayerID: 1, Role: domain.RoleDPS, IsCommander: true},
					{PlayerID: 2, Role: "heal_quickness"},
					{PlayerID: 3, Role: domain.RoleDPS},
				},
			},
		},
	}
}

func TestValidateRoster(t *testing.T) {
	assert.NoError(t, ValidateRoster(validRoster(), duoType()))

	cases := map[string]func(r *domain.Roster){
		"squad count mismatch": func(r *domain.Roster) { r.NumSquads = 2 },
		"wrong size":           func(r *domain.Roster) { r.Squads[0].Members = r.Squads[0].Members[:2] },
		"duplicate player":     func(r *domain.Roster) { r.Squads[0].Members[2].PlayerID = 2 },
		"no commander":         func(r *domain.Roster) { r.Squads[0].Members[0].IsCommander = false },
		"wrong commander":      func(r *domain.Roster) { r.Squads[0].CommanderID = 3 },
		"missing special role": func(r *domain.Roster) { r.Squads[0].Members[1].Role = domain.RoleDPS },
		"extra special role":   func(r *domain.Roster) { r.Squads[0].Members[2].Role = "boon_might" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := validRoster()
			mutate(r)
			assert.Error(t, ValidateRoster(r, duoType()))
		})
	}
}

func TestValidateDisjointPlayers(t *testing.T) {
	assert.NoError(t, ValidateDisjointPlayers([]int64{1, 2}, []int64{3, 4}))
	assert.Error(t, ValidateDisjointPlayers([]int64{1, 1}, nil))
	assert.Error(t, ValidateDisjointPlayers([]int64{1}, []int64{2, 1}))
	assert.Error(t, ValidateDisjointPlayers(nil, []int64{2, 2}))
}

func TestValidateMaxSquads(t *testing.T) {
	assert.NoError(t, ValidateMaxSquads(3, 3))
	assert.Error(t, ValidateMaxSquads(0, 3))
	assert.Error(t, ValidateMaxSquads(3, 0))
}

func TestGenerateRandomPlayer(t *testing.T) {
	st := domain.DefaultSquadType()
	for i := 0; i < 20; i++ {
		p := GenerateRandomPlayer(st, "example.com")
		assert.Regexp(t, `^[A-Za-z]+\.\d{4}$`, p.AccountName)
		assert.Regexp(t, `@example\.com$`, p.Email)
		assert.NotEmpty(t, p.Roles)
		for _, role := range p.Roles {
			assert.True(t, role == domain.RoleDPS || slices.Contains(st.SpecialRoles, role))
		}
	}
}
