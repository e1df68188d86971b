package seed

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

type memoryPlayers struct {
	byName map[string]*domain.Player
	nextID int64
}

func newMemoryPlayers() *memoryPlayers {
	return &memoryPlayers{byName: make(map[string]*domain.Player)}
}

func (m *memoryPlayers) GetPlayerByAccountName(accountName string) (*domain.Player, error) {
	p, ok := m.byName[accountName]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *memoryPlayers) CreatePlayer(player *domain.Player) error {
	m.nextID++
	player.ID = m.nextID
	cp := *player
	m.byName[player.AccountName] = &cp
	return nil
}

func (m *memoryPlayers) UpdatePlayer(player *domain.Player) error {
	cp := *player
	m.byName[player.AccountName] = &cp
	return nil
}

func TestImportSignups(t *testing.T) {
	store := newMemoryPlayers()
	require.NoError(t, store.CreatePlayer(&domain.Player{AccountName: "Old.1234", Roles: []string{"dps"}}))

	csvData := "\ufeff账号,Discord,邮箱,位置,是否指挥官\n" +
		"Wang.0001,wang#1,wang@example.com,heal_quickness / DPS / dps,是\n" +
		"Old.1234,old#2,,boon_might、dps,否\n" +
		",nobody,,dps,否\n" +
		"Li.0002,,,,\n"

	summary, err := ImportSignups(store, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, Summary{Created: 2, Updated: 1, Skipped: 1}, summary)

	wang := store.byName["Wang.0001"]
	assert.Equal(t, []string{"heal_quickness", "dps"}, wang.Roles)
	assert.True(t, wang.IsTrainer)
	assert.Equal(t, "wang@example.com", wang.Email)

	old := store.byName["Old.1234"]
	assert.Equal(t, []string{"boon_might", "dps"}, old.Roles)
	assert.Equal(t, "old#2", old.DiscordName)

	li := store.byName["Li.0002"]
	assert.Empty(t, li.Roles)
	assert.True(t, li.CanPlay(domain.RoleDPS))
}

func TestImportSignupsMissingColumn(t *testing.T) {
	_, err := ImportSignups(newMemoryPlayers(), strings.NewReader("账号,Discord\nA,B\n"))
	assert.ErrorContains(t, err, "位置")
}
