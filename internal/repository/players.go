package repository

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

const playerColumns = `id, account_name, discord_name, email, roles, is_trainer, created_at, version`

// scanPlayer 中 roles 是 text[]，database/sql 无法直接扫描，需要借助 pgtype
func scanPlayer(m *pgtype.Map, row interface{ Scan(dest ...any) error }) (*domain.Player, error) {
	player := &domain.Player{}
	dst := []any{&player.ID, &player.AccountName, &player.DiscordName, &player.Email, m.SQLScanner(&player.Roles), &player.IsTrainer, &player.CreatedAt, &player.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return player, nil
}

func (r *Repository) CreatePlayer(player *domain.Player) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO players (account_name, discord_name, email, roles, is_trainer)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{player.AccountName, player.DiscordName, player.Email, player.Roles, player.IsTrainer}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&player.ID, &player.CreatedAt, &player.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetPlayerByID(id int64) (*domain.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE id = $1`, playerColumns)

	ctx, cancel := r.queryContext()
	defer cancel()

	return scanPlayer(pgtype.NewMap(), r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetPlayerByAccountName(accountName string) (*domain.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE account_name = $1`, playerColumns)

	ctx, cancel := r.queryContext()
	defer cancel()

	return scanPlayer(pgtype.NewMap(), r.dbpool.QueryRowContext(ctx, query, accountName))
}

func (r *Repository) GetAllPlayers() ([]*domain.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players ORDER BY id`, playerColumns)

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlayers(rows)
}

// GetPlayersByIDs 按照 ids 的顺序返回玩家，只要有一个不存在就返回 sql.ErrNoRows
func (r *Repository) GetPlayersByIDs(ids []int64) ([]*domain.Player, error) {
	if len(ids) == 0 {
		return []*domain.Player{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM players WHERE id = ANY($1)`, playerColumns)

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players, err := collectPlayers(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	result := make([]*domain.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, sql.ErrNoRows
		}
		result = append(result, p)
	}

	return result, nil
}

func collectPlayers(rows *sql.Rows) ([]*domain.Player, error) {
	m := pgtype.NewMap()
	players := make([]*domain.Player, 0)
	for rows.Next() {
		player, err := scanPlayer(m, rows)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return players, nil
}

func (r *Repository) UpdatePlayer(player *domain.Player) error {
	query := `
		UPDATE players
		SET
			discord_name = $1,
			email = $2,
			roles = $3,
			is_trainer = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING account_name, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{player.DiscordName, player.Email, player.Roles, player.IsTrainer, player.ID, player.Version}
	dst := []any{&player.AccountName, &player.CreatedAt, &player.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePlayer(id int64) error {
	query := `
		DELETE FROM players WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
