package repository

import (
	"database/sql"
	"sort"

	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

func (r *Repository) InsertRoster(roster *domain.Roster) error {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO rosters (run_id, squad_type, num_squads, heuristic)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{roster.RunID, roster.SquadType, roster.NumSquads, roster.Heuristic}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&roster.ID, &roster.CreatedAt, &roster.Version); err != nil {
		return err
	}

	for _, squad := range roster.Squads {
		query := `
			INSERT INTO roster_squads (roster_id, squad_index, commander_id)
			VALUES ($1, $2, $3)
			RETURNING id
		`

		var squadID int64
		if err := tx.QueryRowContext(ctx, query, roster.ID, squad.Index, squad.CommanderID).Scan(&squadID); err != nil {
			return err
		}

		for _, member := range squad.Members {
			query := `
				INSERT INTO roster_squad_members (roster_squad_id, player_id, role, is_commander)
				VALUES ($1, $2, $3, $4)
			`

			if _, err := tx.ExecContext(ctx, query, squadID, member.PlayerID, member.Role, member.IsCommander); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRosterByID(id int64) (*domain.Roster, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT
			r.run_id,
			r.squad_type,
			r.num_squads,
			r.heuristic,
			r.created_at,
			r.version,
			rs.squad_index,
			rs.commander_id,
			rsm.player_id,
			p.account_name,
			rsm.role,
			rsm.is_commander
		FROM rosters r
		LEFT JOIN roster_squads rs ON r.id = rs.roster_id
		LEFT JOIN roster_squad_members rsm ON rs.id = rsm.roster_squad_id
		LEFT JOIN players p ON rsm.player_id = p.id
		WHERE r.id = $1
		ORDER BY rs.squad_index, rsm.is_commander DESC, rsm.role
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := &domain.Roster{
		ID: id,
	}
	found := false
	squadsMap := make(map[int]*domain.RosterSquad) // squadIndex -> squad

	for rows.Next() {
		var row struct {
			squadIndex  sql.NullInt32
			commanderID sql.NullInt64
			playerID    sql.NullInt64
			accountName sql.NullString
			role        sql.NullString
			isCommander sql.NullBool
		}

		dst := []any{
			&roster.RunID,
			&roster.SquadType,
			&roster.NumSquads,
			&roster.Heuristic,
			&roster.CreatedAt,
			&roster.Version,
			&row.squadIndex,
			&row.commanderID,
			&row.playerID,
			&row.accountName,
			&row.role,
			&row.isCommander,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		found = true

		if !row.squadIndex.Valid {
			continue
		}

		index := int(row.squadIndex.Int32)
		if _, exists := squadsMap[index]; !exists {
			squadsMap[index] = &domain.RosterSquad{
				Index:       index,
				CommanderID: row.commanderID.Int64,
				Members:     make([]domain.RosterMember, 0),
			}
		}

		if !row.playerID.Valid {
			continue
		}

		// 玩家被删除后仍然保留分队记录，只是账号名为空
		squadsMap[index].Members = append(squadsMap[index].Members, domain.RosterMember{
			PlayerID:    row.playerID.Int64,
			AccountName: row.accountName.String,
			Role:        row.role.String,
			IsCommander: row.isCommander.Bool,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	roster.Squads = make([]domain.RosterSquad, 0, len(squadsMap))
	for _, squad := range squadsMap {
		roster.Squads = append(roster.Squads, *squad)
	}
	sort.Slice(roster.Squads, func(i, j int) bool {
		return roster.Squads[i].Index < roster.Squads[j].Index
	})

	return roster, nil
}
