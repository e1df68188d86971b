package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

const (
	columnAccountName = "账号"
	columnDiscordName = "Discord"
	columnEmail       = "邮箱"
	columnRoles       = "位置"
	columnIsTrainer   = "是否指挥官"
)

var requiredColumns = []string{columnAccountName, columnRoles}

// PlayerStore 是导入报名表时用到的 repository 方法
type PlayerStore interface {
	GetPlayerByAccountName(accountName string) (*domain.Player, error)
	CreatePlayer(player *domain.Player) error
	UpdatePlayer(player *domain.Player) error
}

type Summary struct {
	Created int
	Updated int
	Skipped int
}

// ImportSignupFile 导入报名表，已经存在的玩家会用报名表中的信息覆盖
func ImportSignupFile(store PlayerStore, path string) (Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer file.Close()

	return ImportSignups(store, file)
}

func ImportSignups(store PlayerStore, in io.Reader) (Summary, error) {
	reader := csv.NewReader(in)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return Summary{}, fmt.Errorf("读取表头失败: %w", err)
	}
	index := make(map[string]int, len(headers))
	for i, header := range headers {
		index[strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))] = i
	}
	for _, column := range requiredColumns {
		if _, ok := index[column]; !ok {
			return Summary{}, fmt.Errorf("没有找到 %s 列", column)
		}
	}

	get := func(row []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	summary := Summary{}
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return summary, fmt.Errorf("读取第 %d 行失败: %w", line+1, err)
		}
		line++

		accountName := get(row, columnAccountName)
		if accountName == "" {
			slog.Warn("没有找到账号，跳过该行", "line", line)
			summary.Skipped++
			continue
		}

		signup := &domain.Player{
			AccountName: accountName,
			DiscordName: get(row, columnDiscordName),
			Email:       get(row, columnEmail),
			Roles:       parseRoles(get(row, columnRoles)),
			IsTrainer:   parseBool(get(row, columnIsTrainer)),
		}

		player, err := store.GetPlayerByAccountName(accountName)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if err := store.CreatePlayer(signup); err != nil {
				return summary, fmt.Errorf("插入玩家 %s 失败: %w", accountName, err)
			}
			summary.Created++
		case err != nil:
			return summary, fmt.Errorf("查询玩家 %s 失败: %w", accountName, err)
		default:
			player.DiscordName = signup.DiscordName
			player.Email = signup.Email
			player.Roles = signup.Roles
			player.IsTrainer = signup.IsTrainer
			if err := store.UpdatePlayer(player); err != nil {
				return summary, fmt.Errorf("更新玩家 %s 失败: %w", accountName, err)
			}
			summary.Updated++
		}
	}

	return summary, nil
}

// parseRoles 支持用 / 、 , ; 或空格分隔的位置，保留填写顺序并去重
func parseRoles(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '/', '、', ',', '，', ';', '；', ' ':
			return true
		}
		return false
	})

	roles := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		role := strings.ToLower(f)
		if seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	return roles
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "是", "y", "yes", "true", "1":
		return true
	}
	return false
}
