package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/squadtype"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var trainerRatio float64
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机玩家, 2: 导入报名表)")
	flag.IntVar(&n, "n", 50, "要插入的玩家数量")
	flag.Float64Var(&trainerRatio, "trainer-ratio", 0.1, "随机玩家中指挥官的比例")
	flag.StringVar(&file, "file", "./signups.csv", "报名表 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的玩家数量")
			return
		}

		// 随机玩家的位置来自当前启用的小队类型
		registry, err := squadtype.Load(cfg.SquadTypes.File)
		if err != nil {
			slog.Error("无法加载小队类型", slog.String("error", err.Error()))
			return
		}
		squadType, _ := registry.Lookup(registry.FirstEnabledHandle())

		cnt := 0
		for i := 0; i < n; i++ {
			player := utils.GenerateRandomPlayer(squadType, cfg.Seed.EmailDomain)
			player.IsTrainer = rand.Float64() < trainerRatio
			if err := repo.CreatePlayer(player); err != nil {
				slog.Error("无法插入玩家", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入玩家成功", slog.Int("count", cnt), slog.String("squadType", squadType.Handle))
	case 2:
		summary, err := seed.ImportSignupFile(repo, file)
		if err != nil {
			slog.Error("导入报名表失败", slog.String("error", err.Error()))
			return
		}
		slog.Info("导入报名表成功", "created", summary.Created, "updated", summary.Updated, "skipped", summary.Skipped)
	default:
		slog.Error("指定的操作非法")
	}
}
