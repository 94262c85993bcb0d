package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/config"
	"github.com/vEnhance/atheweb/internal/repository"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/database"
	"github.com/vEnhance/atheweb/pkg/discord"
	applogger "github.com/vEnhance/atheweb/pkg/logger"
)

// 定时任务：向公共 Discord 频道播报当前学期的学院积分榜。
// 典型 crontab: 0 21 * * 5 /usr/local/bin/standings
func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// 4. 播报榜单
	repo := repository.NewRepository(db)
	notifySvc := service.NewNotifyService(cfg, repo, discord.NewClient(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := notifySvc.PostStandings(ctx)
	if err != nil {
		logger.Fatal("播报积分榜失败", zap.Error(err))
	}

	if !result.Posted {
		// 榜单冻结期间照常退出，不算失败
		logger.Info("榜单已冻结，跳过播报", zap.String("semester", result.Semester))
		return
	}
	logger.Info("积分榜已播报", zap.String("semester", result.Semester))
}
