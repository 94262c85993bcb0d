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

// 定时任务：给 24 小时内开课、还未提醒的场次发送 Discord 提醒。
// 典型 crontab: */15 * * * * /usr/local/bin/remind
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

	// 4. 发送提醒
	repo := repository.NewRepository(db)
	notifySvc := service.NewNotifyService(cfg, repo, discord.NewClient(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := notifySvc.SendMeetingReminders(ctx)
	if err != nil {
		logger.Fatal("发送场次提醒失败", zap.Error(err))
	}

	logger.Info("场次提醒完成",
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	// 部分失败时以非零退出，交给 cron 监控报警
	if result.Failed > 0 {
		os.Exit(1)
	}
}
