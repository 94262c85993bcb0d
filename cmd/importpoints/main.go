package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/config"
	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/repository"
	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/database"
	applogger "github.com/vEnhance/atheweb/pkg/logger"
)

func main() {
	var (
		file        string
		semester    string
		description string
		dryRun      bool
	)
	flag.StringVar(&file, "file", "", "TSV file to import (\"-\" reads stdin)")
	flag.StringVar(&semester, "semester", "", "semester slug, e.g. fall-2025")
	flag.StringVar(&description, "description", "", "description attached to every created award")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and summarize without writing awards")
	flag.Parse()

	if file == "" || semester == "" {
		fmt.Fprintln(os.Stderr, "usage: importpoints -file points.tsv -semester fall-2025 [-description \"week 3\"] [-dry-run]")
		os.Exit(2)
	}

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

	// 3. 连接数据库（迁移由 server 负责，此处只连接）
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// 4. 打开输入
	var in io.Reader
	if file == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(file)
		if err != nil {
			logger.Fatal("打开导入文件失败", zap.String("file", file), zap.Error(err))
		}
		defer f.Close()
		in = f
	}

	// 5. 执行导入
	repo := repository.NewRepository(db)
	importSvc := service.NewImportService(repo, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := importSvc.ImportTSV(ctx, in, &dto.ImportOptions{
		SemesterSlug: semester,
		Description:  description,
		DryRun:       dryRun,
	})
	if err != nil {
		logger.Fatal("导入失败", zap.Error(err))
	}

	// 6. 打印结果小结
	fmt.Printf("semester: %s\n", result.Semester)
	if result.DryRun {
		fmt.Println("dry-run: no awards were written")
	}
	fmt.Printf("processed %d student rows (%d skipped), %d awards\n",
		result.Processed, result.SkippedRows, result.Created)
	for _, s := range result.Summary {
		fmt.Printf("  %-18s %4d awards  %5d points\n", s.AwardType, s.Count, s.Points)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if len(result.Warnings) > 0 {
		os.Exit(1)
	}
}
