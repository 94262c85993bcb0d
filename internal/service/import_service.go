package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
)

// ── 导入模块业务错误 ──

var (
	ErrImportNoRows       = errors.New("tsv file must have a header row and at least one data row")
	ErrImportNoCategories = errors.New("no recognizable category columns in header")
)

// 表头前缀 → 奖励类型。表头按小写前缀匹配，顺序即匹配优先级；
// 每个类别只取第一次出现的列（表格里列会按学院重复）
var importHeaderRules = []struct {
	prefix    string
	awardType string
}{
	{"class", model.AwardClassAttendance},
	{"homework", model.AwardHomework},
	{"event", model.AwardEvent},
	{"oh", model.AwardOfficeHours},
	{"potd", model.AwardPOTD},
	{"extra points", model.AwardStaffBonus},
	{"intro", model.AwardIntroPost},
}

// 明确忽略的表头
const ignoredHeaderPrefix = "nightly debrief"

// importColumn 一个已识别的类别列
type importColumn struct {
	index     int
	awardType string
}

// ImportService 积分表格导入业务接口，由 importpoints 命令调用
type ImportService interface {
	// ImportTSV 解析 TSV 表格并批量创建积分奖励。
	// 首列是学生名册名，其余列按表头前缀映射到奖励类型；
	// DryRun 时只解析汇总、不落库
	ImportTSV(ctx context.Context, r io.Reader, opts *dto.ImportOptions) (*dto.ImportResult, error)
}

type importService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(repo *repository.Repository, logger *zap.Logger) ImportService {
	return &importService{repo: repo, logger: logger}
}

// ────────────────────── ImportTSV ──────────────────────

func (s *importService) ImportTSV(ctx context.Context, r io.Reader, opts *dto.ImportOptions) (*dto.ImportResult, error) {
	semester, err := s.repo.Semester.GetBySlug(ctx, opts.SemesterSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		s.logger.Error("解析 TSV 失败", zap.Error(err))
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrImportNoRows
	}

	columns := parseImportHeader(rows[0])
	if len(columns) == 0 {
		return nil, ErrImportNoCategories
	}

	// 预取本学期全部学生，按名册名索引
	students, err := s.repo.Student.ListBySemester(ctx, semester.SemesterID)
	if err != nil {
		s.logger.Error("查询学生名册失败", zap.Error(err))
		return nil, err
	}
	byName := make(map[string]*model.Student, len(students))
	for i := range students {
		byName[students[i].AirtableName] = &students[i]
	}

	description := opts.Description
	if description == "" {
		description = "Bulk imported from spreadsheet"
	}

	result := &dto.ImportResult{
		Semester: semester.Name,
		DryRun:   opts.DryRun,
		Warnings: make([]string, 0),
	}

	now := time.Now()
	var awards []model.Award
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		if strings.Contains(strings.ToLower(name), "non-student") {
			result.SkippedRows++
			continue
		}

		student, ok := byName[name]
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d: student %q not found, skipping", rowNum, name))
			continue
		}
		if student.House == "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d: student %q has no house, skipping", rowNum, name))
			continue
		}
		result.Processed++

		for _, col := range columns {
			if col.index >= len(row) {
				continue
			}
			count := parseImportCell(row[col.index], col.awardType)
			if count <= 0 {
				continue
			}
			points := count * model.DefaultAwardPoints[col.awardType]
			if points <= 0 {
				continue
			}
			awards = append(awards, model.Award{
				SemesterID:  semester.SemesterID,
				StudentID:   &student.StudentID,
				House:       student.House,
				AwardType:   col.awardType,
				Points:      points,
				Description: description,
				AwardedAt:   now,
			})
		}
	}

	result.Created = len(awards)
	result.Summary = summarizeImport(awards)

	if opts.DryRun || len(awards) == 0 {
		return result, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)
	if err := txRepo.Award.CreateBatch(ctx, awards); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("批量创建奖励失败", zap.Error(err))
		return nil, err
	}
	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("积分导入完成",
		zap.String("semester", semester.Slug),
		zap.Int("students", result.Processed),
		zap.Int("awards", result.Created),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// ── 内部辅助方法 ──

// parseImportHeader 解析表头，返回每个类别首次出现的列。
// 首列固定是学生名，不参与匹配
func parseImportHeader(header []string) []importColumn {
	seen := make(map[string]bool)
	var columns []importColumn
	for i, cell := range header {
		if i == 0 {
			continue
		}
		text := strings.ToLower(strings.TrimSpace(cell))
		if text == "" || strings.HasPrefix(text, ignoredHeaderPrefix) {
			continue
		}
		for _, rule := range importHeaderRules {
			if !strings.HasPrefix(text, rule.prefix) {
				continue
			}
			if !seen[rule.awardType] {
				seen[rule.awardType] = true
				columns = append(columns, importColumn{index: i, awardType: rule.awardType})
			}
			break
		}
	}
	return columns
}

// parseImportCell 把单元格解析成次数。
// intro 列接受 TRUE/FALSE（TRUE 记 1 次），其余列解析整数；
// 解析失败、空值、非正数都返回 0
func parseImportCell(cell, awardType string) int {
	text := strings.TrimSpace(cell)
	if text == "" {
		return 0
	}
	if awardType == model.AwardIntroPost {
		if strings.EqualFold(text, "TRUE") {
			return 1
		}
		return 0
	}
	count, err := strconv.Atoi(text)
	if err != nil || count <= 0 {
		return 0
	}
	return count
}

func summarizeImport(awards []model.Award) []dto.ImportTypeSummary {
	counts := make(map[string]int)
	points := make(map[string]int)
	for i := range awards {
		counts[awards[i].AwardType]++
		points[awards[i].AwardType] += awards[i].Points
	}
	summary := make([]dto.ImportTypeSummary, 0, len(counts))
	for awardType, count := range counts {
		summary = append(summary, dto.ImportTypeSummary{
			AwardType: awardType,
			Count:     count,
			Points:    points[awardType],
		})
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].AwardType < summary[j].AwardType })
	return summary
}
