package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
	pkgerrors "github.com/vEnhance/atheweb/pkg/errors"
)

// ── 积分模块业务错误 ──

var (
	ErrAwardNotFound           = errors.New("award not found")
	ErrInvalidHouse            = errors.New("invalid house")
	ErrInvalidAwardType        = errors.New("invalid award type")
	ErrInvalidAwardedAt        = errors.New("invalid awarded_at time")
	ErrStudentNoHouse          = errors.New("student has no house assignment")
	ErrHouseMismatch           = errors.New("house does not match the student's house")
	ErrStudentSemesterMismatch = errors.New("student is not enrolled in this semester")
	ErrAwardTargetRequired     = errors.New("award requires a student or a house")
)

// AwardService 积分业务接口
type AwardService interface {
	// Leaderboard 学院积分榜；slug 为空时取最新学期
	Leaderboard(ctx context.Context, caller *Caller, semesterSlug string) (*dto.LeaderboardResponse, error)
	// HouseDetail 学院分类明细；非员工只能查看自己的学院
	HouseDetail(ctx context.Context, caller *Caller, semesterSlug, house string) (*dto.HouseDetailResponse, error)
	// HouseMatrix 员工视图：学院内学生×类别矩阵
	HouseMatrix(ctx context.Context, caller *Caller, semesterSlug, house string) (*dto.MatrixResponse, error)
	MyAwards(ctx context.Context, caller *Caller) ([]dto.MyAwardsResponse, error)

	// ── 员工管理操作 ──
	List(ctx context.Context, semesterID string, page *dto.PaginationRequest) ([]dto.AwardResponse, int64, error)
	Create(ctx context.Context, caller *Caller, req *dto.CreateAwardRequest) (*dto.AwardResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAwardRequest) (*dto.AwardResponse, error)
	Delete(ctx context.Context, id string) error
	// BulkAward 按名单批量加分，名单按当前学期匹配
	BulkAward(ctx context.Context, caller *Caller, req *dto.BulkAwardRequest) (*dto.BulkAwardResponse, error)
}

type awardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAwardService 创建 AwardService 实例
func NewAwardService(repo *repository.Repository, logger *zap.Logger) AwardService {
	return &awardService{repo: repo, logger: logger}
}

// resolveSemester 按 slug 解析学期；slug 为空时取最新学期
func (s *awardService) resolveSemester(ctx context.Context, slug string) (*model.Semester, error) {
	if slug == "" {
		return latestVisibleSemester(ctx, s.repo, true)
	}
	semester, err := s.repo.Semester.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}
	return semester, nil
}

// ────────────────────── Leaderboard ──────────────────────

func (s *awardService) Leaderboard(ctx context.Context, caller *Caller, semesterSlug string) (*dto.LeaderboardResponse, error) {
	semester, err := s.resolveSemester(ctx, semesterSlug)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.Award.HouseTotals(ctx, semester.SemesterID, semester.HousePointsFreezeDate)
	if err != nil {
		s.logger.Error("统计学院总分失败", zap.Error(err))
		return nil, err
	}

	byHouse := make(map[string]int, len(totals))
	for _, row := range totals {
		if row.House == "" {
			continue
		}
		byHouse[row.House] += row.Points
	}

	// 五个学院全部列出，没有得分的显示 0
	houses := make([]dto.HouseStandingResponse, 0, len(model.AllHouses))
	for _, house := range model.AllHouses {
		houses = append(houses, dto.HouseStandingResponse{
			House:  house,
			Label:  model.HouseLabels[house],
			Points: byHouse[house],
		})
	}
	sort.SliceStable(houses, func(i, j int) bool { return houses[i].Points > houses[j].Points })
	for i := range houses {
		houses[i].Rank = i + 1
	}

	return &dto.LeaderboardResponse{
		Semester: semesterToResponse(semester),
		Frozen:   semester.HousePointsFreezeDate != nil,
		Houses:   houses,
	}, nil
}

// ────────────────────── HouseDetail ──────────────────────

func (s *awardService) HouseDetail(ctx context.Context, caller *Caller, semesterSlug, house string) (*dto.HouseDetailResponse, error) {
	semester, err := s.resolveSemester(ctx, semesterSlug)
	if err != nil {
		return nil, err
	}
	if !model.IsValidHouse(house) {
		return nil, ErrInvalidHouse
	}

	// 非员工只能查看本人所在的学院
	if !caller.IsStaff() {
		student, err := s.repo.Student.GetByUserAndSemester(ctx, caller.UserID, semester.SemesterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.ErrPermissionDenied
			}
			s.logger.Error("查询学生失败", zap.Error(err))
			return nil, err
		}
		if student.House != house {
			return nil, pkgerrors.ErrPermissionDenied
		}
	}

	cells, err := s.repo.Award.MatrixTotals(ctx, semester.SemesterID, semester.HousePointsFreezeDate)
	if err != nil {
		s.logger.Error("统计分类总分失败", zap.Error(err))
		return nil, err
	}

	byCategory := make([]dto.CategoryTotalResponse, 0)
	total := 0
	for _, cell := range cells {
		if cell.House != house {
			continue
		}
		byCategory = append(byCategory, dto.CategoryTotalResponse{
			AwardType: cell.AwardType,
			Label:     model.AwardTypeLabels[cell.AwardType],
			Points:    cell.Points,
		})
		total += cell.Points
	}
	sort.SliceStable(byCategory, func(i, j int) bool { return byCategory[i].Points > byCategory[j].Points })

	recent, err := s.repo.Award.ListByHouse(ctx, semester.SemesterID, house, semester.HousePointsFreezeDate, 20)
	if err != nil {
		s.logger.Error("查询最近奖励失败", zap.Error(err))
		return nil, err
	}
	recentResp := make([]dto.AwardResponse, 0, len(recent))
	for i := range recent {
		recentResp = append(recentResp, awardToResponse(&recent[i]))
	}

	return &dto.HouseDetailResponse{
		House:        house,
		Label:        model.HouseLabels[house],
		Frozen:       semester.HousePointsFreezeDate != nil,
		TotalPoints:  total,
		ByCategory:   byCategory,
		RecentAwards: recentResp,
	}, nil
}

// ────────────────────── HouseMatrix ──────────────────────

func (s *awardService) HouseMatrix(ctx context.Context, caller *Caller, semesterSlug, house string) (*dto.MatrixResponse, error) {
	if !caller.IsStaff() {
		return nil, pkgerrors.ErrPermissionDenied
	}
	semester, err := s.resolveSemester(ctx, semesterSlug)
	if err != nil {
		return nil, err
	}
	if !model.IsValidHouse(house) {
		return nil, ErrInvalidHouse
	}
	freeze := semester.HousePointsFreezeDate

	students, err := s.repo.Student.ListByHouse(ctx, semester.SemesterID, house)
	if err != nil {
		s.logger.Error("查询学院学生失败", zap.Error(err))
		return nil, err
	}
	cells, err := s.repo.Award.StudentMatrixTotals(ctx, semester.SemesterID, house, freeze)
	if err != nil {
		s.logger.Error("统计学生矩阵失败", zap.Error(err))
		return nil, err
	}
	houseCells, err := s.repo.Award.HouseLevelTypeTotals(ctx, semester.SemesterID, house, freeze)
	if err != nil {
		s.logger.Error("统计学院级奖励失败", zap.Error(err))
		return nil, err
	}

	// 只保留出现过的类型，按固定顺序排列
	usedSet := make(map[string]bool)
	for _, c := range cells {
		usedSet[c.AwardType] = true
	}
	for _, c := range houseCells {
		usedSet[c.AwardType] = true
	}
	usedTypes := make([]string, 0, len(usedSet))
	for _, at := range model.AllAwardTypes {
		if usedSet[at] {
			usedTypes = append(usedTypes, at)
		}
	}

	byStudent := make(map[string]map[string]int)
	for _, c := range cells {
		if byStudent[c.StudentID] == nil {
			byStudent[c.StudentID] = make(map[string]int)
		}
		byStudent[c.StudentID][c.AwardType] = c.Points
	}

	columnTotals := make(map[string]int, len(usedTypes))
	for _, at := range usedTypes {
		columnTotals[at] = 0
	}
	grandTotal := 0

	rows := make([]dto.MatrixRowResponse, 0, len(students))
	for i := range students {
		student := &students[i]
		byType := make(map[string]int, len(usedTypes))
		rowTotal := 0
		for _, at := range usedTypes {
			points := byStudent[student.StudentID][at]
			byType[at] = points
			rowTotal += points
			columnTotals[at] += points
		}
		grandTotal += rowTotal
		rows = append(rows, dto.MatrixRowResponse{
			StudentID: student.StudentID,
			Name:      student.AirtableName,
			ByType:    byType,
			Total:     rowTotal,
		})
	}

	var houseRow *dto.MatrixRowResponse
	if len(houseCells) > 0 {
		byType := make(map[string]int, len(usedTypes))
		rowTotal := 0
		houseByType := make(map[string]int, len(houseCells))
		for _, c := range houseCells {
			houseByType[c.AwardType] = c.Points
		}
		for _, at := range usedTypes {
			points := houseByType[at]
			byType[at] = points
			rowTotal += points
			columnTotals[at] += points
		}
		grandTotal += rowTotal
		houseRow = &dto.MatrixRowResponse{
			Name:   "(House-level awards)",
			ByType: byType,
			Total:  rowTotal,
		}
	}

	return &dto.MatrixResponse{
		Semester:     semesterToResponse(semester),
		House:        house,
		Label:        model.HouseLabels[house],
		Frozen:       freeze != nil,
		AwardTypes:   usedTypes,
		Rows:         rows,
		HouseRow:     houseRow,
		ColumnTotals: columnTotals,
		GrandTotal:   grandTotal,
	}, nil
}

// ────────────────────── MyAwards ──────────────────────

// MyAwards 本人各学期的积分总览；不受冻结日期影响
func (s *awardService) MyAwards(ctx context.Context, caller *Caller) ([]dto.MyAwardsResponse, error) {
	students, err := s.repo.Student.ListByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("查询学生记录失败", zap.Error(err))
		return nil, err
	}
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Semester == nil || students[j].Semester == nil {
			return false
		}
		return students[i].Semester.StartDate.After(students[j].Semester.StartDate)
	})

	result := make([]dto.MyAwardsResponse, 0, len(students))
	for i := range students {
		student := &students[i]
		if student.Semester == nil {
			continue
		}
		awards, err := s.repo.Award.ListByStudent(ctx, student.StudentID)
		if err != nil {
			s.logger.Error("查询学生奖励失败", zap.Error(err))
			return nil, err
		}

		total := 0
		awardResp := make([]dto.AwardResponse, 0, len(awards))
		for j := range awards {
			total += awards[j].Points
			awardResp = append(awardResp, awardToResponse(&awards[j]))
		}

		houseLabel := "Unassigned"
		if student.House != "" {
			houseLabel = model.HouseLabels[student.House]
		}
		result = append(result, dto.MyAwardsResponse{
			Semester:   semesterToResponse(student.Semester),
			House:      student.House,
			HouseLabel: houseLabel,
			Total:      total,
			Awards:     awardResp,
		})
	}
	return result, nil
}

// ────────────────────── List ──────────────────────

func (s *awardService) List(ctx context.Context, semesterID string, page *dto.PaginationRequest) ([]dto.AwardResponse, int64, error) {
	awards, total, err := s.repo.Award.ListBySemester(ctx, semesterID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询奖励列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.AwardResponse, 0, len(awards))
	for i := range awards {
		result = append(result, awardToResponse(&awards[i]))
	}
	return result, total, nil
}

// ────────────────────── Create ──────────────────────

func (s *awardService) Create(ctx context.Context, caller *Caller, req *dto.CreateAwardRequest) (*dto.AwardResponse, error) {
	if !model.IsValidAwardType(req.AwardType) {
		return nil, ErrInvalidAwardType
	}

	semester, err := s.repo.Semester.GetByID(ctx, req.SemesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	awardedAt := time.Now()
	if req.AwardedAt != nil {
		awardedAt, err = time.Parse(time.RFC3339, *req.AwardedAt)
		if err != nil {
			return nil, ErrInvalidAwardedAt
		}
	}

	points := model.DefaultAwardPoints[req.AwardType]
	if req.Points != nil {
		points = *req.Points
	}

	award := &model.Award{
		SemesterID:  semester.SemesterID,
		AwardType:   req.AwardType,
		Points:      points,
		Description: req.Description,
		AwardedAt:   awardedAt,
		AwardedByID: &caller.UserID,
	}

	if req.StudentID != nil {
		student, err := s.repo.Student.GetByID(ctx, *req.StudentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStudentNotFound
			}
			s.logger.Error("查询学生失败", zap.Error(err))
			return nil, err
		}
		if student.House == "" {
			return nil, ErrStudentNoHouse
		}
		if req.House != "" && req.House != student.House {
			return nil, ErrHouseMismatch
		}
		if student.SemesterID != semester.SemesterID {
			return nil, ErrStudentSemesterMismatch
		}
		award.StudentID = &student.StudentID
		award.House = student.House
		award.Student = student
	} else {
		if req.House == "" {
			return nil, ErrAwardTargetRequired
		}
		if !model.IsValidHouse(req.House) {
			return nil, ErrInvalidHouse
		}
		award.House = req.House
	}

	if err := s.repo.Award.Create(ctx, award); err != nil {
		s.logger.Error("创建奖励失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("奖励已创建",
		zap.String("award_id", award.AwardID),
		zap.String("house", award.House),
		zap.String("award_type", award.AwardType),
		zap.Int("points", award.Points))

	resp := awardToResponse(award)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *awardService) Update(ctx context.Context, id string, req *dto.UpdateAwardRequest) (*dto.AwardResponse, error) {
	award, err := s.repo.Award.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAwardNotFound
		}
		s.logger.Error("查询奖励失败", zap.Error(err))
		return nil, err
	}

	if req.Points != nil {
		award.Points = *req.Points
	}
	if req.Description != nil {
		award.Description = *req.Description
	}
	if req.AwardedAt != nil {
		awardedAt, err := time.Parse(time.RFC3339, *req.AwardedAt)
		if err != nil {
			return nil, ErrInvalidAwardedAt
		}
		award.AwardedAt = awardedAt
	}

	if err := s.repo.Award.Update(ctx, award); err != nil {
		s.logger.Error("更新奖励失败", zap.Error(err))
		return nil, err
	}
	resp := awardToResponse(award)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *awardService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Award.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAwardNotFound
		}
		s.logger.Error("查询奖励失败", zap.Error(err))
		return err
	}
	if err := s.repo.Award.Delete(ctx, id); err != nil {
		s.logger.Error("删除奖励失败", zap.Error(err))
		return err
	}
	s.logger.Info("奖励已删除", zap.String("award_id", id))
	return nil
}

// ────────────────────── BulkAward ──────────────────────

func (s *awardService) BulkAward(ctx context.Context, caller *Caller, req *dto.BulkAwardRequest) (*dto.BulkAwardResponse, error) {
	if !model.IsValidAwardType(req.AwardType) {
		return nil, ErrInvalidAwardType
	}
	semester, err := currentSemester(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	points := model.DefaultAwardPoints[req.AwardType]
	if req.Points != nil {
		points = *req.Points
	}

	names := splitNames(req.Names)
	result := &dto.BulkAwardResponse{
		Awarded: make([]string, 0, len(names)),
		Errors:  make([]string, 0),
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

	now := time.Now()
	var batch []model.Award
	for _, name := range names {
		students, err := txRepo.Student.ListByNameAndSemester(ctx, semester.SemesterID, name)
		if err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("匹配学生失败", zap.String("name", name), zap.Error(err))
			return nil, err
		}
		if len(students) > 1 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: multiple students found with this name", name))
			continue
		}
		if len(students) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: not enrolled in %s", name, semester.Name))
			continue
		}
		student := students[0]
		if student.House == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: no house assigned", name))
			continue
		}

		batch = append(batch, model.Award{
			SemesterID:  semester.SemesterID,
			StudentID:   &student.StudentID,
			House:       student.House,
			AwardType:   req.AwardType,
			Points:      points,
			Description: req.Description,
			AwardedAt:   now,
			AwardedByID: &caller.UserID,
		})
		result.Awarded = append(result.Awarded,
			fmt.Sprintf("%s: +%d pts (%s)", name, points, model.HouseLabels[student.House]))
	}

	if err := txRepo.Award.CreateBatch(ctx, batch); err != nil {
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

	s.logger.Info("批量奖励完成",
		zap.String("award_type", req.AwardType),
		zap.Int("awarded", len(result.Awarded)),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// ── 内部辅助方法 ──

func awardToResponse(award *model.Award) dto.AwardResponse {
	resp := dto.AwardResponse{
		ID:          award.AwardID,
		SemesterID:  award.SemesterID,
		House:       award.House,
		AwardType:   award.AwardType,
		AwardLabel:  model.AwardTypeLabels[award.AwardType],
		Points:      award.Points,
		Description: award.Description,
		AwardedAt:   award.AwardedAt.Format(time.RFC3339),
	}
	if award.StudentID != nil {
		resp.StudentID = *award.StudentID
	}
	if award.Student != nil {
		resp.StudentName = award.Student.AirtableName
	}
	if award.AwardedBy != nil {
		resp.AwardedByName = award.AwardedBy.FullName()
	}
	return resp
}
