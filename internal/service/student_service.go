package service

import (
	"context"
	"errors"
	"fmt"

	wr "github.com/mroth/weightedrand/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
)

// ── 学生名册模块业务错误 ──

var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrAirtableNameTaken  = errors.New("airtable name already exists in this semester")
	ErrNoUnsortedStudents = errors.New("no unsorted students in this semester")
)

// StudentService 学生名册业务接口
type StudentService interface {
	List(ctx context.Context, semesterID string) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id string) (*dto.StudentResponse, error)
	Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error

	// SortingHat 按名单批量分院
	SortingHat(ctx context.Context, req *dto.SortingHatRequest) (*dto.SortingHatResponse, error)
	// AutoSort 将未分院学生随机分配，落后的学院权重更高
	AutoSort(ctx context.Context, semesterID string) (*dto.AutoSortResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, semesterID string) ([]dto.StudentResponse, error) {
	if _, err := s.repo.Semester.GetByID(ctx, semesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}
	students, err := s.repo.Student.ListBySemester(ctx, semesterID)
	if err != nil {
		s.logger.Error("查询学生名册失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, studentToResponse(&students[i]))
	}
	return result, nil
}

// ────────────────────── Get ──────────────────────

func (s *studentService) Get(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	resp := studentToResponse(student)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	if _, err := s.repo.Semester.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	// 同一学期内名册名唯一
	if _, err := s.repo.Student.GetByAirtableName(ctx, req.SemesterID, req.AirtableName); err == nil {
		return nil, ErrAirtableNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}

	student := &model.Student{
		SemesterID:   req.SemesterID,
		AirtableName: req.AirtableName,
		House:        req.House,
	}
	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("名册行已创建",
		zap.String("student_id", student.StudentID),
		zap.String("airtable_name", student.AirtableName))
	resp := studentToResponse(student)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}

	if req.AirtableName != nil && *req.AirtableName != student.AirtableName {
		if _, err := s.repo.Student.GetByAirtableName(ctx, student.SemesterID, *req.AirtableName); err == nil {
			return nil, ErrAirtableNameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询学生失败", zap.Error(err))
			return nil, err
		}
		student.AirtableName = *req.AirtableName
	}
	if req.House != nil {
		student.House = *req.House
	}
	if req.ClearHouse {
		student.House = ""
	}

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新学生失败", zap.Error(err))
		return nil, err
	}
	resp := studentToResponse(student)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Student.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return err
	}
	if err := s.repo.Student.Delete(ctx, id); err != nil {
		s.logger.Error("删除学生失败", zap.Error(err))
		return err
	}
	s.logger.Info("名册行已删除", zap.String("student_id", id))
	return nil
}

// ────────────────────── SortingHat ──────────────────────

func (s *studentService) SortingHat(ctx context.Context, req *dto.SortingHatRequest) (*dto.SortingHatResponse, error) {
	semester, err := s.repo.Semester.GetByID(ctx, req.SemesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	houseLists := []struct {
		house string
		names string
	}{
		{model.HouseBlob, req.Blob},
		{model.HouseCat, req.Cat},
		{model.HouseOwl, req.Owl},
		{model.HouseRedPanda, req.RedPanda},
		{model.HouseBunny, req.Bunny},
	}

	result := &dto.SortingHatResponse{
		Assigned: make([]string, 0),
		NotFound: make([]string, 0),
	}
	for _, entry := range houseLists {
		for _, name := range splitNames(entry.names) {
			student, err := s.repo.Student.GetByAirtableName(ctx, semester.SemesterID, name)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					result.NotFound = append(result.NotFound,
						fmt.Sprintf("%s (not found in %s)", name, semester.Name))
					continue
				}
				s.logger.Error("查询学生失败", zap.String("name", name), zap.Error(err))
				return nil, err
			}
			student.House = entry.house
			if err := s.repo.Student.Update(ctx, student); err != nil {
				s.logger.Error("分院更新失败", zap.String("name", name), zap.Error(err))
				return nil, err
			}
			result.Assigned = append(result.Assigned,
				fmt.Sprintf("%s → %s", name, model.HouseLabels[entry.house]))
		}
	}

	s.logger.Info("分院帽执行完成",
		zap.String("semester_id", semester.SemesterID),
		zap.Int("assigned", len(result.Assigned)),
		zap.Int("not_found", len(result.NotFound)))
	return result, nil
}

// ────────────────────── AutoSort ──────────────────────

func (s *studentService) AutoSort(ctx context.Context, semesterID string) (*dto.AutoSortResponse, error) {
	if _, err := s.repo.Semester.GetByID(ctx, semesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	unsorted, err := s.repo.Student.ListUnsorted(ctx, semesterID)
	if err != nil {
		s.logger.Error("查询未分院学生失败", zap.Error(err))
		return nil, err
	}
	if len(unsorted) == 0 {
		return nil, ErrNoUnsortedStudents
	}

	counts := make(map[string]int, len(model.AllHouses))
	rows, err := s.repo.Student.CountByHouse(ctx, semesterID)
	if err != nil {
		s.logger.Error("统计学院人数失败", zap.Error(err))
		return nil, err
	}
	for _, row := range rows {
		counts[row.House] = row.Count
	}

	result := &dto.AutoSortResponse{
		Assigned: make(map[string][]string, len(model.AllHouses)),
		Total:    len(unsorted),
	}
	for i := range unsorted {
		student := &unsorted[i]
		house, err := pickTrailingHouse(counts)
		if err != nil {
			s.logger.Error("随机分院失败", zap.Error(err))
			return nil, err
		}
		student.House = house
		if err := s.repo.Student.Update(ctx, student); err != nil {
			s.logger.Error("分院更新失败",
				zap.String("name", student.AirtableName), zap.Error(err))
			return nil, err
		}
		counts[house]++
		result.Assigned[house] = append(result.Assigned[house], student.AirtableName)
	}

	s.logger.Info("自动分院完成",
		zap.String("semester_id", semesterID),
		zap.Int("total", result.Total))
	return result, nil
}

// ── 内部辅助方法 ──

// pickTrailingHouse 加权随机选一个学院，与最大学院的人数差越大权重越高
func pickTrailingHouse(counts map[string]int) (string, error) {
	maxCount := 0
	for _, house := range model.AllHouses {
		if counts[house] > maxCount {
			maxCount = counts[house]
		}
	}
	choices := make([]wr.Choice[string, int], 0, len(model.AllHouses))
	for _, house := range model.AllHouses {
		// +1 保证每个学院都有机会被选中
		choices = append(choices, wr.NewChoice(house, maxCount-counts[house]+1))
	}
	chooser, err := wr.NewChooser(choices...)
	if err != nil {
		return "", err
	}
	return chooser.Pick(), nil
}

func studentToResponse(student *model.Student) dto.StudentResponse {
	resp := dto.StudentResponse{
		ID:           student.StudentID,
		SemesterID:   student.SemesterID,
		AirtableName: student.AirtableName,
		House:        student.House,
		Claimed:      student.UserID != nil,
	}
	if student.House != "" {
		resp.HouseLabel = model.HouseLabels[student.House]
	}
	if student.UserID != nil {
		resp.UserID = *student.UserID
	}
	if student.User != nil {
		resp.Username = student.User.Username
	}
	return resp
}
