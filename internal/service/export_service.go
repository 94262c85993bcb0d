package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("failed to generate excel file")

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 积分榜工作簿含两个 Sheet：学院总榜 + 类别×学院合计
//   - 冻结日期生效时导出的是冻结口径的数据
type ExportService interface {
	// ExportStandings 导出学院积分榜工作簿
	ExportStandings(ctx context.Context, caller *Caller, semesterSlug string) (*bytes.Buffer, string, error)
	// ExportRoster 导出学期学生名册
	ExportRoster(ctx context.Context, caller *Caller, semesterSlug string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) resolveSemester(ctx context.Context, slug string) (*model.Semester, error) {
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

// ═══════════════════════════════════════════════════════════
// ExportStandings — 导出学院积分榜
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Standings"：Rank | House | Points，按总分降序
//   - Sheet "By Category"：行为奖励类别（固定顺序，只列出现过的），列为五个学院
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportStandings(ctx context.Context, caller *Caller, semesterSlug string) (*bytes.Buffer, string, error) {
	semester, err := s.resolveSemester(ctx, semesterSlug)
	if err != nil {
		return nil, "", err
	}
	freeze := semester.HousePointsFreezeDate

	// 1. 学院总分
	totals, err := s.repo.Award.HouseTotals(ctx, semester.SemesterID, freeze)
	if err != nil {
		s.logger.Error("统计学院总分失败", zap.Error(err))
		return nil, "", err
	}
	byHouse := make(map[string]int, len(totals))
	for _, row := range totals {
		if row.House == "" {
			continue
		}
		byHouse[row.House] += row.Points
	}

	type standing struct {
		house  string
		points int
	}
	standings := make([]standing, 0, len(model.AllHouses))
	for _, house := range model.AllHouses {
		standings = append(standings, standing{house: house, points: byHouse[house]})
	}
	sort.SliceStable(standings, func(i, j int) bool { return standings[i].points > standings[j].points })

	// 2. 类别×学院合计
	cells, err := s.repo.Award.MatrixTotals(ctx, semester.SemesterID, freeze)
	if err != nil {
		s.logger.Error("统计分类总分失败", zap.Error(err))
		return nil, "", err
	}
	matrix := make(map[string]map[string]int) // awardType → house → points
	typeSeen := make(map[string]bool)
	for _, cell := range cells {
		if cell.House == "" {
			continue
		}
		typeSeen[cell.AwardType] = true
		if matrix[cell.AwardType] == nil {
			matrix[cell.AwardType] = make(map[string]int)
		}
		matrix[cell.AwardType][cell.House] += cell.Points
	}
	var usedTypes []string
	for _, awardType := range model.AllAwardTypes {
		if typeSeen[awardType] {
			usedTypes = append(usedTypes, awardType)
		}
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Sheet 1: 总榜
	const standingsSheet = "Standings"
	idx, _ := f.NewSheet(standingsSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(standingsSheet, "A", "A", 8)
	f.SetColWidth(standingsSheet, "B", "B", 18)
	f.SetColWidth(standingsSheet, "C", "C", 10)

	title := fmt.Sprintf("%s — House Cup Standings", semester.Name)
	if freeze != nil {
		title += fmt.Sprintf(" (frozen at %s)", freeze.Format("2006-01-02"))
	}
	f.SetCellValue(standingsSheet, "A1", title)
	f.MergeCell(standingsSheet, "A1", "C1")
	f.SetCellStyle(standingsSheet, "A1", "A1", headerStyle)

	f.SetCellValue(standingsSheet, cell("A", 2), "Rank")
	f.SetCellValue(standingsSheet, cell("B", 2), "House")
	f.SetCellValue(standingsSheet, cell("C", 2), "Points")
	row := 3
	for i, st := range standings {
		f.SetCellValue(standingsSheet, cell("A", row), i+1)
		f.SetCellValue(standingsSheet, cell("B", row), model.HouseLabels[st.house])
		f.SetCellValue(standingsSheet, cell("C", row), st.points)
		row++
	}

	// Sheet 2: 类别×学院合计
	const categorySheet = "By Category"
	f.NewSheet(categorySheet)

	f.SetColWidth(categorySheet, "A", "A", 30)
	lastCol := colName(len(model.AllHouses))
	f.SetColWidth(categorySheet, "B", lastCol, 12)

	f.SetCellValue(categorySheet, cell("A", 1), "Category")
	for i, house := range model.AllHouses {
		f.SetCellValue(categorySheet, cell(colName(1+i), 1), model.HouseLabels[house])
	}
	f.SetCellStyle(categorySheet, cell("A", 1), cell(lastCol, 1), headerStyle)

	row = 2
	for _, awardType := range usedTypes {
		f.SetCellValue(categorySheet, cell("A", row), model.AwardTypeLabels[awardType])
		for i, house := range model.AllHouses {
			f.SetCellValue(categorySheet, cell(colName(1+i), row), matrix[awardType][house])
		}
		row++
	}
	f.SetCellValue(categorySheet, cell("A", row), "Total")
	for i, house := range model.AllHouses {
		f.SetCellValue(categorySheet, cell(colName(1+i), row), byHouse[house])
	}

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("standings_%s.xlsx", semester.Slug)
	s.logger.Info("积分榜已导出", zap.String("semester", semester.Slug))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportRoster — 导出学期学生名册
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Roster"：Name | House | Username | Email | Courses，按名册名排序

func (s *exportService) ExportRoster(ctx context.Context, caller *Caller, semesterSlug string) (*bytes.Buffer, string, error) {
	semester, err := s.resolveSemester(ctx, semesterSlug)
	if err != nil {
		return nil, "", err
	}

	students, err := s.repo.Student.ListBySemester(ctx, semester.SemesterID)
	if err != nil {
		s.logger.Error("查询学生名册失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Roster"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "D", 24)
	f.SetColWidth(sheetName, "E", "E", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — Roster", semester.Name))
	f.MergeCell(sheetName, "A1", "E1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	f.SetCellValue(sheetName, cell("A", 2), "Name")
	f.SetCellValue(sheetName, cell("B", 2), "House")
	f.SetCellValue(sheetName, cell("C", 2), "Username")
	f.SetCellValue(sheetName, cell("D", 2), "Email")
	f.SetCellValue(sheetName, cell("E", 2), "Courses")

	row := 3
	for i := range students {
		student := &students[i]

		courses, err := s.repo.Student.ListEnrolledCourses(ctx, student.StudentID)
		if err != nil {
			s.logger.Error("查询选课列表失败", zap.String("student_id", student.StudentID), zap.Error(err))
			return nil, "", err
		}
		courseNames := make([]string, 0, len(courses))
		for _, course := range courses {
			courseNames = append(courseNames, course.Name)
		}

		f.SetCellValue(sheetName, cell("A", row), student.AirtableName)
		if student.House != "" {
			f.SetCellValue(sheetName, cell("B", row), model.HouseLabels[student.House])
		} else {
			f.SetCellValue(sheetName, cell("B", row), "-")
		}
		if student.User != nil {
			f.SetCellValue(sheetName, cell("C", row), student.User.Username)
			f.SetCellValue(sheetName, cell("D", row), student.User.Email)
		}
		f.SetCellValue(sheetName, cell("E", row), strings.Join(courseNames, ", "))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("roster_%s.xlsx", semester.Slug)
	s.logger.Info("名册已导出", zap.String("semester", semester.Slug), zap.Int("students", len(students)))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
