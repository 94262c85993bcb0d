package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
)

// ── 测试辅助 ──

type importTestMocks struct {
	semester *mockSemesterRepo
	student  *mockStudentRepo
	award    *mockAwardRepo
}

func setupTestImportService() (ImportService, *importTestMocks) {
	mocks := &importTestMocks{
		semester: newMockSemesterRepo(),
		student:  newMockStudentRepo(),
		award:    newMockAwardRepo(),
	}
	repo := &repository.Repository{
		User:        newMockUserRepo(),
		Semester:    mocks.semester,
		Course:      newMockCourseRepo(),
		Student:     mocks.student,
		Event:       newMockEventRepo(),
		Award:       mocks.award,
		Staff:       newMockStaffRepo(),
		Invite:      newMockInviteRepo(),
		Blog:        newMockBlogRepo(),
		Yearbook:    newMockYearbookRepo(),
		Attendance:  newMockAttendanceRepo(),
		SiteContent: newMockSiteContentRepo(),
	}
	logger := zap.NewNop()
	svc := NewImportService(repo, logger)
	return svc, mocks
}

func seedRosterStudent(mocks *importTestMocks, id, name, house string) *model.Student {
	student := &model.Student{
		StudentID:    id,
		SemesterID:   "sem-1",
		AirtableName: name,
		House:        house,
	}
	mocks.student.students[id] = student
	return student
}

func importOpts() *dto.ImportOptions {
	return &dto.ImportOptions{SemesterSlug: "active"}
}

// ── ImportTSV 测试 ──

func TestImportService_ImportTSV_CreatesAwardsPerCategory(t *testing.T) {
	svc, mocks := setupTestImportService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	seedRosterStudent(mocks, "stu-1", "Alice", model.HouseOwl)

	// class 2次×5分、homework 1次×5分、potd 空、intro TRUE×1分
	tsv := strings.Join([]string{
		"Name\tClass Attendance (Owl)\tHomework\tPOTD\tIntro?",
		"Alice\t2\t1\t\tTRUE",
	}, "\n")

	result, err := svc.ImportTSV(context.Background(), strings.NewReader(tsv), importOpts())
	if err != nil {
		t.Fatalf("ImportTSV 应成功: %v", err)
	}
	if result.Processed != 1 {
		t.Errorf("期望处理1行，实际=%d", result.Processed)
	}
	if result.Created != 3 {
		t.Errorf("期望创建3条奖励，实际=%d", result.Created)
	}
	if len(mocks.award.awards) != 3 {
		t.Fatalf("期望落库3条，实际=%d", len(mocks.award.awards))
	}

	byType := make(map[string]int)
	for _, a := range mocks.award.awards {
		byType[a.AwardType] = a.Points
		if a.House != model.HouseOwl {
			t.Errorf("奖励应归属学生学院，实际=%s", a.House)
		}
		if a.Description != "Bulk imported from spreadsheet" {
			t.Errorf("期望默认描述，实际=%s", a.Description)
		}
	}
	if byType[model.AwardClassAttendance] != 10 {
		t.Errorf("class 2次期望10分，实际=%d", byType[model.AwardClassAttendance])
	}
	if byType[model.AwardHomework] != 5 {
		t.Errorf("homework 1次期望5分，实际=%d", byType[model.AwardHomework])
	}
	if byType[model.AwardIntroPost] != 1 {
		t.Errorf("intro TRUE期望1分，实际=%d", byType[model.AwardIntroPost])
	}
}

func TestImportService_ImportTSV_FirstColumnWinsPerCategory(t *testing.T) {
	svc, mocks := setupTestImportService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	seedRosterStudent(mocks, "stu-1", "Alice", model.HouseOwl)

	// 同一类别按学院重复出现时只认第一列
	tsv := strings.Join([]string{
		"Name\tHomework (Blob)\tHomework (Cat)\tHomework (Owl)",
		"Alice\t1\t4\t9",
	}, "\n")

	result, err := svc.ImportTSV(context.Background(), strings.NewReader(tsv), importOpts())
	if err != nil {
		t.Fatalf("ImportTSV 应成功: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("期望只创建1条奖励，实际=%d", result.Created)
	}
	for _, a := range mocks.award.awards {
		if a.Points != 5 {
			t.Errorf("应取第一列的次数（1×5分），实际=%d", a.Points)
		}
	}
}

func TestImportService_ImportTSV_HeaderPrefixMatching(t *testing.T) {
	svc, mocks := setupTestImportService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	seedRosterStudent(mocks, "stu-1", "Alice", model.HouseOwl)

	// oh→office_hours、extra points→staff_bonus、nightly debrief 列被忽略
	tsv := strings.Join([]string{
		"Name\tOH attended\tExtra Points awarded\tNightly Debrief notes",
		"Alice\t3\t2\t5",
	}, "\n")

	result, err := svc.ImportTSV(context.Background(), strings.NewReader(tsv), importOpts())
	if err != nil {
		t.Fatalf("ImportTSV 应成功: %v", err)
	}
	if result.Created != 2 {
		t.Fatalf("期望2条奖励（忽略 debrief 列），实际=%d", result.Created)
	}
	byType := make(map[string]int)
	for _, a := range mocks.award.awards {
		byType[a.AwardType] = a.Points
	}
	if byType[model.AwardOfficeHours] != 6 {
		t.Errorf("oh 3次期望6分，实际=%d", byType[model.AwardOfficeHours])
	}
	if byType[model.AwardStaffBonus] != 4 {
		t.Errorf("extra points 2次期望4分，实际=%d", byType[model.AwardStaffBonus])
	}
}

func TestImportService_ImportTSV_CellCoercion(t *testing.T) {
	svc, mocks := setupTestImportService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	seedRosterStudent(mocks, "stu-1", "Alice", model.HouseOwl)
	seedRosterStudent(mocks, "stu-2", "Bob", model.HouseCat)
	seedRosterStudent(mocks, "stu-3", "Carol", model.HouseBlob)

	// 垃圾值、负数、FALSE 都不产生奖励
	tsv := strings.Join([]string{
		"Name\tHomework\tIntro?",
		"Alice\tabc\tFALSE",
		"Bob\t-2\tyes",
		"Carol\t0\t",
	}, "\n")

	result, err := svc.ImportTSV(context.Background(), strings.NewReader(tsv), importOpts())
	if err != nil {
		t.Fatalf("ImportTSV 应成功: %v", err)
	}
	if result.Processed != 3 {
		t.Errorf("期望处理3行，实际=%d", result.Processed)
	}
	if result.Created != 0 {
		t.Errorf("坏单元格不应产生奖励，实际=%d", result.Created)
	}
}

func TestImportService_ImportTSV_SkipsAndWarns(t *testing.T) {
	svc, mocks := setupTestImportService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	seedRosterStudent(mocks, "stu-1", "Alice", model.HouseOwl)
	seedRosterStudent(mocks, "stu-2", "Bob", "") // 未分学院

	tsv := strings.Join([]string{
		"Name\tHomework",
		"Alice\t1",
		"Bob\t2",
		"Ghost\t3",
		"Journey (non-student)\t4",
	}, "\n")

	result, err := svc.ImportTSV(context.Background(), strings.NewReader(tsv), importOpts())
	if err != nil {
		t.Fatalf("ImportTSV 应成功: %v", err)
	}
	if result.Processed != 1 {
		t.Errorf("期望仅Alice被处理，实际=%d", result.Processed)
	}
	if result.SkippedRows != 1 {
		t.Errorf("期望跳过1条非学生行，实际=%d", result.SkippedRows)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("期望2条警告，实际=%v", result.Warnings)
	}
	joined := strings.Join(result.Warnings, "; ")
	if !strings.Contains(joined, `"Ghost" not found`) {
		t.Errorf("期望警告Ghost未找到，实际=%v", result.Warnings)
	}
	if !strings.Contains(joined, `"Bob" has no house`) {
		t.Errorf("期望警告Bob无学院，实际=%v", result.Warnings)
	}
}

func TestImportService_ImportTSV_DryRunDoesNotPersist(t *testing.T) {
	svc, mocks := setupTestImportService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	seedRosterStudent(mocks, "stu-1", "Alice", model.HouseOwl)

	tsv := "Name\tHomework\nAlice\t2"
	opts := importOpts()
	opts.DryRun = true

	result, err := svc.ImportTSV(context.Background(), strings.NewReader(tsv), opts)
	if err != nil {
		t.Fatalf("ImportTSV 应成功: %v", err)
	}
	if !result.DryRun || result.Created != 1 {
		t.Errorf("dry-run 应报告将创建1条，实际=%+v", result)
	}
	if len(mocks.award.awards) != 0 {
		t.Errorf("dry-run 不应落库，实际=%d", len(mocks.award.awards))
	}
}

func TestImportService_ImportTSV_SummaryAggregates(t *testing.T) {
	svc, mocks := setupTestImportService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	seedRosterStudent(mocks, "stu-1", "Alice", model.HouseOwl)
	seedRosterStudent(mocks, "stu-2", "Bob", model.HouseCat)

	tsv := strings.Join([]string{
		"Name\tHomework\tPOTD",
		"Alice\t1\t1",
		"Bob\t2\t",
	}, "\n")

	result, err := svc.ImportTSV(context.Background(), strings.NewReader(tsv), importOpts())
	if err != nil {
		t.Fatalf("ImportTSV 应成功: %v", err)
	}
	if len(result.Summary) != 2 {
		t.Fatalf("期望2个类别小结，实际=%v", result.Summary)
	}
	// 按类型名排序：homework < potd
	if result.Summary[0].AwardType != model.AwardHomework || result.Summary[0].Count != 2 || result.Summary[0].Points != 15 {
		t.Errorf("homework 小结错误，实际=%+v", result.Summary[0])
	}
	if result.Summary[1].AwardType != model.AwardPOTD || result.Summary[1].Count != 1 || result.Summary[1].Points != 10 {
		t.Errorf("potd 小结错误，实际=%+v", result.Summary[1])
	}
}

func TestImportService_ImportTSV_HeaderOnly(t *testing.T) {
	svc, mocks := setupTestImportService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")

	_, err := svc.ImportTSV(context.Background(), strings.NewReader("Name\tHomework\n"), importOpts())
	if !errors.Is(err, ErrImportNoRows) {
		t.Errorf("只有表头期望 ErrImportNoRows，实际: %v", err)
	}
}

func TestImportService_ImportTSV_NoRecognizableColumns(t *testing.T) {
	svc, mocks := setupTestImportService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")

	tsv := "Name\tFavorite Color\tNotes\nAlice\tblue\thi"
	_, err := svc.ImportTSV(context.Background(), strings.NewReader(tsv), importOpts())
	if !errors.Is(err, ErrImportNoCategories) {
		t.Errorf("期望 ErrImportNoCategories，实际: %v", err)
	}
}

func TestImportService_ImportTSV_SemesterNotFound(t *testing.T) {
	svc, _ := setupTestImportService()

	_, err := svc.ImportTSV(context.Background(), strings.NewReader("Name\tHomework\nAlice\t1"), importOpts())
	if !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("期望 ErrSemesterNotFound，实际: %v", err)
	}
}
