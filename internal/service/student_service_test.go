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

type studentTestMocks struct {
	semester *mockSemesterRepo
	student  *mockStudentRepo
}

func setupTestStudentService() (StudentService, *studentTestMocks) {
	mocks := &studentTestMocks{
		semester: newMockSemesterRepo(),
		student:  newMockStudentRepo(),
	}
	repo := &repository.Repository{
		User:        newMockUserRepo(),
		Semester:    mocks.semester,
		Course:      newMockCourseRepo(),
		Student:     mocks.student,
		Event:       newMockEventRepo(),
		Award:       newMockAwardRepo(),
		Staff:       newMockStaffRepo(),
		Invite:      newMockInviteRepo(),
		Blog:        newMockBlogRepo(),
		Yearbook:    newMockYearbookRepo(),
		Attendance:  newMockAttendanceRepo(),
		SiteContent: newMockSiteContentRepo(),
	}
	logger := zap.NewNop()
	svc := NewStudentService(repo, logger)
	return svc, mocks
}

// ── List / Get 测试 ──

func TestStudentService_List_SortedByName(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Zed"}
	mocks.student.students["stu-2"] = &model.Student{StudentID: "stu-2", SemesterID: "sem-1", AirtableName: "Alice"}
	mocks.student.students["stu-3"] = &model.Student{StudentID: "stu-3", SemesterID: "other", AirtableName: "Bob"}

	result, err := svc.List(context.Background(), "sem-1")
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("期望2个学生，实际=%d", len(result))
	}
	if result[0].AirtableName != "Alice" || result[1].AirtableName != "Zed" {
		t.Errorf("期望按名册名排序，实际=%s, %s", result[0].AirtableName, result[1].AirtableName)
	}
}

func TestStudentService_List_SemesterNotFound(t *testing.T) {
	svc, _ := setupTestStudentService()

	_, err := svc.List(context.Background(), "nonexistent")
	if !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("期望 ErrSemesterNotFound，实际: %v", err)
	}
}

func TestStudentService_Get_ClaimedFlag(t *testing.T) {
	svc, mocks := setupTestStudentService()
	userID := "u-1"
	mocks.student.students["stu-1"] = &model.Student{
		StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Alice",
		UserID: &userID, User: &model.User{UserID: userID, Username: "alice"},
		House: model.HouseOwl,
	}
	mocks.student.students["stu-2"] = &model.Student{StudentID: "stu-2", SemesterID: "sem-1", AirtableName: "Bob"}

	claimed, err := svc.Get(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if !claimed.Claimed || claimed.Username != "alice" {
		t.Errorf("期望已认领且用户名为alice，实际=%+v", claimed)
	}
	if claimed.HouseLabel != "Owl" {
		t.Errorf("期望HouseLabel=Owl，实际=%s", claimed.HouseLabel)
	}

	unclaimed, err := svc.Get(context.Background(), "stu-2")
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if unclaimed.Claimed {
		t.Error("未关联账号的名册行不应标记为已认领")
	}
}

// ── Create 测试 ──

func TestStudentService_Create_Success(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")

	result, err := svc.Create(context.Background(), &dto.CreateStudentRequest{
		SemesterID:   "sem-1",
		AirtableName: "Alice Liddell",
		House:        model.HouseCat,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.ID == "" {
		t.Error("应分配学生ID")
	}
	if result.Claimed {
		t.Error("新建名册行不应关联账号")
	}
}

func TestStudentService_Create_DuplicateName(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Alice"}

	_, err := svc.Create(context.Background(), &dto.CreateStudentRequest{
		SemesterID: "sem-1", AirtableName: "Alice",
	})
	if !errors.Is(err, ErrAirtableNameTaken) {
		t.Errorf("期望 ErrAirtableNameTaken，实际: %v", err)
	}
}

func TestStudentService_Create_SameNameDifferentSemester(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", SemesterID: "other", AirtableName: "Alice"}

	// 名册名唯一性按学期隔离
	_, err := svc.Create(context.Background(), &dto.CreateStudentRequest{
		SemesterID: "sem-1", AirtableName: "Alice",
	})
	if err != nil {
		t.Errorf("不同学期允许同名，实际: %v", err)
	}
}

// ── Update / Delete 测试 ──

func TestStudentService_Update_RenameAndClearHouse(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.student.students["stu-1"] = &model.Student{
		StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Alice", House: model.HouseOwl,
	}

	newName := "Alice L."
	result, err := svc.Update(context.Background(), "stu-1", &dto.UpdateStudentRequest{AirtableName: &newName})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.AirtableName != "Alice L." {
		t.Errorf("期望改名生效，实际=%s", result.AirtableName)
	}

	result, err = svc.Update(context.Background(), "stu-1", &dto.UpdateStudentRequest{ClearHouse: true})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.House != "" {
		t.Errorf("期望清除学院，实际=%s", result.House)
	}
}

func TestStudentService_Update_RenameConflict(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Alice"}
	mocks.student.students["stu-2"] = &model.Student{StudentID: "stu-2", SemesterID: "sem-1", AirtableName: "Bob"}

	conflict := "Bob"
	_, err := svc.Update(context.Background(), "stu-1", &dto.UpdateStudentRequest{AirtableName: &conflict})
	if !errors.Is(err, ErrAirtableNameTaken) {
		t.Errorf("期望 ErrAirtableNameTaken，实际: %v", err)
	}
}

func TestStudentService_Delete_Success(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Alice"}

	if err := svc.Delete(context.Background(), "stu-1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := mocks.student.students["stu-1"]; ok {
		t.Error("删除后名册行不应存在")
	}

	if err := svc.Delete(context.Background(), "stu-1"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
}

// ── SortingHat 测试 ──

func TestStudentService_SortingHat_AssignsByList(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Alice"}
	mocks.student.students["stu-2"] = &model.Student{StudentID: "stu-2", SemesterID: "sem-1", AirtableName: "Bob"}
	mocks.student.students["stu-3"] = &model.Student{StudentID: "stu-3", SemesterID: "sem-1", AirtableName: "Carol"}

	result, err := svc.SortingHat(context.Background(), &dto.SortingHatRequest{
		SemesterID: "sem-1",
		Owl:        "Alice\nBob",
		Cat:        "Carol",
	})
	if err != nil {
		t.Fatalf("SortingHat 应成功: %v", err)
	}
	if len(result.Assigned) != 3 {
		t.Fatalf("期望3人分院，实际=%v", result.Assigned)
	}
	if mocks.student.students["stu-1"].House != model.HouseOwl {
		t.Errorf("期望Alice进owl，实际=%s", mocks.student.students["stu-1"].House)
	}
	if mocks.student.students["stu-3"].House != model.HouseCat {
		t.Errorf("期望Carol进cat，实际=%s", mocks.student.students["stu-3"].House)
	}
	if !strings.Contains(result.Assigned[0], "Alice → Owl") {
		t.Errorf("期望分院说明含箭头记号，实际=%s", result.Assigned[0])
	}
}

func TestStudentService_SortingHat_ReportsUnknownNames(t *testing.T) {
	svc, mocks := setupTestStudentService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Alice"}

	result, err := svc.SortingHat(context.Background(), &dto.SortingHatRequest{
		SemesterID: "sem-1",
		Owl:        "Alice\nNobody",
	})
	if err != nil {
		t.Fatalf("SortingHat 应成功: %v", err)
	}
	if len(result.Assigned) != 1 || len(result.NotFound) != 1 {
		t.Fatalf("期望1成功1未找到，实际=%+v", result)
	}
	if !strings.Contains(result.NotFound[0], "Nobody (not found in "+sem.Name+")") {
		t.Errorf("未找到信息应含学期名，实际=%s", result.NotFound[0])
	}
}

func TestStudentService_SortingHat_ReassignsExistingHouse(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	mocks.student.students["stu-1"] = &model.Student{
		StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Alice", House: model.HouseBlob,
	}

	_, err := svc.SortingHat(context.Background(), &dto.SortingHatRequest{
		SemesterID: "sem-1",
		Bunny:      "Alice",
	})
	if err != nil {
		t.Fatalf("SortingHat 应成功: %v", err)
	}
	if mocks.student.students["stu-1"].House != model.HouseBunny {
		t.Errorf("重新分院应覆盖原学院，实际=%s", mocks.student.students["stu-1"].House)
	}
}

// ── AutoSort 测试 ──

func TestStudentService_AutoSort_AssignsAllUnsorted(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	for _, name := range []string{"Alice", "Bob", "Carol", "Dave", "Eve"} {
		id := "stu-" + name
		mocks.student.students[id] = &model.Student{StudentID: id, SemesterID: "sem-1", AirtableName: name}
	}

	result, err := svc.AutoSort(context.Background(), "sem-1")
	if err != nil {
		t.Fatalf("AutoSort 应成功: %v", err)
	}
	if result.Total != 5 {
		t.Errorf("期望分配5人，实际=%d", result.Total)
	}
	assigned := 0
	for house, names := range result.Assigned {
		if !model.IsValidHouse(house) {
			t.Errorf("分配到非法学院: %s", house)
		}
		assigned += len(names)
	}
	if assigned != 5 {
		t.Errorf("分配明细合计应为5，实际=%d", assigned)
	}
	for id, s := range mocks.student.students {
		if s.House == "" {
			t.Errorf("学生 %s 分院后不应为空", id)
		}
	}
}

func TestStudentService_AutoSort_SkipsSortedStudents(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	mocks.student.students["stu-1"] = &model.Student{
		StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Alice", House: model.HouseOwl,
	}
	mocks.student.students["stu-2"] = &model.Student{StudentID: "stu-2", SemesterID: "sem-1", AirtableName: "Bob"}

	result, err := svc.AutoSort(context.Background(), "sem-1")
	if err != nil {
		t.Fatalf("AutoSort 应成功: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("只应分配未分院的1人，实际=%d", result.Total)
	}
	if mocks.student.students["stu-1"].House != model.HouseOwl {
		t.Error("已分院学生不应被改动")
	}
}

func TestStudentService_AutoSort_NoUnsorted(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	mocks.student.students["stu-1"] = &model.Student{
		StudentID: "stu-1", SemesterID: "sem-1", AirtableName: "Alice", House: model.HouseOwl,
	}

	_, err := svc.AutoSort(context.Background(), "sem-1")
	if !errors.Is(err, ErrNoUnsortedStudents) {
		t.Errorf("期望 ErrNoUnsortedStudents，实际: %v", err)
	}
}
