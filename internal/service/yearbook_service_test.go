package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
	pkgerrors "github.com/vEnhance/atheweb/pkg/errors"
)

// ── 测试辅助 ──

type yearbookTestMocks struct {
	semester *mockSemesterRepo
	student  *mockStudentRepo
	yearbook *mockYearbookRepo
}

func setupTestYearbookService() (YearbookService, *yearbookTestMocks) {
	mocks := &yearbookTestMocks{
		semester: newMockSemesterRepo(),
		student:  newMockStudentRepo(),
		yearbook: newMockYearbookRepo(),
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
		Yearbook:    mocks.yearbook,
		Attendance:  newMockAttendanceRepo(),
		SiteContent: newMockSiteContentRepo(),
	}
	logger := zap.NewNop()
	svc := NewYearbookService(repo, logger)
	return svc, mocks
}

// seedYearbookStudent 建一条已认领的学生记录并返回
func seedYearbookStudent(mocks *yearbookTestMocks, studentID, userID string, sem *model.Semester, house string) *model.Student {
	student := &model.Student{
		StudentID:    studentID,
		UserID:       &userID,
		SemesterID:   sem.SemesterID,
		AirtableName: "Student " + studentID,
		House:        house,
		Semester:     sem,
	}
	mocks.student.students[studentID] = student
	return student
}

// ── BySemester 测试 ──

func TestYearbookService_BySemester_MemberNeedsStudentRow(t *testing.T) {
	svc, mocks := setupTestYearbookService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem

	_, err := svc.BySemester(context.Background(), memberCaller("u-outsider"), "active")
	if !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("外人查看纪念册期望 ErrPermissionDenied，实际: %v", err)
	}

	student := seedYearbookStudent(mocks, "stu-1", "u-1", sem, model.HouseOwl)
	mocks.yearbook.entries["yb-1"] = &model.YearbookEntry{
		EntryID: "yb-1", StudentID: "stu-1", DisplayName: "Alice", Student: student,
	}

	result, err := svc.BySemester(context.Background(), memberCaller("u-1"), "active")
	if err != nil {
		t.Fatalf("本学期学生查看应成功: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].DisplayName != "Alice" {
		t.Errorf("期望1条条目，实际=%v", result.Entries)
	}
	if result.Entries[0].House != model.HouseOwl {
		t.Errorf("条目应带学院，实际=%s", result.Entries[0].House)
	}
	if !result.CanEdit {
		t.Error("学期进行中本学期学生应可编辑")
	}
}

func TestYearbookService_BySemester_StaffAnySemester(t *testing.T) {
	svc, mocks := setupTestYearbookService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")

	result, err := svc.BySemester(context.Background(), staffCaller("u-staff"), "active")
	if err != nil {
		t.Fatalf("员工查看任意学期应成功: %v", err)
	}
	// 员工没有学生记录，不可编辑
	if result.CanEdit {
		t.Error("无学生记录的员工 CanEdit 应为 false")
	}
}

func TestYearbookService_BySemester_EndedSemesterReadOnly(t *testing.T) {
	svc, mocks := setupTestYearbookService()
	sem := endedSemester("sem-old")
	mocks.semester.semesters["sem-old"] = sem
	seedYearbookStudent(mocks, "stu-1", "u-1", sem, model.HouseCat)

	result, err := svc.BySemester(context.Background(), memberCaller("u-1"), "ended")
	if err != nil {
		t.Fatalf("BySemester 应成功: %v", err)
	}
	if result.CanEdit {
		t.Error("学期结束后 CanEdit 应为 false")
	}
}

func TestYearbookService_BySemester_DefaultPicksLatestEnrolled(t *testing.T) {
	svc, mocks := setupTestYearbookService()
	older := endedSemester("sem-old")
	newer := activeSemester("sem-new")
	mocks.semester.semesters["sem-old"] = older
	mocks.semester.semesters["sem-new"] = newer
	seedYearbookStudent(mocks, "stu-1", "u-1", older, model.HouseCat)
	seedYearbookStudent(mocks, "stu-2", "u-1", newer, model.HouseOwl)

	result, err := svc.BySemester(context.Background(), memberCaller("u-1"), "")
	if err != nil {
		t.Fatalf("BySemester 应成功: %v", err)
	}
	if result.Semester.Slug != "active" {
		t.Errorf("默认应取结束日期最晚的学期，实际=%s", result.Semester.Slug)
	}
}

func TestYearbookService_BySemester_UnknownSlug(t *testing.T) {
	svc, _ := setupTestYearbookService()

	_, err := svc.BySemester(context.Background(), staffCaller("u-staff"), "nonexistent")
	if !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("期望 ErrSemesterNotFound，实际: %v", err)
	}
}

// ── MyEntry 测试 ──

func TestYearbookService_MyEntry_Success(t *testing.T) {
	svc, mocks := setupTestYearbookService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	seedYearbookStudent(mocks, "stu-1", "u-1", sem, model.HouseBunny)
	mocks.yearbook.entries["yb-1"] = &model.YearbookEntry{
		EntryID: "yb-1", StudentID: "stu-1", DisplayName: "Alice", Bio: "Hi!",
	}

	result, err := svc.MyEntry(context.Background(), memberCaller("u-1"), "active")
	if err != nil {
		t.Fatalf("MyEntry 应成功: %v", err)
	}
	if result.DisplayName != "Alice" || result.House != model.HouseBunny {
		t.Errorf("期望Alice/bunny，实际=%+v", result)
	}
}

func TestYearbookService_MyEntry_NoEntry(t *testing.T) {
	svc, mocks := setupTestYearbookService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	seedYearbookStudent(mocks, "stu-1", "u-1", sem, "")

	_, err := svc.MyEntry(context.Background(), memberCaller("u-1"), "active")
	if !errors.Is(err, ErrYearbookEntryNotFound) {
		t.Errorf("期望 ErrYearbookEntryNotFound，实际: %v", err)
	}
}

func TestYearbookService_MyEntry_NoStudentRow(t *testing.T) {
	svc, mocks := setupTestYearbookService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")

	_, err := svc.MyEntry(context.Background(), memberCaller("u-1"), "active")
	if !errors.Is(err, ErrYearbookEntryNotFound) {
		t.Errorf("期望 ErrYearbookEntryNotFound，实际: %v", err)
	}
}

// ── Upsert 测试 ──

func TestYearbookService_Upsert_CreateThenUpdate(t *testing.T) {
	svc, mocks := setupTestYearbookService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	seedYearbookStudent(mocks, "stu-1", "u-1", sem, model.HouseOwl)

	created, err := svc.Upsert(context.Background(), memberCaller("u-1"), "active", &dto.UpsertYearbookEntryRequest{
		DisplayName:     "Alice",
		Bio:             "First version.",
		DiscordUsername: "alice#1234",
	})
	if err != nil {
		t.Fatalf("Upsert(创建) 应成功: %v", err)
	}
	if created.House != model.HouseOwl {
		t.Errorf("期望条目带学院，实际=%s", created.House)
	}

	updated, err := svc.Upsert(context.Background(), memberCaller("u-1"), "active", &dto.UpsertYearbookEntryRequest{
		DisplayName: "Alice L.",
		Bio:         "Second version.",
	})
	if err != nil {
		t.Fatalf("Upsert(更新) 应成功: %v", err)
	}
	if updated.ID != created.ID {
		t.Error("再次提交应更新同一条目")
	}
	if updated.Bio != "Second version." {
		t.Errorf("期望简介更新，实际=%s", updated.Bio)
	}
	if len(mocks.yearbook.entries) != 1 {
		t.Errorf("条目数应保持1，实际=%d", len(mocks.yearbook.entries))
	}
	// 未填写的社交字段被清空
	if updated.DiscordUsername != "" {
		t.Errorf("未提交的字段应清空，实际=%s", updated.DiscordUsername)
	}
}

func TestYearbookService_Upsert_SemesterEnded(t *testing.T) {
	svc, mocks := setupTestYearbookService()
	sem := endedSemester("sem-old")
	mocks.semester.semesters["sem-old"] = sem
	seedYearbookStudent(mocks, "stu-1", "u-1", sem, model.HouseOwl)

	_, err := svc.Upsert(context.Background(), memberCaller("u-1"), "ended", &dto.UpsertYearbookEntryRequest{
		DisplayName: "Too Late",
	})
	if !errors.Is(err, ErrSemesterEnded) {
		t.Errorf("期望 ErrSemesterEnded，实际: %v", err)
	}
}

func TestYearbookService_Upsert_NonStudentDenied(t *testing.T) {
	svc, mocks := setupTestYearbookService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")

	_, err := svc.Upsert(context.Background(), memberCaller("u-outsider"), "active", &dto.UpsertYearbookEntryRequest{
		DisplayName: "Intruder",
	})
	if !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("期望 ErrPermissionDenied，实际: %v", err)
	}
}
