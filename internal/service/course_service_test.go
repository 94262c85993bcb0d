package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
	pkgerrors "github.com/vEnhance/atheweb/pkg/errors"
)

// ── 测试辅助 ──

type courseTestMocks struct {
	semester *mockSemesterRepo
	course   *mockCourseRepo
	student  *mockStudentRepo
	user     *mockUserRepo
	staff    *mockStaffRepo
}

func setupTestCourseService() (CourseService, *courseTestMocks) {
	mocks := &courseTestMocks{
		semester: newMockSemesterRepo(),
		course:   newMockCourseRepo(),
		student:  newMockStudentRepo(),
		user:     newMockUserRepo(),
		staff:    newMockStaffRepo(),
	}
	repo := &repository.Repository{
		User:        mocks.user,
		Semester:    mocks.semester,
		Course:      mocks.course,
		Student:     mocks.student,
		Event:       newMockEventRepo(),
		Award:       newMockAwardRepo(),
		Staff:       mocks.staff,
		Invite:      newMockInviteRepo(),
		Blog:        newMockBlogRepo(),
		Yearbook:    newMockYearbookRepo(),
		Attendance:  newMockAttendanceRepo(),
		SiteContent: newMockSiteContentRepo(),
	}
	logger := zap.NewNop()
	svc := NewCourseService(repo, logger)
	return svc, mocks
}

// activeSemester 当前进行中的学期
func activeSemester(id string) *model.Semester {
	now := time.Now()
	return &model.Semester{
		SemesterID:                id,
		Name:                      "Active Semester",
		Slug:                      "active",
		StartDate:                 now.AddDate(0, 0, -30),
		EndDate:                   now.AddDate(0, 0, 30),
		Visible:                   true,
		HousePointsClassThreshold: 14,
	}
}

// endedSemester 已结束的学期
func endedSemester(id string) *model.Semester {
	now := time.Now()
	return &model.Semester{
		SemesterID:                id,
		Name:                      "Ended Semester",
		Slug:                      "ended",
		StartDate:                 now.AddDate(-1, 0, 0),
		EndDate:                   now.AddDate(0, 0, -30),
		Visible:                   true,
		HousePointsClassThreshold: 14,
	}
}

func memberCaller(userID string) *Caller { return &Caller{UserID: userID, Role: model.RoleMember} }
func staffCaller(userID string) *Caller  { return &Caller{UserID: userID, Role: model.RoleStaff} }

// ── Catalog 测试 ──

func TestCourseService_Catalog_SplitsClassesAndClubs(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Algebra", IsClub: false}
	mocks.course.courses["c-2"] = &model.Course{CourseID: "c-2", SemesterID: "sem-1", Name: "Chess Club", IsClub: true}

	result, err := svc.Catalog(context.Background(), "active", memberCaller("u-1"))
	if err != nil {
		t.Fatalf("Catalog 应成功: %v", err)
	}
	if len(result.Classes) != 1 || result.Classes[0].Name != "Algebra" {
		t.Errorf("期望1个班级 Algebra，实际=%v", result.Classes)
	}
	if len(result.Clubs) != 1 || result.Clubs[0].Name != "Chess Club" {
		t.Errorf("期望1个社团 Chess Club，实际=%v", result.Clubs)
	}
}

func TestCourseService_Catalog_DefaultsToLatestVisible(t *testing.T) {
	svc, mocks := setupTestCourseService()
	old := endedSemester("sem-0")
	cur := activeSemester("sem-1")
	mocks.semester.semesters["sem-0"] = old
	mocks.semester.semesters["sem-1"] = cur

	result, err := svc.Catalog(context.Background(), "", memberCaller("u-1"))
	if err != nil {
		t.Fatalf("Catalog 应成功: %v", err)
	}
	if result.Semester.ID != "sem-1" {
		t.Errorf("期望默认学期=sem-1，实际=%s", result.Semester.ID)
	}
}

func TestCourseService_Catalog_HiddenSemesterDeniedForMember(t *testing.T) {
	svc, mocks := setupTestCourseService()
	hidden := activeSemester("sem-1")
	hidden.Slug = "secret"
	hidden.Visible = false
	mocks.semester.semesters["sem-1"] = hidden

	_, err := svc.Catalog(context.Background(), "secret", memberCaller("u-1"))
	if !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("期望 ErrSemesterNotFound，实际: %v", err)
	}

	// 员工可以访问隐藏学期
	if _, err := svc.Catalog(context.Background(), "secret", staffCaller("u-2")); err != nil {
		t.Errorf("员工访问隐藏学期应成功: %v", err)
	}
}

// ── GetDetail 测试 ──

func TestCourseService_GetDetail_ClassRequiresEnrollment(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	class := &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Algebra", IsClub: false, Semester: sem}
	mocks.course.courses["c-1"] = class

	userID := "u-1"
	student := &model.Student{StudentID: "stu-1", UserID: &userID, SemesterID: "sem-1", AirtableName: "Alice"}
	mocks.student.students["stu-1"] = student

	// 未选课的学生不可见
	_, err := svc.GetDetail(context.Background(), "c-1", memberCaller("u-1"))
	if !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("期望 ErrPermissionDenied，实际: %v", err)
	}

	// 选课后可见
	if err := mocks.student.EnrollCourse(context.Background(), student, class); err != nil {
		t.Fatalf("选课失败: %v", err)
	}
	result, err := svc.GetDetail(context.Background(), "c-1", memberCaller("u-1"))
	if err != nil {
		t.Fatalf("GetDetail 应成功: %v", err)
	}
	if !result.IsEnrolled {
		t.Error("IsEnrolled 应为 true")
	}
}

func TestCourseService_GetDetail_ClubOpenToSemesterStudents(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Chess Club", IsClub: true, Semester: sem}

	userID := "u-1"
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", UserID: &userID, SemesterID: "sem-1", AirtableName: "Alice"}

	result, err := svc.GetDetail(context.Background(), "c-1", memberCaller("u-1"))
	if err != nil {
		t.Fatalf("本学期学生访问社团应成功: %v", err)
	}
	if !result.CanJoinDrop {
		t.Error("活跃学期的社团 CanJoinDrop 应为 true")
	}

	// 不在本学期名册的用户不可见
	_, err = svc.GetDetail(context.Background(), "c-1", memberCaller("u-other"))
	if !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("期望 ErrPermissionDenied，实际: %v", err)
	}
}

func TestCourseService_GetDetail_StaffAlwaysAllowed(t *testing.T) {
	svc, mocks := setupTestCourseService()
	hidden := activeSemester("sem-1")
	hidden.Visible = false
	mocks.semester.semesters["sem-1"] = hidden
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Algebra", Semester: hidden}

	if _, err := svc.GetDetail(context.Background(), "c-1", staffCaller("u-staff")); err != nil {
		t.Errorf("员工访问任何课程应成功: %v", err)
	}
}

func TestCourseService_GetDetail_NotFound(t *testing.T) {
	svc, _ := setupTestCourseService()

	_, err := svc.GetDetail(context.Background(), "nonexistent", staffCaller("u-1"))
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

// ── Create 测试 ──

func TestCourseService_Create_Success(t *testing.T) {
	svc, mocks := setupTestCourseService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")

	req := &dto.CreateCourseRequest{
		SemesterID: "sem-1",
		Name:       "Number Theory",
		IsClub:     false,
	}

	result, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "Number Theory" {
		t.Errorf("期望Name=Number Theory，实际=%s", result.Name)
	}
}

func TestCourseService_Create_SemesterNotFound(t *testing.T) {
	svc, _ := setupTestCourseService()

	req := &dto.CreateCourseRequest{SemesterID: "nonexistent", Name: "Number Theory"}
	_, err := svc.Create(context.Background(), req)
	if !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("期望 ErrSemesterNotFound，实际: %v", err)
	}
}

func TestCourseService_Create_SyncsClaimedInstructorAsLeader(t *testing.T) {
	svc, mocks := setupTestCourseService()
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	instructorUser := "u-instructor"
	mocks.staff.listings["staff-1"] = &model.StaffListing{
		ListingID:   "staff-1",
		UserID:      &instructorUser,
		DisplayName: "Dr. Euler",
		Slug:        "euler",
		Category:    model.StaffCategoryInstructor,
	}

	listingID := "staff-1"
	req := &dto.CreateCourseRequest{SemesterID: "sem-1", Name: "Graph Theory", InstructorID: &listingID}
	result, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	isLeader, _ := mocks.course.IsLeader(context.Background(), result.ID, instructorUser)
	if !isLeader {
		t.Error("已认领讲师应被自动加为领队")
	}
}

// ── JoinClub 测试 ──

func TestCourseService_JoinClub_Success(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Chess Club", IsClub: true, Semester: sem}

	userID := "u-1"
	mocks.user.users["u-1"] = &model.User{UserID: "u-1", Username: "alice", FirstName: "Alice"}
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", UserID: &userID, SemesterID: "sem-1", AirtableName: "Alice"}

	if err := svc.JoinClub(context.Background(), "c-1", memberCaller("u-1")); err != nil {
		t.Fatalf("JoinClub 应成功: %v", err)
	}

	enrolled, _ := mocks.student.IsEnrolled(context.Background(), "stu-1", "c-1")
	if !enrolled {
		t.Error("学生应已加入社团")
	}
}

func TestCourseService_JoinClub_CreatesStudentRow(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Chess Club", IsClub: true, Semester: sem}
	mocks.user.users["u-1"] = &model.User{UserID: "u-1", Username: "alice", FirstName: "Alice", LastName: "Liddell"}

	if err := svc.JoinClub(context.Background(), "c-1", memberCaller("u-1")); err != nil {
		t.Fatalf("JoinClub 应成功: %v", err)
	}

	student, err := mocks.student.GetByUserAndSemester(context.Background(), "u-1", "sem-1")
	if err != nil {
		t.Fatalf("应已自动建学生行: %v", err)
	}
	if student.AirtableName != "Alice Liddell" {
		t.Errorf("期望登记名=Alice Liddell，实际=%s", student.AirtableName)
	}
	enrolled, _ := mocks.student.IsEnrolled(context.Background(), student.StudentID, "c-1")
	if !enrolled {
		t.Error("学生应已加入社团")
	}
}

func TestCourseService_JoinClub_NotAClub(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Algebra", IsClub: false, Semester: sem}

	err := svc.JoinClub(context.Background(), "c-1", memberCaller("u-1"))
	if !errors.Is(err, ErrNotAClub) {
		t.Errorf("期望 ErrNotAClub，实际: %v", err)
	}
}

func TestCourseService_JoinClub_SemesterEnded(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := endedSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Chess Club", IsClub: true, Semester: sem}

	err := svc.JoinClub(context.Background(), "c-1", memberCaller("u-1"))
	if !errors.Is(err, ErrSemesterNotActive) {
		t.Errorf("期望 ErrSemesterNotActive，实际: %v", err)
	}
}

// ── DropClub 测试 ──

func TestCourseService_DropClub_Success(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	club := &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Chess Club", IsClub: true, Semester: sem}
	mocks.course.courses["c-1"] = club

	userID := "u-1"
	student := &model.Student{StudentID: "stu-1", UserID: &userID, SemesterID: "sem-1", AirtableName: "Alice"}
	mocks.student.students["stu-1"] = student
	_ = mocks.student.EnrollCourse(context.Background(), student, club)

	if err := svc.DropClub(context.Background(), "c-1", memberCaller("u-1")); err != nil {
		t.Fatalf("DropClub 应成功: %v", err)
	}

	enrolled, _ := mocks.student.IsEnrolled(context.Background(), "stu-1", "c-1")
	if enrolled {
		t.Error("学生应已退出社团")
	}
}

func TestCourseService_DropClub_NotEnrolled(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Chess Club", IsClub: true, Semester: sem}

	userID := "u-1"
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", UserID: &userID, SemesterID: "sem-1", AirtableName: "Alice"}

	err := svc.DropClub(context.Background(), "c-1", memberCaller("u-1"))
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("期望 ErrNotEnrolled，实际: %v", err)
	}
}

func TestCourseService_DropClub_NoStudentRow(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Chess Club", IsClub: true, Semester: sem}

	err := svc.DropClub(context.Background(), "c-1", memberCaller("u-1"))
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("期望 ErrNotEnrolled，实际: %v", err)
	}
}

// ── MyClubs 测试 ──

func TestCourseService_MyClubs_SplitsEnrolledAndAvailable(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	joined := &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Chess Club", IsClub: true}
	open := &model.Course{CourseID: "c-2", SemesterID: "sem-1", Name: "Origami Club", IsClub: true}
	mocks.course.courses["c-1"] = joined
	mocks.course.courses["c-2"] = open

	userID := "u-1"
	student := &model.Student{StudentID: "stu-1", UserID: &userID, SemesterID: "sem-1", AirtableName: "Alice", Semester: sem}
	mocks.student.students["stu-1"] = student
	_ = mocks.student.EnrollCourse(context.Background(), student, joined)

	result, err := svc.MyClubs(context.Background(), memberCaller("u-1"))
	if err != nil {
		t.Fatalf("MyClubs 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("期望1个学期条目，实际=%d", len(result))
	}
	if len(result[0].Enrolled) != 1 || result[0].Enrolled[0].Name != "Chess Club" {
		t.Errorf("期望已加入 Chess Club，实际=%v", result[0].Enrolled)
	}
	if len(result[0].Available) != 1 || result[0].Available[0].Name != "Origami Club" {
		t.Errorf("期望可加入 Origami Club，实际=%v", result[0].Available)
	}
}

func TestCourseService_MyClubs_LedClubCountsAsEnrolled(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem
	club := &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Chess Club", IsClub: true}
	mocks.course.courses["c-1"] = club
	_ = mocks.course.AddLeader(context.Background(), "c-1", "u-1")

	userID := "u-1"
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", UserID: &userID, SemesterID: "sem-1", AirtableName: "Alice", Semester: sem}

	result, err := svc.MyClubs(context.Background(), memberCaller("u-1"))
	if err != nil {
		t.Fatalf("MyClubs 应成功: %v", err)
	}
	if len(result) != 1 || len(result[0].Enrolled) != 1 {
		t.Fatalf("领队的社团应列入已加入，实际=%v", result)
	}
}

func TestCourseService_MyClubs_SkipsEndedSemesters(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := endedSemester("sem-1")
	mocks.semester.semesters["sem-1"] = sem

	userID := "u-1"
	mocks.student.students["stu-1"] = &model.Student{StudentID: "stu-1", UserID: &userID, SemesterID: "sem-1", AirtableName: "Alice", Semester: sem}

	result, err := svc.MyClubs(context.Background(), memberCaller("u-1"))
	if err != nil {
		t.Fatalf("MyClubs 应成功: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("已结束学期不应出现在 MyClubs，实际=%d", len(result))
	}
}

// ── PastClubs 测试 ──

func TestCourseService_PastClubs_OnlyEndedWithClubs(t *testing.T) {
	svc, mocks := setupTestCourseService()
	ended := endedSemester("sem-1")
	current := activeSemester("sem-2")
	mocks.semester.semesters["sem-1"] = ended
	mocks.semester.semesters["sem-2"] = current

	oldClub := &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Chess Club", IsClub: true}
	curClub := &model.Course{CourseID: "c-2", SemesterID: "sem-2", Name: "Origami Club", IsClub: true}
	mocks.course.courses["c-1"] = oldClub
	mocks.course.courses["c-2"] = curClub

	userID := "u-1"
	oldStudent := &model.Student{StudentID: "stu-1", UserID: &userID, SemesterID: "sem-1", AirtableName: "Alice", Semester: ended}
	curStudent := &model.Student{StudentID: "stu-2", UserID: &userID, SemesterID: "sem-2", AirtableName: "Alice", Semester: current}
	mocks.student.students["stu-1"] = oldStudent
	mocks.student.students["stu-2"] = curStudent
	_ = mocks.student.EnrollCourse(context.Background(), oldStudent, oldClub)
	_ = mocks.student.EnrollCourse(context.Background(), curStudent, curClub)

	result, err := svc.PastClubs(context.Background(), memberCaller("u-1"))
	if err != nil {
		t.Fatalf("PastClubs 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("期望1个已结束学期条目，实际=%d", len(result))
	}
	if result[0].Semester.ID != "sem-1" {
		t.Errorf("期望学期=sem-1，实际=%s", result[0].Semester.ID)
	}
}

// ── 场次测试 ──

func TestCourseService_CreateMeeting_Success(t *testing.T) {
	svc, mocks := setupTestCourseService()
	sem := activeSemester("sem-1")
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Algebra", Semester: sem}

	req := &dto.CreateMeetingRequest{Title: "Week 3", StartTime: "2026-02-10T19:00:00Z"}
	result, err := svc.CreateMeeting(context.Background(), "c-1", req)
	if err != nil {
		t.Fatalf("CreateMeeting 应成功: %v", err)
	}
	if result.CourseName != "Algebra" {
		t.Errorf("期望CourseName=Algebra，实际=%s", result.CourseName)
	}
}

func TestCourseService_CreateMeeting_BadStartTime(t *testing.T) {
	svc, mocks := setupTestCourseService()
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Algebra", Semester: activeSemester("sem-1")}

	req := &dto.CreateMeetingRequest{StartTime: "tomorrow at 7"}
	_, err := svc.CreateMeeting(context.Background(), "c-1", req)
	if !errors.Is(err, ErrInvalidStartTime) {
		t.Errorf("期望 ErrInvalidStartTime，实际: %v", err)
	}
}

func TestCourseService_UpdateMeeting_RescheduleResetsReminder(t *testing.T) {
	svc, mocks := setupTestCourseService()
	mocks.course.courses["c-1"] = &model.Course{CourseID: "c-1", SemesterID: "sem-1", Name: "Algebra"}
	mocks.course.meetings["mtg-1"] = &model.CourseMeeting{
		MeetingID:    "mtg-1",
		CourseID:     "c-1",
		Title:        "Week 3",
		StartTime:    time.Date(2026, 2, 10, 19, 0, 0, 0, time.UTC),
		ReminderSent: true,
	}

	newStart := "2026-02-11T19:00:00Z"
	_, err := svc.UpdateMeeting(context.Background(), "mtg-1", &dto.UpdateMeetingRequest{StartTime: &newStart})
	if err != nil {
		t.Fatalf("UpdateMeeting 应成功: %v", err)
	}
	if mocks.course.meetings["mtg-1"].ReminderSent {
		t.Error("改期后 ReminderSent 应复位")
	}
}

func TestCourseService_DeleteMeeting_NotFound(t *testing.T) {
	svc, _ := setupTestCourseService()

	err := svc.DeleteMeeting(context.Background(), "nonexistent")
	if !errors.Is(err, ErrMeetingNotFound) {
		t.Errorf("期望 ErrMeetingNotFound，实际: %v", err)
	}
}
