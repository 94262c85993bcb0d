package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/config"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
	"github.com/vEnhance/atheweb/pkg/discord"
)

// ── 测试辅助 ──

// webhookRecorder 记录测试 webhook 服务器收到的消息
type webhookRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *webhookRecorder) add(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, content)
}

func (r *webhookRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// newWebhookServer 起一个假 Discord webhook 端点；/fail 路径返回 500
func newWebhookServer(t *testing.T) (*httptest.Server, *webhookRecorder) {
	t.Helper()
	rec := &webhookRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/fail") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("webhook 请求体解析失败: %v", err)
		}
		rec.add(payload.Content)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)
	return server, rec
}

type notifyTestMocks struct {
	semester *mockSemesterRepo
	course   *mockCourseRepo
	award    *mockAwardRepo
}

func setupTestNotifyService(standingsWebhookURL string) (NotifyService, *notifyTestMocks) {
	mocks := &notifyTestMocks{
		semester: newMockSemesterRepo(),
		course:   newMockCourseRepo(),
		award:    newMockAwardRepo(),
	}
	repo := &repository.Repository{
		User:        newMockUserRepo(),
		Semester:    mocks.semester,
		Course:      mocks.course,
		Student:     newMockStudentRepo(),
		Event:       newMockEventRepo(),
		Award:       mocks.award,
		Staff:       newMockStaffRepo(),
		Invite:      newMockInviteRepo(),
		Blog:        newMockBlogRepo(),
		Yearbook:    newMockYearbookRepo(),
		Attendance:  newMockAttendanceRepo(),
		SiteContent: newMockSiteContentRepo(),
	}
	cfg := &config.Config{
		Server:  config.ServerConfig{BaseURL: "https://athemath.org"},
		Discord: config.DiscordConfig{StandingsWebhookURL: standingsWebhookURL},
	}
	logger := zap.NewNop()
	svc := NewNotifyService(cfg, repo, discord.NewClient(), logger)
	return svc, mocks
}

// ── SendMeetingReminders 测试 ──

func TestNotifyService_SendMeetingReminders_SendsAndMarks(t *testing.T) {
	server, rec := newWebhookServer(t)
	svc, mocks := setupTestNotifyService("")

	mocks.course.courses["course-1"] = &model.Course{
		CourseID:                "course-1",
		Name:                    "Geometry",
		DiscordWebhook:          server.URL + "/hook",
		DiscordRoleID:           "42",
		DiscordRemindersEnabled: true,
		ZoomMeetingLink:         "https://zoom.us/j/123",
	}
	mocks.course.meetings["mtg-1"] = &model.CourseMeeting{
		MeetingID: "mtg-1",
		CourseID:  "course-1",
		Title:     "Inversion",
		StartTime: time.Now().Add(2 * time.Hour),
	}

	result, err := svc.SendMeetingReminders(context.Background())
	if err != nil {
		t.Fatalf("SendMeetingReminders 应成功: %v", err)
	}
	if result.Sent != 1 || result.Skipped != 0 || result.Failed != 0 {
		t.Errorf("期望 sent=1，实际=%+v", result)
	}
	if !mocks.course.meetings["mtg-1"].ReminderSent {
		t.Error("发送成功后应标记 reminder_sent")
	}

	messages := rec.all()
	if len(messages) != 1 {
		t.Fatalf("期望1条 webhook 消息，实际=%d", len(messages))
	}
	content := messages[0]
	for _, want := range []string{"<@&42>", "the class **Geometry** is meeting soon!", "Topic: Inversion", "Zoom link: https://zoom.us/j/123"} {
		if !strings.Contains(content, want) {
			t.Errorf("消息应包含 %q，实际=%s", want, content)
		}
	}
}

func TestNotifyService_SendMeetingReminders_SkipsWithoutWebhook(t *testing.T) {
	svc, mocks := setupTestNotifyService("")

	mocks.course.courses["course-1"] = &model.Course{
		CourseID:                "course-1",
		Name:                    "Algebra",
		DiscordRemindersEnabled: true,
	}
	mocks.course.meetings["mtg-1"] = &model.CourseMeeting{
		MeetingID: "mtg-1",
		CourseID:  "course-1",
		StartTime: time.Now().Add(2 * time.Hour),
	}

	result, err := svc.SendMeetingReminders(context.Background())
	if err != nil {
		t.Fatalf("SendMeetingReminders 应成功: %v", err)
	}
	if result.Skipped != 1 || result.Sent != 0 {
		t.Errorf("期望 skipped=1，实际=%+v", result)
	}
	if len(result.Details) != 1 || !strings.Contains(result.Details[0], "no webhook configured") {
		t.Errorf("期望跳过明细，实际=%v", result.Details)
	}
}

func TestNotifyService_SendMeetingReminders_FailureKeepsPending(t *testing.T) {
	server, rec := newWebhookServer(t)
	svc, mocks := setupTestNotifyService("")

	mocks.course.courses["course-1"] = &model.Course{
		CourseID:                "course-1",
		Name:                    "Geometry",
		DiscordWebhook:          server.URL + "/fail",
		DiscordRemindersEnabled: true,
	}
	mocks.course.meetings["mtg-1"] = &model.CourseMeeting{
		MeetingID: "mtg-1",
		CourseID:  "course-1",
		StartTime: time.Now().Add(2 * time.Hour),
	}

	result, err := svc.SendMeetingReminders(context.Background())
	if err != nil {
		t.Fatalf("单条失败不应中断整轮: %v", err)
	}
	if result.Failed != 1 || result.Sent != 0 {
		t.Errorf("期望 failed=1，实际=%+v", result)
	}
	if mocks.course.meetings["mtg-1"].ReminderSent {
		t.Error("发送失败的场次应保持待提醒，等下一轮重试")
	}
	if len(rec.all()) != 0 {
		t.Error("失败端点不应记录消息")
	}
}

func TestNotifyService_SendMeetingReminders_WindowAndFlags(t *testing.T) {
	server, _ := newWebhookServer(t)
	svc, mocks := setupTestNotifyService("")

	enabled := &model.Course{
		CourseID: "course-1", Name: "Geometry",
		DiscordWebhook: server.URL + "/hook", DiscordRemindersEnabled: true,
	}
	disabled := &model.Course{
		CourseID: "course-2", Name: "Algebra",
		DiscordWebhook: server.URL + "/hook", DiscordRemindersEnabled: false,
	}
	mocks.course.courses["course-1"] = enabled
	mocks.course.courses["course-2"] = disabled

	now := time.Now()
	// 太远、已过去、已提醒、课程关闭提醒 —— 都不该发送
	mocks.course.meetings["mtg-far"] = &model.CourseMeeting{
		MeetingID: "mtg-far", CourseID: "course-1", StartTime: now.Add(48 * time.Hour),
	}
	mocks.course.meetings["mtg-past"] = &model.CourseMeeting{
		MeetingID: "mtg-past", CourseID: "course-1", StartTime: now.Add(-2 * time.Hour),
	}
	mocks.course.meetings["mtg-sent"] = &model.CourseMeeting{
		MeetingID: "mtg-sent", CourseID: "course-1", StartTime: now.Add(2 * time.Hour), ReminderSent: true,
	}
	mocks.course.meetings["mtg-off"] = &model.CourseMeeting{
		MeetingID: "mtg-off", CourseID: "course-2", StartTime: now.Add(2 * time.Hour),
	}

	result, err := svc.SendMeetingReminders(context.Background())
	if err != nil {
		t.Fatalf("SendMeetingReminders 应成功: %v", err)
	}
	if result.Sent != 0 || result.Skipped != 0 || result.Failed != 0 {
		t.Errorf("窗口外/已提醒/关闭提醒的场次不应处理，实际=%+v", result)
	}
}

// ── PostStandings 测试 ──

func TestNotifyService_PostStandings_Success(t *testing.T) {
	server, rec := newWebhookServer(t)
	svc, mocks := setupTestNotifyService(server.URL + "/standings")

	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")
	now := time.Now()
	mocks.award.awards["award-1"] = &model.Award{
		AwardID: "award-1", SemesterID: "sem-1", House: model.HouseOwl,
		AwardType: model.AwardPOTD, Points: 15, AwardedAt: now,
	}
	mocks.award.awards["award-2"] = &model.Award{
		AwardID: "award-2", SemesterID: "sem-1", House: model.HouseCat,
		AwardType: model.AwardHomework, Points: 5, AwardedAt: now,
	}

	result, err := svc.PostStandings(context.Background())
	if err != nil {
		t.Fatalf("PostStandings 应成功: %v", err)
	}
	if !result.Posted || result.Semester != "Active Semester" {
		t.Errorf("期望 posted=true，实际=%+v", result)
	}

	messages := rec.all()
	if len(messages) != 1 {
		t.Fatalf("期望1条播报，实际=%d", len(messages))
	}
	lines := strings.Split(messages[0], "\n")
	if !strings.Contains(lines[0], "Current standings!") {
		t.Errorf("首行应是标题，实际=%s", lines[0])
	}
	// 第一名是 owl（15分），五个学院都要上榜
	if !strings.Contains(lines[1], "owlheart") || !strings.Contains(lines[1], "15 points") {
		t.Errorf("第一名应为 owl 15分，实际=%s", lines[1])
	}
	if !strings.Contains(lines[2], "catlove") || !strings.Contains(lines[2], "5 points") {
		t.Errorf("第二名应为 cat 5分，实际=%s", lines[2])
	}
	rankLines := 0
	for _, line := range lines {
		if strings.Contains(line, " points") && !strings.Contains(line, "house-points") {
			rankLines++
		}
	}
	if rankLines != len(model.AllHouses) {
		t.Errorf("期望%d行榜单，实际=%d", len(model.AllHouses), rankLines)
	}
	if !strings.Contains(messages[0], "https://athemath.org/house-points/") {
		t.Errorf("播报应带榜单链接，实际=%s", messages[0])
	}
}

func TestNotifyService_PostStandings_FrozenSkips(t *testing.T) {
	server, rec := newWebhookServer(t)
	svc, mocks := setupTestNotifyService(server.URL + "/standings")

	sem := activeSemester("sem-1")
	freeze := time.Now().Add(-24 * time.Hour)
	sem.HousePointsFreezeDate = &freeze
	mocks.semester.semesters["sem-1"] = sem

	result, err := svc.PostStandings(context.Background())
	if err != nil {
		t.Fatalf("冻结时 PostStandings 应静默跳过: %v", err)
	}
	if result.Posted {
		t.Error("冻结后不应播报")
	}
	if len(rec.all()) != 0 {
		t.Error("冻结后不应发送任何 webhook 消息")
	}
}

func TestNotifyService_PostStandings_NoWebhookConfigured(t *testing.T) {
	svc, mocks := setupTestNotifyService("")
	mocks.semester.semesters["sem-1"] = activeSemester("sem-1")

	_, err := svc.PostStandings(context.Background())
	if !errors.Is(err, ErrNoStandingsWebhook) {
		t.Errorf("期望 ErrNoStandingsWebhook，实际: %v", err)
	}
}

func TestNotifyService_PostStandings_NoActiveSemester(t *testing.T) {
	server, _ := newWebhookServer(t)
	svc, _ := setupTestNotifyService(server.URL + "/standings")

	_, err := svc.PostStandings(context.Background())
	if !errors.Is(err, ErrNoActiveSemester) {
		t.Errorf("期望 ErrNoActiveSemester，实际: %v", err)
	}
}
