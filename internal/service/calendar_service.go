package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/jinzhu/now"
	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
)

// CalendarService 日历业务接口
type CalendarService interface {
	// MonthView 月视图；year/month 为 0 时取当前月
	MonthView(ctx context.Context, caller *Caller, year, month int) (*dto.CalendarMonthResponse, error)
	Upcoming(ctx context.Context, caller *Caller, limit int) (*dto.UpcomingResponse, error)
	// ICSFeed 生成调用者的 iCalendar 订阅内容
	ICSFeed(ctx context.Context, caller *Caller) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger}
}

// calendarScope 调用者在一个学期内的日历范围：
// 全局活动 + 已选班级的场次 + 该学期全部社团的场次
type calendarScope struct {
	semester  *model.Semester
	courseIDs []string
}

func (s *calendarService) scopes(ctx context.Context, caller *Caller) ([]calendarScope, error) {
	students, err := s.repo.Student.ListByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("列出学生行失败", zap.Error(err))
		return nil, err
	}

	result := make([]calendarScope, 0, len(students))
	for i := range students {
		student := &students[i]
		if student.Semester == nil {
			continue
		}

		seen := make(map[string]bool)
		var courseIDs []string

		clubs, err := s.repo.Course.ListClubsBySemester(ctx, student.SemesterID)
		if err != nil {
			s.logger.Error("列出学期社团失败", zap.Error(err))
			return nil, err
		}
		for _, c := range clubs {
			if !seen[c.CourseID] {
				seen[c.CourseID] = true
				courseIDs = append(courseIDs, c.CourseID)
			}
		}

		enrolled, err := s.repo.Student.ListEnrolledCourses(ctx, student.StudentID)
		if err != nil {
			s.logger.Error("列出已选课程失败", zap.Error(err))
			return nil, err
		}
		for _, c := range enrolled {
			if !seen[c.CourseID] {
				seen[c.CourseID] = true
				courseIDs = append(courseIDs, c.CourseID)
			}
		}

		result = append(result, calendarScope{semester: student.Semester, courseIDs: courseIDs})
	}
	return result, nil
}

// ────────────────────── MonthView ──────────────────────

func (s *calendarService) MonthView(ctx context.Context, caller *Caller, year, month int) (*dto.CalendarMonthResponse, error) {
	if year == 0 || month == 0 {
		today := time.Now()
		year, month = today.Year(), int(today.Month())
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	monthStart := now.New(first).BeginningOfMonth()
	monthEnd := now.New(first).EndOfMonth()

	scopes, err := s.scopes(ctx, caller)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]dto.CalendarItemResponse)
	for _, scope := range scopes {
		events, err := s.repo.Event.ListInRange(ctx, scope.semester.SemesterID, monthStart, monthEnd.Add(time.Nanosecond))
		if err != nil {
			s.logger.Error("列出活动失败", zap.Error(err))
			return nil, err
		}
		for i := range events {
			item := eventToCalendarItem(&events[i])
			day := events[i].StartTime.Format("2006-01-02")
			byDay[day] = append(byDay[day], item)
		}

		meetings, err := s.repo.Course.ListMeetingsForCourses(ctx, scope.courseIDs, monthStart, monthEnd.Add(time.Nanosecond))
		if err != nil {
			s.logger.Error("列出场次失败", zap.Error(err))
			return nil, err
		}
		for i := range meetings {
			item := meetingToCalendarItem(&meetings[i])
			day := meetings[i].StartTime.Format("2006-01-02")
			byDay[day] = append(byDay[day], item)
		}
	}

	resp := &dto.CalendarMonthResponse{
		Year:  year,
		Month: month,
		Days:  make([]dto.CalendarDayResponse, 0, 31),
	}
	for d := monthStart; !d.After(monthEnd); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		items := byDay[key]
		sort.Slice(items, func(i, j int) bool { return items[i].StartTime < items[j].StartTime })
		if items == nil {
			items = make([]dto.CalendarItemResponse, 0)
		}
		resp.Days = append(resp.Days, dto.CalendarDayResponse{Date: key, Items: items})
	}
	return resp, nil
}

// ────────────────────── Upcoming ──────────────────────

// Upcoming 未来日程：已选/领队课程的场次 + 所在学期的全局活动
func (s *calendarService) Upcoming(ctx context.Context, caller *Caller, limit int) (*dto.UpcomingResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	nowT := time.Now()
	horizon := nowT.AddDate(1, 0, 0)

	var items []dto.CalendarItemResponse

	scopes, err := s.scopes(ctx, caller)
	if err != nil {
		return nil, err
	}
	seenCourse := make(map[string]bool)
	for _, scope := range scopes {
		events, err := s.repo.Event.ListUpcoming(ctx, scope.semester.SemesterID, nowT, 0)
		if err != nil {
			s.logger.Error("列出活动失败", zap.Error(err))
			return nil, err
		}
		for i := range events {
			items = append(items, eventToCalendarItem(&events[i]))
		}

		meetings, err := s.repo.Course.ListMeetingsForCourses(ctx, scope.courseIDs, nowT, horizon)
		if err != nil {
			s.logger.Error("列出场次失败", zap.Error(err))
			return nil, err
		}
		for i := range meetings {
			items = append(items, meetingToCalendarItem(&meetings[i]))
		}
		for _, id := range scope.courseIDs {
			seenCourse[id] = true
		}
	}

	// 领队课程不一定有学生行，单独补上
	ledCourses, err := s.repo.Course.ListLedByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("列出领队课程失败", zap.Error(err))
		return nil, err
	}
	var ledIDs []string
	for _, c := range ledCourses {
		if !seenCourse[c.CourseID] {
			ledIDs = append(ledIDs, c.CourseID)
		}
	}
	if len(ledIDs) > 0 {
		meetings, err := s.repo.Course.ListMeetingsForCourses(ctx, ledIDs, nowT, horizon)
		if err != nil {
			s.logger.Error("列出场次失败", zap.Error(err))
			return nil, err
		}
		for i := range meetings {
			items = append(items, meetingToCalendarItem(&meetings[i]))
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].StartTime < items[j].StartTime })
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = make([]dto.CalendarItemResponse, 0)
	}
	return &dto.UpcomingResponse{Items: items}, nil
}

// ────────────────────── ICSFeed ──────────────────────

func (s *calendarService) ICSFeed(ctx context.Context, caller *Caller) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Athemath//atheweb//EN")
	cal.SetName("Athemath")

	scopes, err := s.scopes(ctx, caller)
	if err != nil {
		return "", err
	}

	for _, scope := range scopes {
		semStart := scope.semester.StartDate
		semEnd := scope.semester.EndDate.AddDate(0, 0, 1)

		events, err := s.repo.Event.ListBySemester(ctx, scope.semester.SemesterID)
		if err != nil {
			s.logger.Error("列出活动失败", zap.Error(err))
			return "", err
		}
		for i := range events {
			ev := cal.AddEvent(fmt.Sprintf("event-%s@athemath.org", events[i].EventID))
			ev.SetDtStampTime(events[i].CreatedAt)
			ev.SetStartAt(events[i].StartTime)
			ev.SetEndAt(events[i].StartTime.Add(time.Hour))
			ev.SetSummary(events[i].Title)
			if events[i].Description != "" {
				ev.SetDescription(events[i].Description)
			}
			if events[i].Link != "" {
				ev.SetURL(events[i].Link)
			}
		}

		meetings, err := s.repo.Course.ListMeetingsForCourses(ctx, scope.courseIDs, semStart, semEnd)
		if err != nil {
			s.logger.Error("列出场次失败", zap.Error(err))
			return "", err
		}
		for i := range meetings {
			m := &meetings[i]
			ev := cal.AddEvent(fmt.Sprintf("meeting-%s@athemath.org", m.MeetingID))
			ev.SetDtStampTime(m.CreatedAt)
			ev.SetStartAt(m.StartTime)
			ev.SetEndAt(m.StartTime.Add(time.Hour))
			summary := m.Title
			if m.Course != nil {
				if summary == "" {
					summary = m.Course.Name
				} else {
					summary = m.Course.Name + ": " + summary
				}
			}
			ev.SetSummary(summary)
		}
	}

	return cal.Serialize(), nil
}

// ── 内部辅助方法 ──

func eventToCalendarItem(event *model.GlobalEvent) dto.CalendarItemResponse {
	return dto.CalendarItemResponse{
		Kind:      "event",
		ID:        event.EventID,
		Title:     event.Title,
		StartTime: event.StartTime.Format(time.RFC3339),
		Link:      event.Link,
	}
}

func meetingToCalendarItem(meeting *model.CourseMeeting) dto.CalendarItemResponse {
	item := dto.CalendarItemResponse{
		Kind:      "meeting",
		ID:        meeting.MeetingID,
		Title:     meeting.Title,
		StartTime: meeting.StartTime.Format(time.RFC3339),
		CourseID:  meeting.CourseID,
	}
	if meeting.Course != nil {
		item.CourseName = meeting.Course.Name
		if item.Title == "" {
			item.Title = meeting.Course.Name
		}
	}
	return item
}
