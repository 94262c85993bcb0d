package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
	"github.com/vEnhance/atheweb/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "u-" + user.Username
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct {
	semesters map[string]*model.Semester
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{semesters: make(map[string]*model.Semester)}
}

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	if semester.SemesterID == "" {
		semester.SemesterID = "sem-" + semester.Slug
	}
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetBySlug(_ context.Context, slug string) (*model.Semester, error) {
	for _, s := range m.semesters {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) ListContaining(_ context.Context, date time.Time) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		if s.ContainsDate(date) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSemesterRepo) List(_ context.Context, visibleOnly bool) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		if visibleOnly && !s.Visible {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (m *mockSemesterRepo) Update(_ context.Context, semester *model.Semester) error {
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) Delete(_ context.Context, id string) error {
	delete(m.semesters, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses    map[string]*model.Course
	meetings   map[string]*model.CourseMeeting
	leaders    map[string]map[string]bool // courseID -> userID 集合
	meetingSeq int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{
		courses:  make(map[string]*model.Course),
		meetings: make(map[string]*model.CourseMeeting),
		leaders:  make(map[string]map[string]bool),
	}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = "course-" + course.Name
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListBySemester(_ context.Context, semesterID string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.SemesterID == semesterID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCourseRepo) ListClubsBySemester(_ context.Context, semesterID string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.SemesterID == semesterID && c.IsClub {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCourseRepo) ListByInstructor(_ context.Context, listingID string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.InstructorID != nil && *c.InstructorID == listingID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) AddLeader(_ context.Context, courseID, userID string) error {
	if m.leaders[courseID] == nil {
		m.leaders[courseID] = make(map[string]bool)
	}
	m.leaders[courseID][userID] = true
	return nil
}

func (m *mockCourseRepo) IsLeader(_ context.Context, courseID, userID string) (bool, error) {
	return m.leaders[courseID][userID], nil
}

func (m *mockCourseRepo) ListLedByUser(_ context.Context, userID string) ([]model.Course, error) {
	var result []model.Course
	for courseID, users := range m.leaders {
		if users[userID] {
			if c, ok := m.courses[courseID]; ok {
				result = append(result, *c)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCourseRepo) CreateMeeting(_ context.Context, meeting *model.CourseMeeting) error {
	m.meetingSeq++
	if meeting.MeetingID == "" {
		meeting.MeetingID = fmt.Sprintf("mtg-%d", m.meetingSeq)
	}
	m.meetings[meeting.MeetingID] = meeting
	return nil
}

func (m *mockCourseRepo) GetMeetingByID(_ context.Context, id string) (*model.CourseMeeting, error) {
	if mt, ok := m.meetings[id]; ok {
		if mt.Course == nil {
			mt.Course = m.courses[mt.CourseID]
		}
		return mt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListMeetingsByCourse(_ context.Context, courseID string) ([]model.CourseMeeting, error) {
	var result []model.CourseMeeting
	for _, mt := range m.meetings {
		if mt.CourseID == courseID {
			result = append(result, *mt)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockCourseRepo) ListMeetingsForCourses(_ context.Context, courseIDs []string, from, to time.Time) ([]model.CourseMeeting, error) {
	ids := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		ids[id] = true
	}
	var result []model.CourseMeeting
	for _, mt := range m.meetings {
		if !ids[mt.CourseID] {
			continue
		}
		if mt.StartTime.Before(from) || !mt.StartTime.Before(to) {
			continue
		}
		cp := *mt
		cp.Course = m.courses[mt.CourseID]
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockCourseRepo) ListPendingReminders(_ context.Context, from, to time.Time) ([]model.CourseMeeting, error) {
	var result []model.CourseMeeting
	for _, mt := range m.meetings {
		if mt.ReminderSent {
			continue
		}
		if mt.StartTime.Before(from) || mt.StartTime.After(to) {
			continue
		}
		course := m.courses[mt.CourseID]
		if course == nil || !course.DiscordRemindersEnabled {
			continue
		}
		cp := *mt
		cp.Course = course
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockCourseRepo) UpdateMeeting(_ context.Context, meeting *model.CourseMeeting) error {
	m.meetings[meeting.MeetingID] = meeting
	return nil
}

func (m *mockCourseRepo) MarkReminderSent(_ context.Context, meetingID string) error {
	if mt, ok := m.meetings[meetingID]; ok {
		mt.ReminderSent = true
	}
	return nil
}

func (m *mockCourseRepo) DeleteMeeting(_ context.Context, id string) error {
	delete(m.meetings, id)
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students    map[string]*model.Student
	enrollments map[string][]*model.Course // studentID -> 已选课程
	seq         int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students:    make(map[string]*model.Student),
		enrollments: make(map[string][]*model.Course),
	}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	m.seq++
	if student.StudentID == "" {
		student.StudentID = fmt.Sprintf("stu-%d", m.seq)
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserAndSemester(_ context.Context, userID, semesterID string) (*model.Student, error) {
	for _, s := range m.students {
		if s.UserID != nil && *s.UserID == userID && s.SemesterID == semesterID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByAirtableName(_ context.Context, semesterID, airtableName string) (*model.Student, error) {
	for _, s := range m.students {
		if s.SemesterID == semesterID && s.AirtableName == airtableName {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListBySemester(_ context.Context, semesterID string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if s.SemesterID == semesterID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AirtableName < result[j].AirtableName })
	return result, nil
}

func (m *mockStudentRepo) ListByHouse(_ context.Context, semesterID, house string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if s.SemesterID == semesterID && s.House == house {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AirtableName < result[j].AirtableName })
	return result, nil
}

func (m *mockStudentRepo) ListByUser(_ context.Context, userID string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if s.UserID != nil && *s.UserID == userID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) ListByNameAndSemester(_ context.Context, semesterID, name string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if s.SemesterID != semesterID {
			continue
		}
		if s.AirtableName == name || (s.User != nil && s.User.Username == name) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) ListUnsorted(_ context.Context, semesterID string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if s.SemesterID == semesterID && s.House == "" {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AirtableName < result[j].AirtableName })
	return result, nil
}

func (m *mockStudentRepo) CountByHouse(_ context.Context, semesterID string) ([]repository.HouseCount, error) {
	counts := make(map[string]int)
	for _, s := range m.students {
		if s.SemesterID == semesterID && s.House != "" {
			counts[s.House]++
		}
	}
	var rows []repository.HouseCount
	for house, count := range counts {
		rows = append(rows, repository.HouseCount{House: house, Count: count})
	}
	return rows, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	delete(m.students, id)
	return nil
}

func (m *mockStudentRepo) EnrollCourse(_ context.Context, student *model.Student, course *model.Course) error {
	for _, c := range m.enrollments[student.StudentID] {
		if c.CourseID == course.CourseID {
			return nil
		}
	}
	m.enrollments[student.StudentID] = append(m.enrollments[student.StudentID], course)
	return nil
}

func (m *mockStudentRepo) UnenrollCourse(_ context.Context, student *model.Student, course *model.Course) error {
	list := m.enrollments[student.StudentID]
	for i, c := range list {
		if c.CourseID == course.CourseID {
			m.enrollments[student.StudentID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockStudentRepo) IsEnrolled(_ context.Context, studentID, courseID string) (bool, error) {
	for _, c := range m.enrollments[studentID] {
		if c.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) ListEnrolledCourses(_ context.Context, studentID string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.enrollments[studentID] {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockStudentRepo) ListEnrolledStudents(_ context.Context, courseID string) ([]model.Student, error) {
	var result []model.Student
	for studentID, courses := range m.enrollments {
		for _, c := range courses {
			if c.CourseID == courseID {
				if s, ok := m.students[studentID]; ok {
					result = append(result, *s)
				}
				break
			}
		}
	}
	return result, nil
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	events map[string]*model.GlobalEvent
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.GlobalEvent)}
}

func (m *mockEventRepo) Create(_ context.Context, event *model.GlobalEvent) error {
	if event.EventID == "" {
		event.EventID = "evt-" + event.Title
	}
	m.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.GlobalEvent, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) ListBySemester(_ context.Context, semesterID string) ([]model.GlobalEvent, error) {
	var result []model.GlobalEvent
	for _, e := range m.events {
		if e.SemesterID == semesterID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockEventRepo) ListInRange(_ context.Context, semesterID string, from, to time.Time) ([]model.GlobalEvent, error) {
	var result []model.GlobalEvent
	for _, e := range m.events {
		if e.SemesterID != semesterID {
			continue
		}
		if e.StartTime.Before(from) || !e.StartTime.Before(to) {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockEventRepo) ListUpcoming(_ context.Context, semesterID string, after time.Time, limit int) ([]model.GlobalEvent, error) {
	var result []model.GlobalEvent
	for _, e := range m.events {
		if e.SemesterID == semesterID && !e.StartTime.Before(after) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockEventRepo) Update(_ context.Context, event *model.GlobalEvent) error {
	m.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id string) error {
	delete(m.events, id)
	return nil
}

// ── Mock AwardRepository ──

type mockAwardRepo struct {
	awards map[string]*model.Award
	seq    int
}

func newMockAwardRepo() *mockAwardRepo {
	return &mockAwardRepo{awards: make(map[string]*model.Award)}
}

func (m *mockAwardRepo) Create(_ context.Context, award *model.Award) error {
	m.seq++
	if award.AwardID == "" {
		award.AwardID = fmt.Sprintf("award-%d", m.seq)
	}
	m.awards[award.AwardID] = award
	return nil
}

func (m *mockAwardRepo) CreateBatch(ctx context.Context, awards []model.Award) error {
	for i := range awards {
		cp := awards[i]
		if err := m.Create(ctx, &cp); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockAwardRepo) GetByID(_ context.Context, id string) (*model.Award, error) {
	if a, ok := m.awards[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAwardRepo) ListBySemester(_ context.Context, semesterID string, offset, limit int) ([]model.Award, int64, error) {
	var all []model.Award
	for _, a := range m.awards {
		if a.SemesterID == semesterID {
			all = append(all, *a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AwardedAt.After(all[j].AwardedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockAwardRepo) ListByStudent(_ context.Context, studentID string) ([]model.Award, error) {
	var result []model.Award
	for _, a := range m.awards {
		if a.StudentID != nil && *a.StudentID == studentID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AwardedAt.After(result[j].AwardedAt) })
	return result, nil
}

func (m *mockAwardRepo) ListByHouse(_ context.Context, semesterID, house string, before *time.Time, limit int) ([]model.Award, error) {
	var result []model.Award
	for _, a := range m.awards {
		if a.SemesterID != semesterID || a.House != house {
			continue
		}
		if before != nil && !a.AwardedAt.Before(*before) {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AwardedAt.After(result[j].AwardedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockAwardRepo) Update(_ context.Context, award *model.Award) error {
	m.awards[award.AwardID] = award
	return nil
}

func (m *mockAwardRepo) Delete(_ context.Context, id string) error {
	delete(m.awards, id)
	return nil
}

func (m *mockAwardRepo) HouseTotals(_ context.Context, semesterID string, before *time.Time) ([]repository.HouseTotal, error) {
	totals := make(map[string]int)
	for _, a := range m.awards {
		if a.SemesterID != semesterID {
			continue
		}
		if before != nil && !a.AwardedAt.Before(*before) {
			continue
		}
		totals[a.House] += a.Points
	}
	var rows []repository.HouseTotal
	for house, points := range totals {
		rows = append(rows, repository.HouseTotal{House: house, Points: points})
	}
	return rows, nil
}

func (m *mockAwardRepo) StudentTotals(_ context.Context, semesterID, house string, before *time.Time) ([]repository.StudentTotal, error) {
	type key struct{ studentID string }
	totals := make(map[key]*repository.StudentTotal)
	for _, a := range m.awards {
		if a.SemesterID != semesterID || a.House != house || a.StudentID == nil {
			continue
		}
		if before != nil && !a.AwardedAt.Before(*before) {
			continue
		}
		k := key{*a.StudentID}
		row, ok := totals[k]
		if !ok {
			row = &repository.StudentTotal{StudentID: *a.StudentID, House: a.House}
			if a.Student != nil {
				row.AirtableName = a.Student.AirtableName
			}
			totals[k] = row
		}
		row.Points += a.Points
	}
	var rows []repository.StudentTotal
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Points > rows[j].Points })
	return rows, nil
}

func (m *mockAwardRepo) MatrixTotals(_ context.Context, semesterID string, before *time.Time) ([]repository.MatrixCell, error) {
	type key struct{ house, awardType string }
	totals := make(map[key]int)
	for _, a := range m.awards {
		if a.SemesterID != semesterID {
			continue
		}
		if before != nil && !a.AwardedAt.Before(*before) {
			continue
		}
		totals[key{a.House, a.AwardType}] += a.Points
	}
	var rows []repository.MatrixCell
	for k, points := range totals {
		rows = append(rows, repository.MatrixCell{House: k.house, AwardType: k.awardType, Points: points})
	}
	return rows, nil
}

func (m *mockAwardRepo) StudentMatrixTotals(_ context.Context, semesterID, house string, before *time.Time) ([]repository.StudentTypeCell, error) {
	type key struct{ studentID, awardType string }
	totals := make(map[key]int)
	for _, a := range m.awards {
		if a.SemesterID != semesterID || a.House != house || a.StudentID == nil {
			continue
		}
		if before != nil && !a.AwardedAt.Before(*before) {
			continue
		}
		totals[key{*a.StudentID, a.AwardType}] += a.Points
	}
	var rows []repository.StudentTypeCell
	for k, points := range totals {
		rows = append(rows, repository.StudentTypeCell{StudentID: k.studentID, AwardType: k.awardType, Points: points})
	}
	return rows, nil
}

func (m *mockAwardRepo) HouseLevelTypeTotals(_ context.Context, semesterID, house string, before *time.Time) ([]repository.MatrixCell, error) {
	type key struct{ house, awardType string }
	totals := make(map[key]int)
	for _, a := range m.awards {
		if a.SemesterID != semesterID || a.House != house || a.StudentID != nil {
			continue
		}
		if before != nil && !a.AwardedAt.Before(*before) {
			continue
		}
		totals[key{a.House, a.AwardType}] += a.Points
	}
	var rows []repository.MatrixCell
	for k, points := range totals {
		rows = append(rows, repository.MatrixCell{House: k.house, AwardType: k.awardType, Points: points})
	}
	return rows, nil
}

func (m *mockAwardRepo) SumByStudentAndType(_ context.Context, studentID, awardType string) (int, error) {
	total := 0
	for _, a := range m.awards {
		if a.StudentID != nil && *a.StudentID == studentID && a.AwardType == awardType {
			total += a.Points
		}
	}
	return total, nil
}

// ── Mock StaffRepository ──

type mockStaffRepo struct {
	listings map[string]*model.StaffListing
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{listings: make(map[string]*model.StaffListing)}
}

func (m *mockStaffRepo) Create(_ context.Context, listing *model.StaffListing) error {
	if listing.ListingID == "" {
		listing.ListingID = "staff-" + listing.Slug
	}
	m.listings[listing.ListingID] = listing
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id string) (*model.StaffListing, error) {
	if l, ok := m.listings[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) GetBySlug(_ context.Context, slug string) (*model.StaffListing, error) {
	for _, l := range m.listings {
		if l.Slug == slug {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) GetByUser(_ context.Context, userID string) (*model.StaffListing, error) {
	for _, l := range m.listings {
		if l.UserID != nil && *l.UserID == userID {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) List(_ context.Context) ([]model.StaffListing, error) {
	var result []model.StaffListing
	for _, l := range m.listings {
		result = append(result, *l)
	}
	sortStaffListings(result)
	return result, nil
}

func (m *mockStaffRepo) ListByCategory(_ context.Context, category string) ([]model.StaffListing, error) {
	var result []model.StaffListing
	for _, l := range m.listings {
		if l.Category == category {
			result = append(result, *l)
		}
	}
	sortStaffListings(result)
	return result, nil
}

func (m *mockStaffRepo) Update(_ context.Context, listing *model.StaffListing) error {
	m.listings[listing.ListingID] = listing
	return nil
}

func (m *mockStaffRepo) Delete(_ context.Context, id string) error {
	delete(m.listings, id)
	return nil
}

func sortStaffListings(listings []model.StaffListing) {
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].Ordering != listings[j].Ordering {
			return listings[i].Ordering > listings[j].Ordering
		}
		return listings[i].DisplayName < listings[j].DisplayName
	})
}

// ── Mock InviteRepository ──

type mockInviteRepo struct {
	studentInvites map[string]*model.StudentInvite
	staffInvites   map[string]*model.StaffInvite
	seq            int
}

func newMockInviteRepo() *mockInviteRepo {
	return &mockInviteRepo{
		studentInvites: make(map[string]*model.StudentInvite),
		staffInvites:   make(map[string]*model.StaffInvite),
	}
}

func (m *mockInviteRepo) CreateStudentInvite(_ context.Context, invite *model.StudentInvite) error {
	m.seq++
	if invite.InviteID == "" {
		invite.InviteID = fmt.Sprintf("sinv-%d", m.seq)
	}
	m.studentInvites[invite.InviteID] = invite
	return nil
}

func (m *mockInviteRepo) GetStudentInvite(_ context.Context, token string) (*model.StudentInvite, error) {
	if i, ok := m.studentInvites[token]; ok {
		return i, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteRepo) ListStudentInvites(_ context.Context, semesterID string) ([]model.StudentInvite, error) {
	var result []model.StudentInvite
	for _, i := range m.studentInvites {
		if i.SemesterID == semesterID {
			result = append(result, *i)
		}
	}
	return result, nil
}

func (m *mockInviteRepo) DeleteStudentInvite(_ context.Context, token string) error {
	delete(m.studentInvites, token)
	return nil
}

func (m *mockInviteRepo) CreateStaffInvite(_ context.Context, invite *model.StaffInvite) error {
	m.seq++
	if invite.InviteID == "" {
		invite.InviteID = fmt.Sprintf("tinv-%d", m.seq)
	}
	m.staffInvites[invite.InviteID] = invite
	return nil
}

func (m *mockInviteRepo) GetStaffInvite(_ context.Context, token string) (*model.StaffInvite, error) {
	if i, ok := m.staffInvites[token]; ok {
		return i, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteRepo) ListStaffInvites(_ context.Context) ([]model.StaffInvite, error) {
	var result []model.StaffInvite
	for _, i := range m.staffInvites {
		result = append(result, *i)
	}
	return result, nil
}

func (m *mockInviteRepo) DeleteStaffInvite(_ context.Context, token string) error {
	delete(m.staffInvites, token)
	return nil
}

// ── Mock BlogRepository ──

type mockBlogRepo struct {
	posts  map[string]*model.BlogPost
	photos map[string]*model.BlogPhoto
}

func newMockBlogRepo() *mockBlogRepo {
	return &mockBlogRepo{
		posts:  make(map[string]*model.BlogPost),
		photos: make(map[string]*model.BlogPhoto),
	}
}

func (m *mockBlogRepo) CreatePost(_ context.Context, post *model.BlogPost) error {
	if post.PostID == "" {
		post.PostID = "post-" + post.Slug
	}
	m.posts[post.PostID] = post
	return nil
}

func (m *mockBlogRepo) GetPostByID(_ context.Context, id string) (*model.BlogPost, error) {
	if p, ok := m.posts[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBlogRepo) GetPostBySlug(_ context.Context, slug string) (*model.BlogPost, error) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBlogRepo) ListPublished(_ context.Context, offset, limit int) ([]model.BlogPost, int64, error) {
	var all []model.BlogPost
	for _, p := range m.posts {
		if p.Published {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DisplayDate.After(all[j].DisplayDate) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockBlogRepo) ListByCreator(_ context.Context, creatorID string) ([]model.BlogPost, error) {
	var result []model.BlogPost
	for _, p := range m.posts {
		if p.CreatorID == creatorID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DisplayDate.After(result[j].DisplayDate) })
	return result, nil
}

func (m *mockBlogRepo) CountUnpublishedByCreator(_ context.Context, creatorID string) (int64, error) {
	var count int64
	for _, p := range m.posts {
		if p.CreatorID == creatorID && !p.Published {
			count++
		}
	}
	return count, nil
}

func (m *mockBlogRepo) UpdatePost(_ context.Context, post *model.BlogPost) error {
	m.posts[post.PostID] = post
	return nil
}

func (m *mockBlogRepo) DeletePost(_ context.Context, id string) error {
	delete(m.posts, id)
	return nil
}

func (m *mockBlogRepo) CreatePhoto(_ context.Context, photo *model.BlogPhoto) error {
	if photo.PhotoID == "" {
		photo.PhotoID = "photo-" + photo.Name
	}
	m.photos[photo.PhotoID] = photo
	return nil
}

func (m *mockBlogRepo) GetPhotoByID(_ context.Context, id string) (*model.BlogPhoto, error) {
	if p, ok := m.photos[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBlogRepo) ListPhotos(_ context.Context) ([]model.BlogPhoto, error) {
	var result []model.BlogPhoto
	for _, p := range m.photos {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UploadedAt.After(result[j].UploadedAt) })
	return result, nil
}

func (m *mockBlogRepo) DeletePhoto(_ context.Context, id string) error {
	delete(m.photos, id)
	return nil
}

// ── Mock YearbookRepository ──

type mockYearbookRepo struct {
	entries map[string]*model.YearbookEntry
	seq     int
}

func newMockYearbookRepo() *mockYearbookRepo {
	return &mockYearbookRepo{entries: make(map[string]*model.YearbookEntry)}
}

func (m *mockYearbookRepo) Create(_ context.Context, entry *model.YearbookEntry) error {
	m.seq++
	if entry.EntryID == "" {
		entry.EntryID = fmt.Sprintf("yb-%d", m.seq)
	}
	m.entries[entry.EntryID] = entry
	return nil
}

func (m *mockYearbookRepo) GetByID(_ context.Context, id string) (*model.YearbookEntry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockYearbookRepo) GetByStudent(_ context.Context, studentID string) (*model.YearbookEntry, error) {
	for _, e := range m.entries {
		if e.StudentID == studentID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockYearbookRepo) ListBySemester(_ context.Context, semesterID string) ([]model.YearbookEntry, error) {
	var result []model.YearbookEntry
	for _, e := range m.entries {
		if e.Student != nil && e.Student.SemesterID == semesterID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Student.House != result[j].Student.House {
			return result[i].Student.House < result[j].Student.House
		}
		return result[i].DisplayName < result[j].DisplayName
	})
	return result, nil
}

func (m *mockYearbookRepo) Update(_ context.Context, entry *model.YearbookEntry) error {
	m.entries[entry.EntryID] = entry
	return nil
}

func (m *mockYearbookRepo) Delete(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records   []model.Attendance
	idCounter int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) Create(_ context.Context, record *model.Attendance) error {
	m.idCounter++
	if record.AttendanceID == "" {
		record.AttendanceID = fmt.Sprintf("att-%d", m.idCounter)
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *mockAttendanceRepo) Exists(_ context.Context, userID, clubID string, date time.Time) (bool, error) {
	day := date.Format("2006-01-02")
	for _, r := range m.records {
		if r.UserID == userID && r.ClubID == clubID && r.Date.Format("2006-01-02") == day {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAttendanceRepo) ListByUser(_ context.Context, userID string) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, r := range m.records {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *mockAttendanceRepo) ListByClub(_ context.Context, clubID string) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, r := range m.records {
		if r.ClubID == clubID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *mockAttendanceRepo) ListAll(_ context.Context) ([]model.Attendance, error) {
	result := make([]model.Attendance, len(m.records))
	copy(result, m.records)
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *mockAttendanceRepo) CountByUserForClubs(_ context.Context, clubIDs []string) ([]repository.AttendanceCount, error) {
	ids := make(map[string]bool, len(clubIDs))
	for _, id := range clubIDs {
		ids[id] = true
	}
	counts := make(map[string]int)
	for _, r := range m.records {
		if ids[r.ClubID] {
			counts[r.UserID]++
		}
	}
	var rows []repository.AttendanceCount
	for userID, count := range counts {
		rows = append(rows, repository.AttendanceCount{UserID: userID, Count: count})
	}
	return rows, nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id string) error {
	for i, r := range m.records {
		if r.AttendanceID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock SiteContentRepository ──

type mockSiteContentRepo struct {
	entries map[string]*model.HistoryEntry
	psets   map[string]*model.ProblemSet
}

func newMockSiteContentRepo() *mockSiteContentRepo {
	return &mockSiteContentRepo{
		entries: make(map[string]*model.HistoryEntry),
		psets:   make(map[string]*model.ProblemSet),
	}
}

func (m *mockSiteContentRepo) CreateHistoryEntry(_ context.Context, entry *model.HistoryEntry) error {
	if entry.EntryID == "" {
		entry.EntryID = "hist-" + entry.Slug
	}
	m.entries[entry.EntryID] = entry
	return nil
}

func (m *mockSiteContentRepo) GetHistoryEntryByID(_ context.Context, id string) (*model.HistoryEntry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSiteContentRepo) GetHistoryEntryBySlug(_ context.Context, slug string) (*model.HistoryEntry, error) {
	for _, e := range m.entries {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSiteContentRepo) ListHistoryEntries(_ context.Context, visibleOnly bool) ([]model.HistoryEntry, error) {
	var result []model.HistoryEntry
	for _, e := range m.entries {
		if visibleOnly && !e.Visible {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	return result, nil
}

func (m *mockSiteContentRepo) UpdateHistoryEntry(_ context.Context, entry *model.HistoryEntry) error {
	m.entries[entry.EntryID] = entry
	return nil
}

func (m *mockSiteContentRepo) DeleteHistoryEntry(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

func (m *mockSiteContentRepo) CreateProblemSet(_ context.Context, pset *model.ProblemSet) error {
	if pset.PSetID == "" {
		pset.PSetID = "pset-" + pset.Name
	}
	m.psets[pset.PSetID] = pset
	return nil
}

func (m *mockSiteContentRepo) GetProblemSetByID(_ context.Context, id string) (*model.ProblemSet, error) {
	if p, ok := m.psets[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSiteContentRepo) ListProblemSets(_ context.Context) ([]model.ProblemSet, error) {
	var result []model.ProblemSet
	for _, p := range m.psets {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Deadline.After(result[j].Deadline) })
	return result, nil
}

func (m *mockSiteContentRepo) ListProblemSetsByStatus(_ context.Context, status string) ([]model.ProblemSet, error) {
	var result []model.ProblemSet
	for _, p := range m.psets {
		if p.Status == status {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Deadline.After(result[j].Deadline) })
	return result, nil
}

func (m *mockSiteContentRepo) UpdateProblemSet(_ context.Context, pset *model.ProblemSet) error {
	m.psets[pset.PSetID] = pset
	return nil
}

func (m *mockSiteContentRepo) DeleteProblemSet(_ context.Context, id string) error {
	delete(m.psets, id)
	return nil
}
