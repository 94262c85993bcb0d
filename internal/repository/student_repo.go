package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vEnhance/atheweb/internal/model"
)

// HouseCount 学院人数统计行
type HouseCount struct {
	House string
	Count int
}

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByUserAndSemester(ctx context.Context, userID, semesterID string) (*model.Student, error)
	GetByAirtableName(ctx context.Context, semesterID, airtableName string) (*model.Student, error)
	ListBySemester(ctx context.Context, semesterID string) ([]model.Student, error)
	ListByHouse(ctx context.Context, semesterID, house string) ([]model.Student, error)
	ListByUser(ctx context.Context, userID string) ([]model.Student, error)
	ListByNameAndSemester(ctx context.Context, semesterID, name string) ([]model.Student, error)
	ListUnsorted(ctx context.Context, semesterID string) ([]model.Student, error)
	CountByHouse(ctx context.Context, semesterID string) ([]HouseCount, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string) error

	// ── 选课关联 ──
	EnrollCourse(ctx context.Context, student *model.Student, course *model.Course) error
	UnenrollCourse(ctx context.Context, student *model.Student, course *model.Course) error
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
	ListEnrolledCourses(ctx context.Context, studentID string) ([]model.Course, error)
	ListEnrolledStudents(ctx context.Context, courseID string) ([]model.Student, error)
}

// studentRepo StudentRepository 的 GORM 实现
type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Semester").
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByUserAndSemester(ctx context.Context, userID, semesterID string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Where("user_id = ? AND semester_id = ?", userID, semesterID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByAirtableName(ctx context.Context, semesterID, airtableName string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("semester_id = ? AND airtable_name = ?", semesterID, airtableName).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) ListBySemester(ctx context.Context, semesterID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("semester_id = ?", semesterID).
		Order("airtable_name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) ListByHouse(ctx context.Context, semesterID, house string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("semester_id = ? AND house = ?", semesterID, house).
		Order("airtable_name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) ListByUser(ctx context.Context, userID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Where("user_id = ?", userID).
		Find(&students).Error
	return students, err
}

// ListByNameAndSemester 按名册名或用户名匹配学生（批量加分时解析姓名用）
func (r *studentRepo) ListByNameAndSemester(ctx context.Context, semesterID, name string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("LEFT JOIN users ON users.user_id = students.user_id").
		Where("students.semester_id = ?", semesterID).
		Where("students.airtable_name = ? OR users.username = ?", name, name).
		Find(&students).Error
	return students, err
}

func (r *studentRepo) ListUnsorted(ctx context.Context, semesterID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("semester_id = ? AND house = ''", semesterID).
		Order("airtable_name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) CountByHouse(ctx context.Context, semesterID string) ([]HouseCount, error) {
	var rows []HouseCount
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Select("house, COUNT(*) AS count").
		Where("semester_id = ? AND house <> ''", semesterID).
		Group("house").
		Scan(&rows).Error
	return rows, err
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", id).
		Delete(&model.Student{}).Error
}

// ── 选课关联 ──

func (r *studentRepo) EnrollCourse(ctx context.Context, student *model.Student, course *model.Course) error {
	return r.db.WithContext(ctx).
		Model(student).
		Association("Courses").
		Append(course)
}

func (r *studentRepo) UnenrollCourse(ctx context.Context, student *model.Student, course *model.Course) error {
	return r.db.WithContext(ctx).
		Model(student).
		Association("Courses").
		Delete(course)
}

func (r *studentRepo) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("student_courses").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *studentRepo) ListEnrolledCourses(ctx context.Context, studentID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Joins("JOIN student_courses sc ON sc.course_id = courses.course_id").
		Where("sc.student_id = ?", studentID).
		Order("courses.name ASC").
		Find(&courses).Error
	return courses, err
}

func (r *studentRepo) ListEnrolledStudents(ctx context.Context, courseID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN student_courses sc ON sc.student_id = students.student_id").
		Where("sc.course_id = ?", courseID).
		Find(&students).Error
	return students, err
}
