package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User        UserRepository
	Semester    SemesterRepository
	Course      CourseRepository
	Student     StudentRepository
	Event       EventRepository
	Award       AwardRepository
	Staff       StaffRepository
	Invite      InviteRepository
	Blog        BlogRepository
	Yearbook    YearbookRepository
	Attendance  AttendanceRepository
	SiteContent SiteContentRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		User:        NewUserRepo(db),
		Semester:    NewSemesterRepo(db),
		Course:      NewCourseRepo(db),
		Student:     NewStudentRepo(db),
		Event:       NewEventRepo(db),
		Award:       NewAwardRepo(db),
		Staff:       NewStaffRepo(db),
		Invite:      NewInviteRepo(db),
		Blog:        NewBlogRepo(db),
		Yearbook:    NewYearbookRepo(db),
		Attendance:  NewAttendanceRepo(db),
		SiteContent: NewSiteContentRepo(db),
	}
}

// BeginTx 开启事务，返回事务连接。
// 未接数据库时（单元测试直接注入 mock 字段）返回 nil 事务，调用侧需判空
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 聚合；nil 事务时原样返回。
// 多表写操作（注册认领、批量积分等）通过它保证原子性
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
