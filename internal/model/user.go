package model

// ── 角色枚举 ──

const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleMember = "member"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"         json:"username"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	FirstName    string `gorm:"type:varchar(150);not null;default:''"          json:"first_name"`
	LastName     string `gorm:"type:varchar(150);not null;default:''"          json:"last_name"`
	Role         string `gorm:"type:varchar(20);not null;default:'member'"     json:"role"` // admin | staff | member
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsStaff 员工及以上（staff 或 admin）
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

// FullName 展示用全名，为空时回退到用户名
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}
