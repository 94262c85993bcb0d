package model

// ── 员工目录分类枚举 ──

const (
	StaffCategoryBoard      = "board"
	StaffCategoryInstructor = "instructor"
	StaffCategoryTA         = "ta"
	StaffCategoryPast       = "xstaff"
)

// StaffCategoryLabels 目录分类显示名
var StaffCategoryLabels = map[string]string{
	StaffCategoryBoard:      "Board",
	StaffCategoryInstructor: "Current Instructors",
	StaffCategoryTA:         "TAs",
	StaffCategoryPast:       "Past Staff",
}

// StaffCategoryOrder 目录分组展示顺序
var StaffCategoryOrder = []string{
	StaffCategoryBoard,
	StaffCategoryInstructor,
	StaffCategoryTA,
	StaffCategoryPast,
}

// IsValidStaffCategory 是否为合法分类值
func IsValidStaffCategory(category string) bool {
	_, ok := StaffCategoryLabels[category]
	return ok
}

// StaffListing 员工目录表 — 对应 staff_listings
// user 为空表示该条目尚未被认领，员工邀请注册时关联
type StaffListing struct {
	ListingID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"listing_id"`
	UserID      *string `gorm:"type:uuid;uniqueIndex"                          json:"user_id,omitempty"`
	DisplayName string  `gorm:"type:varchar(100);not null"                     json:"display_name"`
	Slug        string  `gorm:"type:varchar(100);not null;uniqueIndex"         json:"slug"`
	Role        string  `gorm:"type:varchar(100);not null;default:''"          json:"role"` // 职位头衔，如 "Instructor"
	Category    string  `gorm:"type:varchar(20);not null"                      json:"category"` // board | instructor | ta | xstaff
	Biography   string  `gorm:"type:text;not null;default:''"                  json:"biography"`
	PhotoURL    string  `gorm:"type:varchar(500);not null;default:''"          json:"photo_url"`
	Website     string  `gorm:"type:varchar(500);not null;default:''"          json:"website"`
	Ordering    int     `gorm:"not null;default:0"                             json:"ordering"` // 数值越大越靠前
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (StaffListing) TableName() string { return "staff_listings" }
