package model

// ── 学院枚举 ──

const (
	HouseBlob     = "blob"
	HouseCat      = "cat"
	HouseOwl      = "owl"
	HouseRedPanda = "red_panda"
	HouseBunny    = "bunny"
)

// AllHouses 五个固定学院，展示顺序与注册表一致
var AllHouses = []string{HouseBlob, HouseCat, HouseOwl, HouseRedPanda, HouseBunny}

// HouseLabels 学院显示名
var HouseLabels = map[string]string{
	HouseBlob:     "Blob",
	HouseCat:      "Cat",
	HouseOwl:      "Owl",
	HouseRedPanda: "Red Panda",
	HouseBunny:    "Bunny",
}

// IsValidHouse 是否为合法学院值
func IsValidHouse(house string) bool {
	_, ok := HouseLabels[house]
	return ok
}

// Student 学生表 — 对应 students
// 名册导入时 user 为空（未认领），学生通过邀请注册后关联到账号；
// airtable_name 是名册里的登记名，用于认领与分院匹配
type Student struct {
	StudentID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID       *string `gorm:"type:uuid;index"                                json:"user_id,omitempty"`
	SemesterID   string  `gorm:"type:uuid;not null;index"                       json:"semester_id"`
	AirtableName string  `gorm:"type:varchar(200);not null;default:''"          json:"airtable_name"`
	House        string  `gorm:"type:varchar(20);not null;default:''"           json:"house"` // blob | cat | owl | red_panda | bunny | ''
	BaseModel

	// 关联
	User     *User     `gorm:"foreignKey:UserID;references:UserID"         json:"user,omitempty"`
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
	Courses  []Course  `gorm:"many2many:student_courses;foreignKey:StudentID;joinForeignKey:StudentID;references:CourseID;joinReferences:CourseID" json:"courses,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
