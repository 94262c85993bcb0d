package dto

// ── 积分模块 DTO ──

// CreateAwardRequest 创建奖励请求
// student_id 与 house 至少一项；都给时 house 必须与学生一致
type CreateAwardRequest struct {
	SemesterID  string  `json:"semester_id" binding:"required,uuid"`
	StudentID   *string `json:"student_id"  binding:"omitempty,uuid"`
	House       string  `json:"house"       binding:"omitempty,oneof=blob cat owl red_panda bunny"`
	AwardType   string  `json:"award_type"  binding:"required"`
	Points      *int    `json:"points"`     // 省略则用类型默认分值
	Description string  `json:"description" binding:"max=500"`
	AwardedAt   *string `json:"awarded_at"` // RFC 3339，省略则为当前时间
}

// UpdateAwardRequest 更新奖励请求
type UpdateAwardRequest struct {
	Points      *int    `json:"points"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	AwardedAt   *string `json:"awarded_at"`
}

// AwardResponse 奖励响应
type AwardResponse struct {
	ID            string `json:"id"`
	SemesterID    string `json:"semester_id"`
	StudentID     string `json:"student_id,omitempty"`
	StudentName   string `json:"student_name,omitempty"`
	House         string `json:"house"`
	AwardType     string `json:"award_type"`
	AwardLabel    string `json:"award_label"`
	Points        int    `json:"points"`
	Description   string `json:"description,omitempty"`
	AwardedAt     string `json:"awarded_at"`
	AwardedByName string `json:"awarded_by_name,omitempty"`
}

// BulkAwardRequest 批量奖励请求：一行一个学生名，按当前学期匹配
type BulkAwardRequest struct {
	Names       string `json:"names"      binding:"required"`
	AwardType   string `json:"award_type" binding:"required"`
	Points      *int   `json:"points"`
	Description string `json:"description" binding:"max=500"`
}

// BulkAwardResponse 批量奖励结果
type BulkAwardResponse struct {
	Awarded []string `json:"awarded"`
	Errors  []string `json:"errors"`
}

// ── 榜单 DTO ──

// HouseStandingResponse 榜单中的一个学院
type HouseStandingResponse struct {
	House  string `json:"house"`
	Label  string `json:"label"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

// LeaderboardResponse 学院积分榜响应
type LeaderboardResponse struct {
	Semester SemesterResponse        `json:"semester"`
	Frozen   bool                    `json:"frozen"`
	Houses   []HouseStandingResponse `json:"houses"`
}

// CategoryTotalResponse 分类合计行
type CategoryTotalResponse struct {
	AwardType string `json:"award_type"`
	Label     string `json:"label"`
	Points    int    `json:"points"`
}

// HouseDetailResponse 学院详情：分类合计与最近奖励
type HouseDetailResponse struct {
	House        string                  `json:"house"`
	Label        string                  `json:"label"`
	Frozen       bool                    `json:"frozen"`
	TotalPoints  int                     `json:"total_points"`
	ByCategory   []CategoryTotalResponse `json:"by_category"` // 按分值降序，仅出现过的类型
	RecentAwards []AwardResponse         `json:"recent_awards"`
}

// MatrixRowResponse 员工矩阵视图的一行（学生或学院级）
type MatrixRowResponse struct {
	StudentID string         `json:"student_id,omitempty"`
	Name      string         `json:"name"`
	ByType    map[string]int `json:"by_type"`
	Total     int            `json:"total"`
}

// MatrixResponse 员工矩阵视图：某学院内学生 × 分类
type MatrixResponse struct {
	Semester     SemesterResponse    `json:"semester"`
	House        string              `json:"house"`
	Label        string              `json:"label"`
	Frozen       bool                `json:"frozen"`
	AwardTypes   []string            `json:"award_types"` // 仅出现过的类型，按固定顺序
	Rows         []MatrixRowResponse `json:"rows"`
	HouseRow     *MatrixRowResponse  `json:"house_row,omitempty"` // 学院级奖励（无学生）
	ColumnTotals map[string]int      `json:"column_totals"`
	GrandTotal   int                 `json:"grand_total"`
}

// MyAwardsResponse 当前用户的积分概览（按学期）
type MyAwardsResponse struct {
	Semester   SemesterResponse `json:"semester"`
	House      string           `json:"house"`
	HouseLabel string           `json:"house_label"` // 未分学院时为 "Unassigned"
	Total      int              `json:"total"`
	Awards     []AwardResponse  `json:"awards"`
}
