package dto

// ── 积分表格导入 DTO ──

// ImportOptions 积分导入选项
type ImportOptions struct {
	SemesterSlug string
	Description  string
	DryRun       bool
}

// ImportTypeSummary 按奖励类型汇总的导入小结
type ImportTypeSummary struct {
	AwardType string `json:"award_type"`
	Count     int    `json:"count"`
	Points    int    `json:"points"`
}

// ImportResult 积分导入结果
type ImportResult struct {
	Semester    string              `json:"semester"`
	DryRun      bool                `json:"dry_run"`
	Processed   int                 `json:"processed"`    // 成功匹配到学生的数据行
	SkippedRows int                 `json:"skipped_rows"` // 非学生行
	Created     int                 `json:"created"`      // 创建（dry-run 时为将创建）的奖励数
	Warnings    []string            `json:"warnings"`
	Summary     []ImportTypeSummary `json:"summary"`
}
