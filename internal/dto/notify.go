package dto

// ── 外发通知 DTO ──

// ReminderRunResponse 课程提醒批量发送结果
type ReminderRunResponse struct {
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"` // 课程未配置 webhook
	Failed  int      `json:"failed"`
	Details []string `json:"details"`
}

// StandingsPostResponse 榜单播报结果；榜单冻结时 Posted 为 false
type StandingsPostResponse struct {
	Semester string `json:"semester"`
	Posted   bool   `json:"posted"`
}
