package dto

// ── 分摊重算 DTO ──

// ReconcileRequest 手动重算单个班次
type ReconcileRequest struct {
	Date  string `json:"date"  binding:"required"`
	Shift string `json:"shift" binding:"required"`
}

// ReconcileRangeRequest 重算区间内所有存在记录的班次
type ReconcileRangeRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to"   binding:"required"`
}

// ReconcileSummary 单个班次的重算结果摘要
type ReconcileSummary struct {
	Date               string `json:"date"`
	Shift              string `json:"shift"`
	RecordCount        int    `json:"record_count"`
	AssignmentsWritten int    `json:"assignments_written"`
	RecordsWritten     int    `json:"records_written"`
}

// ReconcileRangeResponse 区间重算结果
type ReconcileRangeResponse struct {
	Scopes  int                `json:"scopes"`
	Results []ReconcileSummary `json:"results"`
}
