// Package metrics 分摊重算与清理任务的指标采集。
package metrics

// Collector 业务层依赖的指标接口
type Collector interface {
	// ObserveReconcile 记录一次班次重算，result 取 ok | noop | error
	ObserveReconcile(result string, seconds float64)
	// AddReconcileWrites 累加一次重算实际写入的分配行与记录行
	AddReconcileWrites(assignments, records int)
	// IncReconcileRetry 并发冲突导致的整体重试
	IncReconcileRetry()
	// ObserveLockWait 班次锁等待耗时，acquired=false 表示超时
	ObserveLockWait(backend string, seconds float64, acquired bool)
	// AddRetentionPurged 清理任务永久删除的记录数
	AddRetentionPurged(n int)
}

// NopMetrics 空实现
type NopMetrics struct{}

var _ Collector = (*NopMetrics)(nil)

// NewNop 创建空实现
func NewNop() *NopMetrics { return &NopMetrics{} }

func (*NopMetrics) ObserveReconcile(string, float64) {}
func (*NopMetrics) AddReconcileWrites(int, int) {}
func (*NopMetrics) IncReconcileRetry() {}
func (*NopMetrics) ObserveLockWait(string, float64, bool) {}
func (*NopMetrics) AddRetentionPurged(int) {}
