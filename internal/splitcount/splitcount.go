// Package splitcount 实现班次内员工工时分摊的纯计算。
//
// 同一 (日期, 班次) 内，员工在其出现的每条记录上获得 1/N 的分摊（N 为该员工出现的
// 不同记录数），因此每名员工在班次内的分摊之和恒为 1。记录上的四个工种人数是该记录
// 不同员工分摊按工种求和后保留两位小数的结果。
//
// 本包只做计算，不读写存储；调用方负责加锁、加载班次全量数据并持久化 Plan。
package splitcount

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
)

const (
	// splitEpsilon 判断分摊值是否需要重写的容差
	splitEpsilon = 1e-12
	// divPrecision 单项 k/n 的小数位数
	divPrecision = 16
	// snapPrecision 求和后对齐的小数位数
	snapPrecision = 9
)

// Result 一个班次的目标状态
type Result struct {
	// Splits assignment_id → 目标分摊（全精度）
	Splits map[string]float64
	// RoleCounts record_id → 目标工种人数（两位小数）
	RoleCounts map[string]model.RoleCounts
	// RecordsPerEmployee employee_id → 出现的不同记录数
	RecordsPerEmployee map[string]int
}

// Compute 根据班次内全部记录及其分配计算目标状态。
// records 须为同一班次的全部在用记录，且 Assignments 已预加载（Employee 可为空）。
func Compute(records []model.ProductionRecord) Result {
	res := Result{
		Splits:             make(map[string]float64),
		RoleCounts:         make(map[string]model.RoleCounts, len(records)),
		RecordsPerEmployee: make(map[string]int),
	}

	// 每条记录内同一员工只计一次
	seen := make(map[string]map[string]struct{}, len(records))
	for _, r := range records {
		emps, ok := seen[r.RecordID]
		if !ok {
			emps = make(map[string]struct{}, len(r.Assignments))
			seen[r.RecordID] = emps
		}
		for _, a := range r.Assignments {
			if _, dup := emps[a.EmployeeID]; dup {
				continue
			}
			emps[a.EmployeeID] = struct{}{}
			res.RecordsPerEmployee[a.EmployeeID]++
		}
	}

	for _, r := range records {
		// 工种 → 出现记录数 n → 人数 k
		buckets := make(map[string]map[int]int64, len(model.EmployeeRoles))
		counted := make(map[string]struct{}, len(r.Assignments))
		for _, a := range r.Assignments {
			n := res.RecordsPerEmployee[a.EmployeeID]
			res.Splits[a.AssignmentID] = 1.0 / float64(n)

			if _, dup := counted[a.EmployeeID]; dup {
				continue
			}
			counted[a.EmployeeID] = struct{}{}
			if a.Employee == nil {
				continue
			}
			byN, ok := buckets[a.Employee.Role]
			if !ok {
				byN = make(map[int]int64)
				buckets[a.Employee.Role] = byN
			}
			byN[n]++
		}
		res.RoleCounts[r.RecordID] = sumRoleCounts(buckets)
	}

	return res
}

// sumRoleCounts 按 Σ k/n 求和后四舍五入到两位小数。
// 每项按 divPrecision 位舍入，累计误差远小于 10^-snapPrecision，
// 先对齐到 snapPrecision 位即可恢复精确和，使 x.xx5 的边界值向上进位。
func sumRoleCounts(buckets map[string]map[int]int64) model.RoleCounts {
	var counts model.RoleCounts
	for role, byN := range buckets {
		sum := decimal.Zero
		for n, k := range byN {
			sum = sum.Add(decimal.NewFromInt(k).DivRound(decimal.NewFromInt(int64(n)), divPrecision))
		}
		counts.Add(role, sum.Round(snapPrecision))
	}
	return counts.Round()
}

// SplitUpdate 一组目标值相同的分配
type SplitUpdate struct {
	Value         float64
	AssignmentIDs []string
}

// Plan 需要持久化的差异
type Plan struct {
	// Splits 按目标值分组，便于批量 UPDATE ... WHERE assignment_id IN (...)
	Splits []SplitUpdate
	// RoleCounts 工种人数有变化的记录
	RoleCounts map[string]model.RoleCounts
}

// Empty 无需写入
func (p Plan) Empty() bool {
	return len(p.Splits) == 0 && len(p.RoleCounts) == 0
}

// AssignmentWrites 需更新的分配行数
func (p Plan) AssignmentWrites() int {
	n := 0
	for _, u := range p.Splits {
		n += len(u.AssignmentIDs)
	}
	return n
}

// Diff 对比当前值与目标值，只保留变化的行
func Diff(records []model.ProductionRecord, res Result) Plan {
	plan := Plan{RoleCounts: make(map[string]model.RoleCounts)}
	byValue := make(map[float64][]string)

	for _, r := range records {
		for _, a := range r.Assignments {
			want, ok := res.Splits[a.AssignmentID]
			if !ok || math.Abs(a.SplitCount-want) < splitEpsilon {
				continue
			}
			byValue[want] = append(byValue[want], a.AssignmentID)
		}
		if want, ok := res.RoleCounts[r.RecordID]; ok && !r.RoleCounts.Equal(want) {
			plan.RoleCounts[r.RecordID] = want
		}
	}

	for v, ids := range byValue {
		sort.Strings(ids)
		plan.Splits = append(plan.Splits, SplitUpdate{Value: v, AssignmentIDs: ids})
	}
	sort.Slice(plan.Splits, func(i, j int) bool { return plan.Splits[i].Value > plan.Splits[j].Value })

	return plan
}

// Apply 将目标状态写回内存中的记录，用于返回给调用方
func Apply(records []model.ProductionRecord, res Result) {
	for i := range records {
		r := &records[i]
		for j := range r.Assignments {
			if v, ok := res.Splits[r.Assignments[j].AssignmentID]; ok {
				r.Assignments[j].SplitCount = v
			}
		}
		if rc, ok := res.RoleCounts[r.RecordID]; ok {
			r.RoleCounts = rc
		}
	}
}
