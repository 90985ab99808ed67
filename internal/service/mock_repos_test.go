package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
)

// ── 内存存储 ──
//
// 所有 mock repository 共享同一个 memStore，ListByScope 等查询能看到其他仓储的写入。
// 事务串行执行：开始时快照，fn 返回错误时回滚到快照。

type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex
	seq  int

	users       map[string]*model.User
	employees   map[string]*model.Employee
	records     map[string]*model.ProductionRecord
	assignments map[string]*model.Assignment
	attendances map[string]*model.Attendance

	// 故障注入
	lockErrs          []error // 每次 ScopeLock.Lock 依次弹出
	splitWriteErr     error
	roleCountWriteErr error

	// 调用记录
	lockCalls   []string
	txCount     int
	splitWrites int
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]*model.User),
		employees:   make(map[string]*model.Employee),
		records:     make(map[string]*model.ProductionRecord),
		assignments: make(map[string]*model.Assignment),
		attendances: make(map[string]*model.Attendance),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

type memSnapshot struct {
	seq         int
	users       map[string]model.User
	employees   map[string]model.Employee
	records     map[string]model.ProductionRecord
	assignments map[string]model.Assignment
	attendances map[string]model.Attendance
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		seq:         s.seq,
		users:       make(map[string]model.User, len(s.users)),
		employees:   make(map[string]model.Employee, len(s.employees)),
		records:     make(map[string]model.ProductionRecord, len(s.records)),
		assignments: make(map[string]model.Assignment, len(s.assignments)),
		attendances: make(map[string]model.Attendance, len(s.attendances)),
	}
	for k, v := range s.users {
		snap.users[k] = *v
	}
	for k, v := range s.employees {
		snap.employees[k] = *v
	}
	for k, v := range s.records {
		snap.records[k] = *v
	}
	for k, v := range s.assignments {
		snap.assignments[k] = *v
	}
	for k, v := range s.attendances {
		snap.attendances[k] = *v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = snap.seq
	s.users = make(map[string]*model.User, len(snap.users))
	for k, v := range snap.users {
		v := v
		s.users[k] = &v
	}
	s.employees = make(map[string]*model.Employee, len(snap.employees))
	for k, v := range snap.employees {
		v := v
		s.employees[k] = &v
	}
	s.records = make(map[string]*model.ProductionRecord, len(snap.records))
	for k, v := range snap.records {
		v := v
		s.records[k] = &v
	}
	s.assignments = make(map[string]*model.Assignment, len(snap.assignments))
	for k, v := range snap.assignments {
		v := v
		s.assignments[k] = &v
	}
	s.attendances = make(map[string]*model.Attendance, len(snap.attendances))
	for k, v := range snap.attendances {
		v := v
		s.attendances[k] = &v
	}
}

// newMockRepository 以 memStore 组装 Repository 聚合
func newMockRepository(s *memStore) *repository.Repository {
	repo := &repository.Repository{
		User:       &mockUserRepo{s: s},
		Employee:   &mockEmployeeRepo{s: s},
		Record:     &mockRecordRepo{s: s},
		Assignment: &mockAssignmentRepo{s: s},
		Attendance: &mockAttendanceRepo{s: s},
		ScopeLock:  &mockScopeLockRepo{s: s},
	}
	repo.Tx = &mockTransactor{s: s, repo: repo}
	return repo
}

// ── 测试数据构造 ──

func (s *memStore) addEmployee(name, role string) *model.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := 1
	for _, e := range s.employees {
		if e.Role == role && e.Seq >= seq {
			seq = e.Seq + 1
		}
	}
	code, _ := model.EmployeeCode(role, seq)
	emp := &model.Employee{
		EmployeeID: s.nextID("emp"),
		Code:       code,
		Seq:        seq,
		Name:       name,
		Role:       role,
		IsActive:   true,
	}
	s.employees[emp.EmployeeID] = emp
	return emp
}

func (s *memStore) addRecord(date, shift string) *model.ProductionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &model.ProductionRecord{
		RecordID: s.nextID("rec"),
		Shift:    shift,
		Status:   model.RecordStatusPending,
	}
	if date != "" {
		d, err := time.Parse(model.DateLayout, date)
		if err != nil {
			panic(err)
		}
		rec.Date = &d
	}
	rec.Version = 1
	s.records[rec.RecordID] = rec
	return rec
}

// assign 直接写入分配，不触发重算
func (s *memStore) assign(recordID string, employeeIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(recordID, employeeIDs)
}

func (s *memStore) replaceLocked(recordID string, employeeIDs []string) {
	for id, a := range s.assignments {
		if a.RecordID == recordID {
			delete(s.assignments, id)
		}
	}
	for _, eid := range employeeIDs {
		id := s.nextID("asg")
		s.assignments[id] = &model.Assignment{
			AssignmentID: id,
			RecordID:     recordID,
			EmployeeID:   eid,
			SplitCount:   1,
		}
	}
}

// split 读取某记录上某员工的分摊值
func (s *memStore) split(recordID, employeeID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.RecordID == recordID && a.EmployeeID == employeeID {
			return a.SplitCount
		}
	}
	return -1
}

// counts 读取记录当前工种人数
func (s *memStore) counts(recordID string) model.RoleCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[recordID].RoleCounts
}

func (s *memStore) record(recordID string) model.ProductionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.records[recordID]
}

// withAssignmentsLocked 复制记录并按分配 ID 顺序挂载分配与员工
func (s *memStore) withAssignmentsLocked(rec *model.ProductionRecord) model.ProductionRecord {
	out := *rec
	out.Assignments = nil
	for _, a := range s.assignments {
		if a.RecordID != rec.RecordID {
			continue
		}
		cp := *a
		if e, ok := s.employees[a.EmployeeID]; ok {
			emp := *e
			cp.Employee = &emp
		}
		out.Assignments = append(out.Assignments, cp)
	}
	sort.Slice(out.Assignments, func(i, j int) bool {
		return out.Assignments[i].AssignmentID < out.Assignments[j].AssignmentID
	})
	return out
}

func inScope(rec *model.ProductionRecord, scope model.Scope) bool {
	sc, ok := rec.Scope()
	return ok && !rec.DeletedAt.Valid && sc.Equal(scope)
}

func sortRecords(recs []model.ProductionRecord) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].RecordID < recs[j].RecordID })
}

// ── Mock Transactor ──

type mockTransactor struct {
	s    *memStore
	repo *repository.Repository
}

func (t *mockTransactor) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	t.s.txCount++
	t.s.mu.Unlock()

	snap := t.s.snapshot()
	if err := fn(t.repo); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// ── Mock ScopeLockRepository ──

type mockScopeLockRepo struct {
	s *memStore
}

func (m *mockScopeLockRepo) Lock(_ context.Context, scope model.Scope, _ time.Duration) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.lockCalls = append(m.s.lockCalls, scope.Key())
	if len(m.s.lockErrs) > 0 {
		err := m.s.lockErrs[0]
		m.s.lockErrs = m.s.lockErrs[1:]
		return err
	}
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	s *memStore
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == user.Username && !u.DeletedAt.Valid {
			return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	if user.UserID == "" {
		user.UserID = m.s.nextID("user")
	}
	cp := *user
	m.s.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[id]; ok && !u.DeletedAt.Valid {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == username && !u.DeletedAt.Valid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []model.User
	for _, u := range m.s.users {
		if !u.DeletedAt.Valid {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockUserRepo) Delete(_ context.Context, id, deletedBy string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok || u.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	u.DeletedBy = &deletedBy
	return nil
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	s *memStore
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	seq := 1
	for _, e := range m.s.employees {
		if e.Role == emp.Role && e.Seq >= seq {
			seq = e.Seq + 1
		}
	}
	code, err := model.EmployeeCode(emp.Role, seq)
	if err != nil {
		return err
	}
	emp.EmployeeID = m.s.nextID("emp")
	emp.Seq = seq
	emp.Code = code
	cp := *emp
	m.s.employees[emp.EmployeeID] = &cp
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if e, ok := m.s.employees[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) ListByIDs(_ context.Context, ids []string) ([]model.Employee, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Employee
	for _, id := range ids {
		if e, ok := m.s.employees[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEmployeeRepo) List(_ context.Context, f repository.EmployeeFilter, offset, limit int) ([]model.Employee, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []model.Employee
	for _, e := range m.s.employees {
		if f.Role != "" && e.Role != f.Role {
			continue
		}
		if f.IsActive != nil && e.IsActive != *f.IsActive {
			continue
		}
		if f.Keyword != "" && !strings.Contains(e.Name, f.Keyword) && !strings.Contains(e.Code, f.Keyword) {
			continue
		}
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.employees[emp.EmployeeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Name = emp.Name
	e.IsActive = emp.IsActive
	e.UpdatedBy = emp.UpdatedBy
	return nil
}

// ── Mock RecordRepository ──

type mockRecordRepo struct {
	s *memStore
}

func (m *mockRecordRepo) Create(_ context.Context, rec *model.ProductionRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	rec.RecordID = m.s.nextID("rec")
	rec.Version = 1
	cp := *rec
	cp.Assignments = nil
	m.s.records[rec.RecordID] = &cp
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id string) (*model.ProductionRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	rec, ok := m.s.records[id]
	if !ok || rec.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	out := m.s.withAssignmentsLocked(rec)
	return &out, nil
}

func (m *mockRecordRepo) GetByIDUnscoped(_ context.Context, id string) (*model.ProductionRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	rec, ok := m.s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := m.s.withAssignmentsLocked(rec)
	return &out, nil
}

func (m *mockRecordRepo) List(_ context.Context, f repository.RecordFilter, offset, limit int) ([]model.ProductionRecord, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []model.ProductionRecord
	for _, rec := range m.s.records {
		if rec.DeletedAt.Valid {
			continue
		}
		if f.Shift != "" && rec.Shift != f.Shift {
			continue
		}
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if f.From != nil && (rec.Date == nil || rec.Date.Before(*f.From)) {
			continue
		}
		if f.To != nil && (rec.Date == nil || rec.Date.After(*f.To)) {
			continue
		}
		all = append(all, m.s.withAssignmentsLocked(rec))
	}
	sortRecords(all)
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockRecordRepo) ListByScope(_ context.Context, scope model.Scope) ([]model.ProductionRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.ProductionRecord
	for _, rec := range m.s.records {
		if inScope(rec, scope) {
			out = append(out, m.s.withAssignmentsLocked(rec))
		}
	}
	sortRecords(out)
	return out, nil
}

func (m *mockRecordRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]model.ProductionRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.ProductionRecord
	for _, rec := range m.s.records {
		if rec.DeletedAt.Valid || rec.Date == nil || rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		out = append(out, m.s.withAssignmentsLocked(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(*out[j].Date) {
			return out[i].Date.Before(*out[j].Date)
		}
		if out[i].Shift != out[j].Shift {
			return out[i].Shift < out[j].Shift
		}
		return out[i].RecordID < out[j].RecordID
	})
	return out, nil
}

func (m *mockRecordRepo) ListScopes(_ context.Context, from, to time.Time) ([]model.Scope, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	seen := make(map[string]model.Scope)
	for _, rec := range m.s.records {
		sc, ok := rec.Scope()
		if !ok || rec.DeletedAt.Valid || rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		seen[sc.Key()] = sc
	}
	out := make([]model.Scope, 0, len(seen))
	for _, sc := range seen {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

func (m *mockRecordRepo) ListDeleted(_ context.Context, offset, limit int) ([]model.ProductionRecord, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []model.ProductionRecord
	for _, rec := range m.s.records {
		if rec.DeletedAt.Valid {
			all = append(all, m.s.withAssignmentsLocked(rec))
		}
	}
	sortRecords(all)
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockRecordRepo) Update(_ context.Context, rec *model.ProductionRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cur, ok := m.s.records[rec.RecordID]
	if !ok || cur.DeletedAt.Valid || cur.Version != rec.Version {
		return pkgerrors.ErrOptimisticLock
	}
	counts := cur.RoleCounts
	*cur = *rec
	cur.Assignments = nil
	cur.RoleCounts = counts
	cur.Version = rec.Version + 1
	rec.Version++
	return nil
}

func (m *mockRecordRepo) UpdateRoleCounts(_ context.Context, recordID string, counts model.RoleCounts) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.roleCountWriteErr != nil {
		return m.s.roleCountWriteErr
	}
	rec, ok := m.s.records[recordID]
	if !ok || rec.DeletedAt.Valid {
		return pkgerrors.ErrNotFound
	}
	rec.RoleCounts = counts
	return nil
}

func (m *mockRecordRepo) SoftDelete(_ context.Context, id, deletedBy string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	rec, ok := m.s.records[id]
	if !ok || rec.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	rec.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	rec.DeletedBy = &deletedBy
	rec.Version++
	return nil
}

func (m *mockRecordRepo) Restore(_ context.Context, id, restoredBy string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	rec, ok := m.s.records[id]
	if !ok || !rec.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	rec.DeletedAt = gorm.DeletedAt{}
	rec.DeletedBy = nil
	rec.UpdatedBy = &restoredBy
	rec.Version++
	return nil
}

func (m *mockRecordRepo) PurgeDeletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for id, rec := range m.s.records {
		if !rec.DeletedAt.Valid || !rec.DeletedAt.Time.Before(cutoff) {
			continue
		}
		for aid, a := range m.s.assignments {
			if a.RecordID == id {
				delete(m.s.assignments, aid)
			}
		}
		delete(m.s.records, id)
		n++
	}
	return n, nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	s *memStore
}

func (m *mockAssignmentRepo) ReplaceAssignments(_ context.Context, recordID string, employeeIDs []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.records[recordID]; !ok {
		return fmt.Errorf("record %s: %w", recordID, pkgerrors.ErrNotFound)
	}
	for _, eid := range employeeIDs {
		if _, ok := m.s.employees[eid]; !ok {
			return fmt.Errorf("employee %s: %w", eid, pkgerrors.ErrNotFound)
		}
	}
	m.s.replaceLocked(recordID, employeeIDs)
	return nil
}

func (m *mockAssignmentRepo) ListByScope(_ context.Context, scope model.Scope) ([]model.Assignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Assignment
	for _, a := range m.s.assignments {
		if rec, ok := m.s.records[a.RecordID]; ok && inScope(rec, scope) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignmentID < out[j].AssignmentID })
	return out, nil
}

func (m *mockAssignmentRepo) ListByRecord(_ context.Context, recordID string) ([]model.Assignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Assignment
	for _, a := range m.s.assignments {
		if a.RecordID == recordID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignmentID < out[j].AssignmentID })
	return out, nil
}

func (m *mockAssignmentRepo) SetSplitCount(_ context.Context, assignmentID string, value float64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.assignments[assignmentID]
	if !ok {
		return pkgerrors.ErrNotFound
	}
	a.SplitCount = value
	return nil
}

func (m *mockAssignmentRepo) SetSplitCountBatch(_ context.Context, ids []string, value float64) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.splitWriteErr != nil {
		return 0, m.s.splitWriteErr
	}
	var n int64
	for _, id := range ids {
		if a, ok := m.s.assignments[id]; ok {
			a.SplitCount = value
			n++
		}
	}
	m.s.splitWrites += int(n)
	return n, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	s *memStore
}

func attendanceKey(a *model.Attendance) string {
	return a.EmployeeID + "|" + a.Date.Format(model.DateLayout) + "|" + a.Shift
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, att *model.Attendance) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	key := attendanceKey(att)
	if cur, ok := m.s.attendances[key]; ok {
		cur.Status = att.Status
		cur.Remarks = att.Remarks
		cur.UpdatedBy = att.UpdatedBy
		*att = *cur
		return nil
	}
	att.AttendanceID = m.s.nextID("att")
	cp := *att
	m.s.attendances[key] = &cp
	return nil
}

func (m *mockAttendanceRepo) List(_ context.Context, f repository.AttendanceFilter) ([]model.Attendance, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Attendance
	for _, a := range m.s.attendances {
		if f.Date != nil && a.Date.Format(model.DateLayout) != f.Date.Format(model.DateLayout) {
			continue
		}
		if f.Shift != "" && a.Shift != f.Shift {
			continue
		}
		if f.EmployeeID != "" && a.EmployeeID != f.EmployeeID {
			continue
		}
		cp := *a
		if e, ok := m.s.employees[a.EmployeeID]; ok {
			emp := *e
			cp.Employee = &emp
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return attendanceKey(&out[i]) < attendanceKey(&out[j]) })
	return out, nil
}

// ── 辅助 ──

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
