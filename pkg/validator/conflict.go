// Package validator 实现对已生成排班方案的实时校验（Live validator）：
// 接收一份（可能经过临时编辑的）完整排班，输出一份带类型的违反列表，
// 供前端徽标与本地修复顾问消费。
package validator

import (
	"fmt"
	"sort"

	"github.com/paiban/roster/pkg/model"
)

// ViolationType 违反类型
type ViolationType string

const (
	// RoleMismatch anchor 员工被分配了 DAY/SLEEP 以外的班次
	RoleMismatch ViolationType = "ROLE_MISMATCH"
	// AvoidanceConflict 互斥组内两名及以上成员在同一天共享同一班次
	AvoidanceConflict ViolationType = "AVOIDANCE_CONFLICT"
	// ConsecutiveViolation MINI_NIGHT/LATE_NIGHT 相邻两天同类型连续，
	// 或任意 4 个连续工作日窗口内夜班超过 3 次
	ConsecutiveViolation ViolationType = "CONSECUTIVE_VIOLATION"
	// SlotCountMismatch 某工作日某班次实际人数不等于定员
	SlotCountMismatch ViolationType = "SLOT_COUNT_MISMATCH"
	// ChiefMissing 某工作日某夜班没有任何分配记录标记为带班
	ChiefMissing ViolationType = "CHIEF_MISSING"
	// ChiefDuplicate 某工作日某夜班有一个以上的分配记录标记为带班
	ChiefDuplicate ViolationType = "CHIEF_DUPLICATE"
)

// Violation 一条校验发现的违反
type Violation struct {
	Type       ViolationType   `json:"type"`
	EmployeeID string          `json:"employee_id"`
	Date       string          `json:"date"`
	Shift      model.ShiftKind `json:"shift,omitempty"`
	Message    string          `json:"message"`
}

// Validator 实时校验器
type Validator struct{}

// NewValidator 创建实时校验器
func NewValidator() *Validator {
	return &Validator{}
}

// Validate 对一份完整排班方案执行校验，返回全部发现的违反
func (v *Validator) Validate(days []model.DayRecord, employees []model.Employee, groups []model.AvoidanceGroup, anchorEmployeeID string) []Violation {
	sorted := make([]model.DayRecord, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	var violations []Violation
	violations = append(violations, v.detectRoleMismatch(sorted, anchorEmployeeID)...)
	violations = append(violations, v.detectAvoidanceConflicts(sorted, groups)...)
	violations = append(violations, v.detectConsecutiveViolations(sorted, employees)...)
	violations = append(violations, v.detectSlotCountMismatches(sorted)...)
	violations = append(violations, v.detectChiefSeatViolations(sorted)...)
	return violations
}

// detectSlotCountMismatches 检测每个工作日每种工作班次的实际人数是否等于定员
func (v *Validator) detectSlotCountMismatches(days []model.DayRecord) []Violation {
	var out []Violation
	for _, day := range days {
		for _, shift := range model.WorkingShiftKinds() {
			got := len(day.ByShift(shift))
			want := model.SlotCount(shift)
			if got != want {
				out = append(out, Violation{
					Type:    SlotCountMismatch,
					Date:    day.Date,
					Shift:   shift,
					Message: fmt.Sprintf("%s 的 %s 班实际人数 %d，应为 %d", day.Date, shift, got, want),
				})
			}
		}
	}
	return out
}

// detectChiefSeatViolations 检测每个工作日每个夜班是否恰好一条记录标记为带班
func (v *Validator) detectChiefSeatViolations(days []model.DayRecord) []Violation {
	var out []Violation
	for _, day := range days {
		for _, shift := range model.NightShiftKinds() {
			var chiefs []string
			for _, rec := range day.ByShift(shift) {
				if rec.IsChief {
					chiefs = append(chiefs, rec.EmployeeID)
				}
			}
			switch {
			case len(chiefs) == 0:
				out = append(out, Violation{
					Type:    ChiefMissing,
					Date:    day.Date,
					Shift:   shift,
					Message: fmt.Sprintf("%s 的 %s 班缺少带班人员", day.Date, shift),
				})
			case len(chiefs) > 1:
				for _, id := range chiefs[1:] {
					out = append(out, Violation{
						Type:       ChiefDuplicate,
						EmployeeID: id,
						Date:       day.Date,
						Shift:      shift,
						Message:    fmt.Sprintf("%s 的 %s 班有 %d 名带班人员，超过上限 1", day.Date, shift, len(chiefs)),
					})
				}
			}
		}
	}
	return out
}

// detectRoleMismatch 检测 anchor 员工是否被分配了 DAY/SLEEP 以外的班次
func (v *Validator) detectRoleMismatch(days []model.DayRecord, anchorEmployeeID string) []Violation {
	if anchorEmployeeID == "" {
		return nil
	}

	var out []Violation
	for _, day := range days {
		rec := day.ByEmployee(anchorEmployeeID)
		if rec == nil {
			continue
		}
		if rec.Shift != model.ShiftDay && rec.Shift != model.ShiftSleep {
			out = append(out, Violation{
				Type:       RoleMismatch,
				EmployeeID: anchorEmployeeID,
				Date:       day.Date,
				Message:    fmt.Sprintf("anchor 员工在 %s 被分配了 %s，只能是 DAY 或 SLEEP", day.Date, rec.Shift),
			})
		}
	}
	return out
}

// detectAvoidanceConflicts 检测互斥组内成员是否在同一天共享同一班次
func (v *Validator) detectAvoidanceConflicts(days []model.DayRecord, groups []model.AvoidanceGroup) []Violation {
	var out []Violation
	for _, day := range days {
		for _, group := range groups {
			byShift := make(map[model.ShiftKind][]string)
			for _, id := range group.EmployeeIDs {
				rec := day.ByEmployee(id)
				if rec == nil || !rec.Shift.IsWorkingShift() {
					continue
				}
				byShift[rec.Shift] = append(byShift[rec.Shift], id)
			}
			for shift, ids := range byShift {
				if len(ids) < 2 {
					continue
				}
				out = append(out, Violation{
					Type:       AvoidanceConflict,
					EmployeeID: ids[0],
					Date:       day.Date,
					Message:    fmt.Sprintf("互斥组 %s 的成员 %v 在 %s 共享 %s 班次", group.Name, ids, day.Date, shift),
				})
			}
		}
	}
	return out
}

// detectConsecutiveViolations 检测夜班连续性违反：相邻两天同类型夜班连续，
// 或任意 4 个连续工作日窗口内夜班次数超过 3
func (v *Validator) detectConsecutiveViolations(days []model.DayRecord, employees []model.Employee) []Violation {
	var out []Violation

	shiftOf := make(map[string][]model.ShiftKind, len(employees))
	dates := make([]string, len(days))
	for i, day := range days {
		dates[i] = day.Date
		for _, emp := range employees {
			rec := day.ByEmployee(emp.Code)
			shift := model.ShiftNone
			if rec != nil {
				shift = rec.Shift
			}
			shiftOf[emp.Code] = append(shiftOf[emp.Code], shift)
		}
	}

	for _, emp := range employees {
		history := shiftOf[emp.Code]

		for d := 1; d < len(history); d++ {
			cur := history[d]
			prev := history[d-1]
			if (cur == model.ShiftMiniNight || cur == model.ShiftLateNight) && cur == prev {
				out = append(out, Violation{
					Type:       ConsecutiveViolation,
					EmployeeID: emp.Code,
					Date:       dates[d-1],
					Shift:      cur,
					Message:    fmt.Sprintf("员工 %s 在 %s 和 %s 连续两天 %s", emp.Code, dates[d-1], dates[d], cur),
				})
			}
		}

		for start := 0; start+4 <= len(history); start++ {
			nightCount := 0
			for w := start; w < start+4; w++ {
				if history[w].IsNightShift() {
					nightCount++
				}
			}
			if nightCount > 3 {
				out = append(out, Violation{
					Type:       ConsecutiveViolation,
					EmployeeID: emp.Code,
					Date:       dates[start],
					Message:    fmt.Sprintf("员工 %s 从 %s 起的 4 个连续工作日内有 %d 个夜班，超过上限 3", emp.Code, dates[start], nightCount),
				})
			}
		}
	}

	return out
}
