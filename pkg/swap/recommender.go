// Package swap 实现本地修复顾问：针对实时校验器发现的单个冲突，提出一个
// 保持定员不变的最小编辑（单次移动或一对互换），锁定单元格与过去日期
// 永不触碰。
package swap

import (
	"fmt"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/validator"
)

// Edit 建议编辑的一格：某员工在某日从一个班次改为另一个班次
type Edit struct {
	EmployeeID string          `json:"employee_id"`
	Date       string          `json:"date"`
	FromShift  model.ShiftKind `json:"from_shift"`
	ToShift    model.ShiftKind `json:"to_shift"`
}

// Proposal 一条候选修复方案
type Proposal struct {
	Edits  []Edit  `json:"edits"`
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
}

// Advisor 本地修复顾问
type Advisor struct {
	evaluator *Evaluator
}

// NewAdvisor 创建修复顾问
func NewAdvisor() *Advisor {
	return &Advisor{evaluator: NewEvaluator()}
}

// Advise 针对一条冲突生成建议编辑；找不到满足全部约束的候选时返回 nil，
// 调用方必须容忍这种情况。today 之前的日期永不触碰。
func (a *Advisor) Advise(days []model.DayRecord, employees []model.Employee, conflict validator.Violation, today string) *Proposal {
	if conflict.Date < today {
		return nil
	}

	var candidates []Proposal
	switch conflict.Type {
	case validator.SlotCountMismatch:
		candidates = a.slotCountCandidates(days, conflict)
	case validator.ConsecutiveViolation:
		candidates = a.consecutiveCandidates(days, conflict, today)
	case validator.ChiefMissing:
		candidates = a.chiefMissingCandidates(days, employees, conflict)
	case validator.ChiefDuplicate:
		candidates = a.chiefDuplicateCandidates(days, employees, conflict)
	}

	return a.evaluator.Best(days, candidates)
}

// slotCountCandidates 处理 SLOT_COUNT_MISMATCH：把冲突班次的超员与同日
// 缺员班次配对，移动一名员工；找不到缺员搭档则不产生候选。
func (a *Advisor) slotCountCandidates(days []model.DayRecord, conflict validator.Violation) []Proposal {
	day := findDay(days, conflict.Date)
	if day == nil {
		return nil
	}

	want := model.SlotCount(conflict.Shift)
	got := len(day.ByShift(conflict.Shift))
	if got == want {
		return nil
	}

	var out []Proposal
	if got > want {
		// 冲突班次超员，寻找同日缺员班次
		for _, partner := range model.WorkingShiftKinds() {
			if partner == conflict.Shift {
				continue
			}
			if len(day.ByShift(partner)) >= model.SlotCount(partner) {
				continue
			}
			for _, rec := range day.ByShift(conflict.Shift) {
				if rec.IsPinned {
					continue
				}
				out = append(out, Proposal{
					Edits: []Edit{
						{EmployeeID: rec.EmployeeID, Date: day.Date, FromShift: conflict.Shift, ToShift: partner},
					},
					Reason: fmt.Sprintf("%s 班在 %s 超员，移至缺员的 %s 班", conflict.Shift, day.Date, partner),
				})
			}
		}
		return out
	}

	// 冲突班次缺员，寻找同日超员班次
	for _, partner := range model.WorkingShiftKinds() {
		if partner == conflict.Shift {
			continue
		}
		if len(day.ByShift(partner)) <= model.SlotCount(partner) {
			continue
		}
		for _, rec := range day.ByShift(partner) {
			if rec.IsPinned {
				continue
			}
			out = append(out, Proposal{
				Edits: []Edit{
					{EmployeeID: rec.EmployeeID, Date: day.Date, FromShift: partner, ToShift: conflict.Shift},
				},
				Reason: fmt.Sprintf("%s 班在 %s 缺员，从超员的 %s 班调入", conflict.Shift, day.Date, partner),
			})
		}
	}
	return out
}

// consecutiveCandidates 处理 CONSECUTIVE_VIOLATION：conflict.Date 为连续
// 夜班的第一天 D，修复发生在 D+1，在其中寻找可与违规者互换班次的员工 f。
func (a *Advisor) consecutiveCandidates(days []model.DayRecord, conflict validator.Violation, today string) []Proposal {
	if !conflict.Shift.IsNightShift() || conflict.Shift == model.ShiftSleep {
		return nil
	}

	idx := dayIndex(days, conflict.Date)
	if idx < 0 || idx+1 >= len(days) {
		return nil
	}
	dayD := days[idx]
	dayD1 := days[idx+1]
	if dayD1.Date < today {
		return nil
	}

	offender := dayD1.ByEmployee(conflict.EmployeeID)
	if offender == nil || offender.Shift != conflict.Shift || offender.IsPinned {
		return nil
	}

	var dayD2 *model.DayRecord
	if idx+2 < len(days) {
		dayD2 = &days[idx+2]
	}

	var out []Proposal
	for _, rec := range dayD1.Records {
		if rec.EmployeeID == conflict.EmployeeID || rec.IsPinned {
			continue
		}
		if rec.Shift == conflict.Shift || !rec.Shift.IsWorkingShift() {
			continue
		}
		// 守卫 (b): f 在 D 当天不能已经处于同类型夜班
		if onD := dayD.ByEmployee(rec.EmployeeID); onD != nil && onD.Shift == conflict.Shift {
			continue
		}
		// 守卫 (c): f 换入后不能在 D+2 再次形成连续夜班
		if dayD2 != nil {
			if onD2 := dayD2.ByEmployee(rec.EmployeeID); onD2 != nil && onD2.Shift == conflict.Shift {
				continue
			}
		}

		out = append(out, Proposal{
			Edits: []Edit{
				{EmployeeID: conflict.EmployeeID, Date: dayD1.Date, FromShift: conflict.Shift, ToShift: rec.Shift},
				{EmployeeID: rec.EmployeeID, Date: dayD1.Date, FromShift: rec.Shift, ToShift: conflict.Shift},
			},
			Reason: fmt.Sprintf("%s 与 %s 在 %s 互换班次，打断 %s 的连续夜班", conflict.EmployeeID, rec.EmployeeID, dayD1.Date, conflict.Shift),
		})
	}
	return out
}

// chiefMissingCandidates 处理 CHIEF_MISSING：在同日寻找带班资格人数富余的
// 班次，与冲突夜班上的非带班员工互换。
func (a *Advisor) chiefMissingCandidates(days []model.DayRecord, employees []model.Employee, conflict validator.Violation) []Proposal {
	day := findDay(days, conflict.Date)
	if day == nil {
		return nil
	}
	chiefSet := chiefSetOf(employees)

	var out []Proposal
	for _, partner := range model.WorkingShiftKinds() {
		if partner == conflict.Shift {
			continue
		}
		need := 1
		if partner.IsNightShift() {
			need = 2
		}
		partnerRecs := day.ByShift(partner)
		if countChiefQualifiedRecs(partnerRecs, chiefSet) < need {
			continue
		}

		var chief *model.Assignment
		for i := range partnerRecs {
			if chiefSet[partnerRecs[i].EmployeeID] && !partnerRecs[i].IsPinned {
				chief = &partnerRecs[i]
				break
			}
		}
		if chief == nil {
			continue
		}

		for _, rec := range day.ByShift(conflict.Shift) {
			if chiefSet[rec.EmployeeID] || rec.IsPinned {
				continue
			}
			out = append(out, Proposal{
				Edits: []Edit{
					{EmployeeID: chief.EmployeeID, Date: day.Date, FromShift: partner, ToShift: conflict.Shift},
					{EmployeeID: rec.EmployeeID, Date: day.Date, FromShift: conflict.Shift, ToShift: partner},
				},
				Reason: fmt.Sprintf("从 %s 班调入带班资格员工 %s 补齐 %s 班的带班席位", partner, chief.EmployeeID, conflict.Shift),
			})
		}
	}
	return out
}

// chiefDuplicateCandidates 处理 CHIEF_DUPLICATE：把冲突记录中多出的带班
// 员工调往当日缺带班的夜班（优先）或 DAY 班（兜底）。
func (a *Advisor) chiefDuplicateCandidates(days []model.DayRecord, employees []model.Employee, conflict validator.Violation) []Proposal {
	day := findDay(days, conflict.Date)
	if day == nil {
		return nil
	}
	chiefSet := chiefSetOf(employees)

	extra := day.ByEmployee(conflict.EmployeeID)
	if extra == nil || extra.Shift != conflict.Shift || extra.IsPinned {
		return nil
	}

	targets := make([]model.ShiftKind, 0, 4)
	for _, night := range model.NightShiftKinds() {
		if night != conflict.Shift && countChiefQualifiedRecs(day.ByShift(night), chiefSet) == 0 {
			targets = append(targets, night)
		}
	}
	targets = append(targets, model.ShiftDay)

	var out []Proposal
	for _, target := range targets {
		for _, rec := range day.ByShift(target) {
			if chiefSet[rec.EmployeeID] || rec.IsPinned {
				continue
			}
			out = append(out, Proposal{
				Edits: []Edit{
					{EmployeeID: extra.EmployeeID, Date: day.Date, FromShift: conflict.Shift, ToShift: target},
					{EmployeeID: rec.EmployeeID, Date: day.Date, FromShift: target, ToShift: conflict.Shift},
				},
				Reason: fmt.Sprintf("把多余的带班员工 %s 调往 %s 班，补上该班的带班空缺", extra.EmployeeID, target),
			})
		}
		if len(out) > 0 {
			// 优先采用第一个有候选的目标班次
			break
		}
	}
	return out
}

func findDay(days []model.DayRecord, date string) *model.DayRecord {
	for i := range days {
		if days[i].Date == date {
			return &days[i]
		}
	}
	return nil
}

func dayIndex(days []model.DayRecord, date string) int {
	for i := range days {
		if days[i].Date == date {
			return i
		}
	}
	return -1
}

func chiefSetOf(employees []model.Employee) map[string]bool {
	set := make(map[string]bool, len(employees))
	for _, e := range employees {
		if e.IsChief {
			set[e.Code] = true
		}
	}
	return set
}

func countChiefQualifiedRecs(records []model.Assignment, chiefSet map[string]bool) int {
	count := 0
	for _, rec := range records {
		if chiefSet[rec.EmployeeID] {
			count++
		}
	}
	return count
}
