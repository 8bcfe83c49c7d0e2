// Package history 提取跨月衔接所需的两项信息：anchor employee 的相位偏移，
// 以及上月各员工每种工作班次的计数（供两月公平性目标使用）。
package history

import "github.com/paiban/roster/pkg/model"

// Projection 跨月投影结果
type Projection struct {
	// AnchorPhaseOffset 新月份第一个工作日在 anchor employee {DAY, SLEEP, SLEEP}
	// 周期中的相位，取值 0/1/2。
	AnchorPhaseOffset int
	// PrevCounts 按员工、按工作班次种类给出的上月计数。
	PrevCounts map[string]map[model.ShiftKind]int
	// HasPreviousData 标记是否提供了可用的历史数据。
	HasPreviousData bool
}

// Project 根据上月的按日期排序的 DayRecord 序列和花名册，计算跨月投影。
// prevMonth 为 nil 或为空时，按“无历史”处理：相位为 0，计数全空。
// 若上月数据中缺少 anchor employee（该员工后来才加入），由单独的分支把相位
// 置为 0；其他员工的上月计数照常保留，HasPreviousData 仍为 true。
func Project(prevMonth []model.DayRecord, anchorEmployeeID string) Projection {
	counts := make(map[string]map[model.ShiftKind]int)
	for _, day := range prevMonth {
		for _, a := range day.Records {
			if !a.Shift.IsWorkingShift() {
				continue
			}
			if counts[a.EmployeeID] == nil {
				counts[a.EmployeeID] = make(map[model.ShiftKind]int)
			}
			counts[a.EmployeeID][a.Shift]++
		}
	}

	if len(prevMonth) == 0 {
		return Projection{AnchorPhaseOffset: 0, PrevCounts: counts, HasPreviousData: false}
	}

	last, secondLast, ok := lastTwoAnchorShifts(prevMonth, anchorEmployeeID)
	if !ok {
		// anchor employee 缺席上月数据：相位从 0 开始，计数照常保留。
		return Projection{AnchorPhaseOffset: 0, PrevCounts: counts, HasPreviousData: true}
	}

	return Projection{
		AnchorPhaseOffset: phaseOffset(last, secondLast),
		PrevCounts:        counts,
		HasPreviousData:   true,
	}
}

// lastTwoAnchorShifts 回溯上月最后一个、倒数第二个工作日中 anchor employee 的班次。
func lastTwoAnchorShifts(prevMonth []model.DayRecord, anchorEmployeeID string) (last, secondLast model.ShiftKind, ok bool) {
	var found []model.ShiftKind
	for i := len(prevMonth) - 1; i >= 0 && len(found) < 2; i-- {
		a := prevMonth[i].ByEmployee(anchorEmployeeID)
		if a == nil {
			continue
		}
		found = append(found, a.Shift)
	}
	if len(found) == 0 {
		return "", "", false
	}
	last = found[0]
	if len(found) > 1 {
		secondLast = found[1]
	}
	return last, secondLast, true
}

// phaseOffset 实现 spec §4.3 的相位表
func phaseOffset(last, secondLast model.ShiftKind) int {
	switch {
	case last == model.ShiftDay:
		return 1
	case last == model.ShiftSleep && secondLast == model.ShiftDay:
		return 2
	case last == model.ShiftSleep && secondLast == model.ShiftSleep:
		return 0
	default:
		return 0
	}
}

// RequiredAnchorShift 返回新月份工作日索引 i（0-based）anchor employee 必须的班次。
func RequiredAnchorShift(dayIndex int, phaseOffset int) model.ShiftKind {
	if (dayIndex+phaseOffset)%3 == 0 {
		return model.ShiftDay
	}
	return model.ShiftSleep
}
