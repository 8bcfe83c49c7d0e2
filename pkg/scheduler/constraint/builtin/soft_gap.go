package builtin

import (
	"fmt"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// LateNightGapPenalty 实现软惩罚 late_gap_violation（权重 500）：
// LATE_NIGHT 间隔超过上限（带班资格 5 天，非带班资格 6 天）时每次计 1。
type LateNightGapPenalty struct {
	*BaseConstraint
}

// NewLateNightGapPenalty 创建 LATE_NIGHT 间隔软惩罚
func NewLateNightGapPenalty() *LateNightGapPenalty {
	return &LateNightGapPenalty{
		BaseConstraint: NewBaseConstraint("late_gap_violation", constraint.CategorySoft, 500),
	}
}

// Evaluate 统计超出上限的间隔次数
func (c *LateNightGapPenalty) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	if len(ctx.WorkDays) < 2 {
		return true, 0, nil
	}

	var violations []constraint.ViolationDetail
	count := 0

	for i, emp := range ctx.Employees {
		maxGap := 6
		if emp.IsChief {
			maxGap = 5
		}
		days := shiftDayIndexes(ctx, i, model.ShiftLateNight)
		for k := 0; k < len(days)-1; k++ {
			gap := days[k+1] - days[k] - 1
			if gap > maxGap {
				count++
				violations = append(violations, c.CreateViolation(
					emp.Code, ctx.DateAt(days[k+1]),
					fmt.Sprintf("员工 %s 的两次 LATE_NIGHT 间隔 %d 天，超过上限 %d", emp.Code, gap, maxGap),
					c.Weight(),
				))
			}
		}
	}

	return true, c.Weight() * count, violations
}

// DayGapPenalty 实现软惩罚 day_gap_violation（权重 500）：
// 非 anchor 员工 DAY 间隔超过 3 天时每次计 1。
type DayGapPenalty struct {
	*BaseConstraint
}

// NewDayGapPenalty 创建 DAY 间隔软惩罚
func NewDayGapPenalty() *DayGapPenalty {
	return &DayGapPenalty{
		BaseConstraint: NewBaseConstraint("day_gap_violation", constraint.CategorySoft, 500),
	}
}

// Evaluate 统计超出上限（3 天）的 DAY 间隔次数
func (c *DayGapPenalty) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	const maxGap = 3
	if len(ctx.WorkDays) < 2 {
		return true, 0, nil
	}

	var violations []constraint.ViolationDetail
	count := 0

	for i, emp := range ctx.Employees {
		if emp.Code == ctx.AnchorEmployeeID {
			continue
		}
		days := shiftDayIndexes(ctx, i, model.ShiftDay)
		for k := 0; k < len(days)-1; k++ {
			gap := days[k+1] - days[k] - 1
			if gap > maxGap {
				count++
				violations = append(violations, c.CreateViolation(
					emp.Code, ctx.DateAt(days[k+1]),
					fmt.Sprintf("员工 %s 的两次 DAY 间隔 %d 天，超过上限 %d", emp.Code, gap, maxGap),
					c.Weight(),
				))
			}
		}
	}

	return true, c.Weight() * count, violations
}

// LeaderDayConsecutivePenalty 实现软惩罚 leader_day_consecutive（权重 1000）：
// 带班资格员工连续两个工作日都是 DAY 时每对计 1。
type LeaderDayConsecutivePenalty struct {
	*BaseConstraint
}

// NewLeaderDayConsecutivePenalty 创建带班 DAY 连续软惩罚
func NewLeaderDayConsecutivePenalty() *LeaderDayConsecutivePenalty {
	return &LeaderDayConsecutivePenalty{
		BaseConstraint: NewBaseConstraint("leader_day_consecutive", constraint.CategorySoft, 1000),
	}
}

// Evaluate 统计带班资格员工的 DAY-DAY 相邻对数
func (c *LeaderDayConsecutivePenalty) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	if len(ctx.WorkDays) < 2 {
		return true, 0, nil
	}

	var violations []constraint.ViolationDetail
	count := 0

	for i, emp := range ctx.Employees {
		if !emp.IsChief {
			continue
		}
		for d := 0; d < len(ctx.WorkDays)-1; d++ {
			if ctx.ShiftAt(i, d) == model.ShiftDay && ctx.ShiftAt(i, d+1) == model.ShiftDay {
				count++
				violations = append(violations, c.CreateViolation(
					emp.Code, ctx.DateAt(d+1),
					fmt.Sprintf("带班员工 %s 在 %s、%s 连续两天 DAY", emp.Code, ctx.DateAt(d), ctx.DateAt(d+1)),
					c.Weight(),
				))
			}
		}
	}

	return true, c.Weight() * count, violations
}
