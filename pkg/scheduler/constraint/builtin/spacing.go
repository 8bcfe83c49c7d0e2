package builtin

import (
	"fmt"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// shiftDayIndexes 返回某员工被分配某班次的全部工作日下标，按升序排列
func shiftDayIndexes(ctx *constraint.Context, employeeIdx int, shift model.ShiftKind) []int {
	var out []int
	for d := range ctx.WorkDays {
		if ctx.ShiftAt(employeeIdx, d) == shift {
			out = append(out, d)
		}
	}
	return out
}

// LateNightMinSpacingConstraint 实现约束 9：任意两个 LATE_NIGHT 之间
// 至少间隔 3 个工作日（硬约束）。工作日序列长度小于 2 时禁用。
type LateNightMinSpacingConstraint struct {
	*BaseConstraint
	minGap int
}

// NewLateNightMinSpacingConstraint 创建 LATE_NIGHT 最小间隔约束
func NewLateNightMinSpacingConstraint() *LateNightMinSpacingConstraint {
	return &LateNightMinSpacingConstraint{
		BaseConstraint: NewBaseConstraint("LATE_NIGHT最小间隔", constraint.CategoryHard, 1000),
		minGap:         3,
	}
}

// Evaluate 检查任意两个 LATE_NIGHT 之间的间隔
func (c *LateNightMinSpacingConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	if len(ctx.WorkDays) < 2 {
		return true, 0, nil
	}

	var violations []constraint.ViolationDetail
	for i, emp := range ctx.Employees {
		days := shiftDayIndexes(ctx, i, model.ShiftLateNight)
		for k := 0; k < len(days)-1; k++ {
			gap := days[k+1] - days[k] - 1
			if gap < c.minGap {
				violations = append(violations, c.CreateViolation(
					emp.Code, ctx.DateAt(days[k+1]),
					fmt.Sprintf("员工 %s 的两次 LATE_NIGHT 间隔仅 %d 天，少于最小值 %d", emp.Code, gap, c.minGap),
					c.Weight(),
				))
			}
		}
	}

	if len(violations) == 0 {
		return true, 0, nil
	}
	return false, c.Weight() * len(violations), violations
}

// DayMinSpacingConstraint 实现约束 10：非 anchor 员工任意两个 DAY 之间
// 至少间隔 1 个工作日（硬约束）。
type DayMinSpacingConstraint struct {
	*BaseConstraint
	minGap int
}

// NewDayMinSpacingConstraint 创建 DAY 最小间隔约束
func NewDayMinSpacingConstraint() *DayMinSpacingConstraint {
	return &DayMinSpacingConstraint{
		BaseConstraint: NewBaseConstraint("DAY最小间隔", constraint.CategoryHard, 1000),
		minGap:         1,
	}
}

// Evaluate 检查非 anchor 员工的 DAY 间隔
func (c *DayMinSpacingConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	if len(ctx.WorkDays) < 2 {
		return true, 0, nil
	}

	var violations []constraint.ViolationDetail
	for i, emp := range ctx.Employees {
		if emp.Code == ctx.AnchorEmployeeID {
			continue
		}
		days := shiftDayIndexes(ctx, i, model.ShiftDay)
		for k := 0; k < len(days)-1; k++ {
			gap := days[k+1] - days[k] - 1
			if gap < c.minGap {
				violations = append(violations, c.CreateViolation(
					emp.Code, ctx.DateAt(days[k+1]),
					fmt.Sprintf("员工 %s 的两次 DAY 间隔仅 %d 天，少于最小值 %d", emp.Code, gap, c.minGap),
					c.Weight(),
				))
			}
		}
	}

	if len(violations) == 0 {
		return true, 0, nil
	}
	return false, c.Weight() * len(violations), violations
}

// ConsecutiveNightProhibitionConstraint 实现约束 11：任意员工不得连续两个
// 工作日都是 MINI_NIGHT 或都是 LATE_NIGHT。DAY、SLEEP 的连续是允许的。
type ConsecutiveNightProhibitionConstraint struct {
	*BaseConstraint
}

// NewConsecutiveNightProhibitionConstraint 创建连续夜班禁止约束
func NewConsecutiveNightProhibitionConstraint() *ConsecutiveNightProhibitionConstraint {
	return &ConsecutiveNightProhibitionConstraint{
		BaseConstraint: NewBaseConstraint("连续夜班禁止", constraint.CategoryHard, 1000),
	}
}

// Evaluate 检查 MINI_NIGHT/LATE_NIGHT 不在相邻工作日重复出现
func (c *ConsecutiveNightProhibitionConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	if len(ctx.WorkDays) < 2 {
		return true, 0, nil
	}

	var violations []constraint.ViolationDetail
	for i, emp := range ctx.Employees {
		for d := 0; d < len(ctx.WorkDays)-1; d++ {
			shift := ctx.ShiftAt(i, d)
			if shift != model.ShiftMiniNight && shift != model.ShiftLateNight {
				continue
			}
			if ctx.ShiftAt(i, d+1) == shift {
				violations = append(violations, c.CreateViolation(
					emp.Code, ctx.DateAt(d+1),
					fmt.Sprintf("员工 %s 在 %s、%s 连续两天都是 %s", emp.Code, ctx.DateAt(d), ctx.DateAt(d+1), shift),
					c.Weight(),
				))
			}
		}
	}

	if len(violations) == 0 {
		return true, 0, nil
	}
	return false, c.Weight() * len(violations), violations
}
