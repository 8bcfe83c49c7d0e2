package builtin

import (
	"fmt"

	"github.com/paiban/roster/pkg/history"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// AnchorRestrictionConstraint 实现约束 6：anchor employee 在任何工作日
// 只能是 DAY 或 SLEEP。
type AnchorRestrictionConstraint struct {
	*BaseConstraint
}

// NewAnchorRestrictionConstraint 创建 anchor 限制约束
func NewAnchorRestrictionConstraint() *AnchorRestrictionConstraint {
	return &AnchorRestrictionConstraint{
		BaseConstraint: NewBaseConstraint("anchor员工班次限制", constraint.CategoryHard, 1000),
	}
}

// Evaluate 检查 anchor employee 恒为 DAY/SLEEP
func (c *AnchorRestrictionConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	ei := ctx.EmployeeIndex(ctx.AnchorEmployeeID)
	if ei < 0 {
		return true, 0, nil
	}

	var violations []constraint.ViolationDetail
	for d := range ctx.WorkDays {
		shift := ctx.ShiftAt(ei, d)
		if shift != model.ShiftDay && shift != model.ShiftSleep {
			violations = append(violations, c.CreateViolation(
				ctx.AnchorEmployeeID, ctx.DateAt(d),
				fmt.Sprintf("anchor 员工在 %s 被分配 %s，只允许 DAY/SLEEP", ctx.DateAt(d), shift),
				c.Weight(),
			))
		}
	}

	if len(violations) == 0 {
		return true, 0, nil
	}
	return false, c.Weight() * len(violations), violations
}

// AnchorCycleConstraint 实现约束 5：anchor employee 遵循跨月连续的
// {DAY, SLEEP, SLEEP} 三相循环，除非该日存在针对 anchor 的锁定分配——
// 锁定优先，循环约束在锁定日不生效。
type AnchorCycleConstraint struct {
	*BaseConstraint
}

// NewAnchorCycleConstraint 创建 anchor 循环约束
func NewAnchorCycleConstraint() *AnchorCycleConstraint {
	return &AnchorCycleConstraint{
		BaseConstraint: NewBaseConstraint("anchor循环", constraint.CategoryHard, 1000),
	}
}

// Evaluate 检查除锁定日以外，anchor 的班次与 history.RequiredAnchorShift 一致
func (c *AnchorCycleConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	ei := ctx.EmployeeIndex(ctx.AnchorEmployeeID)
	if ei < 0 {
		return true, 0, nil
	}

	var violations []constraint.ViolationDetail
	for d := range ctx.WorkDays {
		date := ctx.DateAt(d)
		if ctx.IsPinned(ctx.AnchorEmployeeID, date) {
			continue
		}
		required := history.RequiredAnchorShift(d, ctx.AnchorPhaseOffset)
		got := ctx.ShiftAt(ei, d)
		if got != required {
			violations = append(violations, c.CreateViolation(
				ctx.AnchorEmployeeID, date,
				fmt.Sprintf("anchor 员工在 %s 应为 %s，实际为 %s", date, required, got),
				c.Weight(),
			))
		}
	}

	if len(violations) == 0 {
		return true, 0, nil
	}
	return false, c.Weight() * len(violations), violations
}
