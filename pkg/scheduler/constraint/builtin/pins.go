package builtin

import (
	"fmt"

	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// PinConstraint 实现约束 7：每个锁定的 (员工, 日期, 班次) 必须在输出中逐字出现。
type PinConstraint struct {
	*BaseConstraint
}

// NewPinConstraint 创建锁定约束
func NewPinConstraint() *PinConstraint {
	return &PinConstraint{
		BaseConstraint: NewBaseConstraint("锁定分配", constraint.CategoryHard, 1000),
	}
}

// Evaluate 检查全部锁定分配均被满足
func (c *PinConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail

	for key, wantShift := range ctx.Pins {
		ei := ctx.EmployeeIndex(key.EmployeeID())
		d := ctx.DayIndex(key.Date())
		if ei < 0 || d < 0 {
			continue
		}
		got := ctx.ShiftAt(ei, d)
		if got != wantShift {
			violations = append(violations, c.CreateViolation(
				key.EmployeeID(), key.Date(),
				fmt.Sprintf("锁定分配 %s@%s 要求 %s，实际为 %s", key.EmployeeID(), key.Date(), wantShift, got),
				c.Weight(),
			))
		}
	}

	if len(violations) == 0 {
		return true, 0, nil
	}
	return false, c.Weight() * len(violations), violations
}
