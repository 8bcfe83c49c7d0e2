package builtin

import (
	"fmt"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// AvoidanceConstraint 实现约束 8：互斥组内任意两名成员在同一天不得共享同一班次。
type AvoidanceConstraint struct {
	*BaseConstraint
}

// NewAvoidanceConstraint 创建互斥组约束
func NewAvoidanceConstraint() *AvoidanceConstraint {
	return &AvoidanceConstraint{
		BaseConstraint: NewBaseConstraint("互斥组", constraint.CategoryHard, 1000),
	}
}

// Evaluate 逐组逐日逐班次检查成员不重叠
func (c *AvoidanceConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail

	for _, group := range ctx.AvoidanceGroups {
		for d := range ctx.WorkDays {
			date := ctx.DateAt(d)
			for _, shift := range model.WorkingShiftKinds() {
				count := 0
				for _, empID := range group.EmployeeIDs {
					ei := ctx.EmployeeIndex(empID)
					if ei < 0 {
						continue
					}
					if ctx.ShiftAt(ei, d) == shift {
						count++
					}
				}
				if count > 1 {
					violations = append(violations, c.CreateViolation(
						"", date,
						fmt.Sprintf("互斥组 %s 在 %s 的 %s 班有 %d 人同时在场", group.Name, date, shift, count),
						c.Weight(),
					))
				}
			}
		}
	}

	if len(violations) == 0 {
		return true, 0, nil
	}
	return false, c.Weight() * len(violations), violations
}
