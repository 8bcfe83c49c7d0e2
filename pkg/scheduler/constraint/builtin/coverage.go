package builtin

import (
	"fmt"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// HeadcountConstraint 实现约束 2：每天每种班次的人数必须恰好等于该班次的定员
// （DAY=6, SLEEP=5, MINI_NIGHT=3, LATE_NIGHT=3）。
type HeadcountConstraint struct {
	*BaseConstraint
}

// NewHeadcountConstraint 创建定员约束
func NewHeadcountConstraint() *HeadcountConstraint {
	return &HeadcountConstraint{
		BaseConstraint: NewBaseConstraint("定员", constraint.CategoryHard, 1000),
	}
}

// Evaluate 逐日逐班次检查人数
func (c *HeadcountConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	isValid := true

	for d := range ctx.WorkDays {
		date := ctx.DateAt(d)
		for _, shift := range model.WorkingShiftKinds() {
			want := model.SlotCount(shift)
			got := len(ctx.EmployeesOnShift(d, shift))
			if got != want {
				isValid = false
				violations = append(violations, c.CreateViolation(
					"", date,
					fmt.Sprintf("%s 班 %s 实际人数 %d，应为 %d", date, shift, got, want),
					c.Weight(),
				))
			}
		}
	}

	penalty := 0
	if !isValid {
		penalty = c.Weight() * len(violations)
	}
	return isValid, penalty, violations
}
