package builtin

import (
	"fmt"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// ChiefCoverageConstraint 实现约束 3：每天每个夜班恰好有一名带班人员。
type ChiefCoverageConstraint struct {
	*BaseConstraint
}

// NewChiefCoverageConstraint 创建带班覆盖约束
func NewChiefCoverageConstraint() *ChiefCoverageConstraint {
	return &ChiefCoverageConstraint{
		BaseConstraint: NewBaseConstraint("带班覆盖", constraint.CategoryHard, 1000),
	}
}

// Evaluate 检查每个夜班恰好一名带班
func (c *ChiefCoverageConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	isValid := true

	for d := range ctx.WorkDays {
		date := ctx.DateAt(d)
		for _, shift := range model.NightShiftKinds() {
			chiefID := ctx.ChiefAt(d, shift)
			if chiefID == "" {
				isValid = false
				violations = append(violations, c.CreateViolation(
					"", date, fmt.Sprintf("%s 的 %s 夜班缺少带班人员", date, shift), c.Weight(),
				))
				continue
			}
			ei := ctx.EmployeeIndex(chiefID)
			if ei < 0 || ctx.ShiftAt(ei, d) != shift {
				isValid = false
				violations = append(violations, c.CreateViolation(
					chiefID, date, fmt.Sprintf("带班人员 %s 未实际出现在 %s 的 %s 班", chiefID, date, shift), c.Weight(),
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

// ChiefQualificationConstraint 实现约束 4：带班席位只能由在该班次工作的
// 带班资格员工占据（`c[e,d,s] ≤ x[e,d,s]`，且非带班资格员工恒为 0）。
type ChiefQualificationConstraint struct {
	*BaseConstraint
}

// NewChiefQualificationConstraint 创建带班资格约束
func NewChiefQualificationConstraint() *ChiefQualificationConstraint {
	return &ChiefQualificationConstraint{
		BaseConstraint: NewBaseConstraint("带班资格", constraint.CategoryHard, 1000),
	}
}

// Evaluate 检查带班席位占用者均具备带班资格且当天确实在该班次
func (c *ChiefQualificationConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	isValid := true

	chiefSet := make(map[string]bool, len(ctx.Employees))
	for _, e := range ctx.Employees {
		if e.IsChief {
			chiefSet[e.Code] = true
		}
	}

	for d := range ctx.WorkDays {
		date := ctx.DateAt(d)
		for _, shift := range model.NightShiftKinds() {
			chiefID := ctx.ChiefAt(d, shift)
			if chiefID == "" {
				continue
			}
			if !chiefSet[chiefID] {
				isValid = false
				violations = append(violations, c.CreateViolation(
					chiefID, date, fmt.Sprintf("%s 不具备带班资格却占据 %s 的带班席位", chiefID, date), c.Weight(),
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
