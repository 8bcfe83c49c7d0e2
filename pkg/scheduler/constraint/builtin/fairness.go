package builtin

import (
	"fmt"
	"hash/fnv"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// TwoMonthSpreadPenalty 实现软惩罚 two_month_spread[s]（权重 200）：
// 对每个工作班次种类，统计本月+上月计数在员工间的 max-min，求和计入目标。
type TwoMonthSpreadPenalty struct {
	*BaseConstraint
}

// NewTwoMonthSpreadPenalty 创建两月公平性展开软惩罚
func NewTwoMonthSpreadPenalty() *TwoMonthSpreadPenalty {
	return &TwoMonthSpreadPenalty{
		BaseConstraint: NewBaseConstraint("two_month_spread", constraint.CategorySoft, 200),
	}
}

// Evaluate 计算每种工作班次的两月展开并求和
func (c *TwoMonthSpreadPenalty) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	totalSpread := 0

	for _, shift := range model.WorkingShiftKinds() {
		min, max := -1, -1
		for i, emp := range ctx.Employees {
			count := 0
			for d := range ctx.WorkDays {
				if ctx.ShiftAt(i, d) == shift {
					count++
				}
			}
			if prev, ok := ctx.PrevCounts[emp.Code]; ok {
				count += prev[shift]
			}
			if min == -1 || count < min {
				min = count
			}
			if max == -1 || count > max {
				max = count
			}
		}
		if min == -1 {
			continue
		}
		spread := max - min
		totalSpread += spread
		if spread > 0 {
			violations = append(violations, c.CreateViolation(
				"", "", fmt.Sprintf("%s 的两月展开为 %d（max=%d, min=%d）", shift, spread, max, min), 0,
			))
		}
	}

	return true, c.Weight() * totalSpread, violations
}

// RandomTiebreakPenalty 实现软惩罚 random_tiebreak（权重 1）：
// 对每个已分配的 (员工, 日, 班次) 加上一个由该格内容决定的微小抖动，
// 用于在其余软惩罚完全打平的若干解之间打破对称性，让局部搜索有一个
// 稳定的偏好方向，而不是在等优解间随意摆动。
type RandomTiebreakPenalty struct {
	*BaseConstraint
}

// NewRandomTiebreakPenalty 创建随机抖动软惩罚
func NewRandomTiebreakPenalty() *RandomTiebreakPenalty {
	return &RandomTiebreakPenalty{
		BaseConstraint: NewBaseConstraint("random_tiebreak", constraint.CategorySoft, 1),
	}
}

// Evaluate 累加抖动值；不产生违反详情，仅影响目标函数。抖动按
// (员工, 日, 班次) 这一格固定，不读取共享随机源，因此同一方案无论
// 评估多少次都得到同一个惩罚值，局部搜索拿它跟其它候选解比较时是稳定的。
func (c *RandomTiebreakPenalty) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	jitterSum := 0.0
	for i, emp := range ctx.Employees {
		for d := range ctx.WorkDays {
			shift := ctx.ShiftAt(i, d)
			if shift != model.ShiftNone {
				jitterSum += cellJitter(emp.Code, d, shift)
			}
		}
	}
	return true, c.Weight() * int(jitterSum*1000), nil
}

// cellJitter 返回 (员工, 日, 班次) 这一格的 [0,1) 抖动值，由内容哈希确定，
// 同一格在同一次求解里永远得到同一个值。
func cellJitter(employeeID string, day int, shift model.ShiftKind) float64 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%d|%s", employeeID, day, shift)
	return float64(h.Sum32()%10007) / 10007.0
}
