// Package optimizer 提供排班方案的局部搜索优化
package optimizer

import (
	"math/rand"
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// MoveType 邻域移动类型
type MoveType int

const (
	MoveSwap      MoveType = iota // 同一天内交换两名员工的班次
	MoveChainSwap                 // 同一天内对三名员工的班次做环形轮换
	MoveChiefSwap                 // 把某个夜班的带班席位转给同班次的另一名带班资格员工
)

// NeighborhoodGenerator 邻域生成器。与教师代码不同，这里的每种移动都必须
// 保持当天各班次定员不变——排班决策张量的定员约束是结构性不变量，任何
// 邻域解都不应该需要靠后续评估去发现"人数又不对了"。
type NeighborhoodGenerator struct {
	rng         *rand.Rand
	moveWeights map[MoveType]float64
}

// NewNeighborhoodGenerator 创建邻域生成器
func NewNeighborhoodGenerator() *NeighborhoodGenerator {
	return &NeighborhoodGenerator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		moveWeights: map[MoveType]float64{
			MoveSwap:      0.55,
			MoveChainSwap: 0.20,
			MoveChiefSwap: 0.25,
		},
	}
}

// SetMoveWeights 设置移动类型权重
func (n *NeighborhoodGenerator) SetMoveWeights(weights map[MoveType]float64) {
	n.moveWeights = weights
}

// selectMoveType 按权重选择移动类型
func (n *NeighborhoodGenerator) selectMoveType() MoveType {
	total := 0.0
	for _, w := range n.moveWeights {
		total += w
	}
	if total <= 0 {
		return MoveSwap
	}
	r := n.rng.Float64() * total
	cumulative := 0.0
	for _, mt := range []MoveType{MoveSwap, MoveChainSwap, MoveChiefSwap} {
		cumulative += n.moveWeights[mt]
		if r < cumulative {
			return mt
		}
	}
	return MoveSwap
}

// GenerateNeighbor 从当前解派生一个邻域解；找不到可行移动时返回 nil
func (n *NeighborhoodGenerator) GenerateNeighbor(current *Solution) *Solution {
	if current == nil || current.Context.NumDays() == 0 {
		return nil
	}

	switch n.selectMoveType() {
	case MoveChainSwap:
		if s := n.generateChainSwapMove(current); s != nil {
			return s
		}
		return n.generateSwapMove(current)
	case MoveChiefSwap:
		if s := n.generateChiefSwapMove(current); s != nil {
			return s
		}
		return n.generateSwapMove(current)
	default:
		return n.generateSwapMove(current)
	}
}

// movable 判断某个 (员工, 日期) 单元格是否可以被局部搜索改动：
// 不是 anchor、不是锁定分配、也不是当天某个夜班的带班人。
func movable(c *constraint.Context, employeeIdx, dayIdx int) bool {
	emp := c.Employees[employeeIdx]
	if emp.Code == c.AnchorEmployeeID {
		return false
	}
	date := c.DateAt(dayIdx)
	if c.IsPinned(emp.Code, date) {
		return false
	}
	shift := c.ShiftAt(employeeIdx, dayIdx)
	if shift == model.ShiftNone {
		return false
	}
	if shift.IsNightShift() && c.ChiefAt(dayIdx, shift) == emp.Code {
		return false
	}
	return true
}

// generateSwapMove 在同一天内交换两名员工的班次，定员不变
func (n *NeighborhoodGenerator) generateSwapMove(current *Solution) *Solution {
	ctx := current.Context
	numDays := ctx.NumDays()
	numEmployees := ctx.NumEmployees()
	if numDays == 0 || numEmployees < 2 {
		return nil
	}

	for attempt := 0; attempt < 20; attempt++ {
		d := n.rng.Intn(numDays)
		a := n.rng.Intn(numEmployees)
		b := n.rng.Intn(numEmployees)
		if a == b {
			continue
		}
		if !movable(ctx, a, d) || !movable(ctx, b, d) {
			continue
		}
		shiftA := ctx.ShiftAt(a, d)
		shiftB := ctx.ShiftAt(b, d)
		if shiftA == shiftB {
			continue
		}

		neighbor := current.Clone()
		neighbor.Context.Assign(a, d, shiftB)
		neighbor.Context.Assign(b, d, shiftA)
		return neighbor
	}
	return nil
}

// generateChainSwapMove 在同一天内对三名员工的班次做环形轮换 a->b->c->a
func (n *NeighborhoodGenerator) generateChainSwapMove(current *Solution) *Solution {
	ctx := current.Context
	numDays := ctx.NumDays()
	numEmployees := ctx.NumEmployees()
	if numDays == 0 || numEmployees < 3 {
		return nil
	}

	for attempt := 0; attempt < 20; attempt++ {
		d := n.rng.Intn(numDays)
		a := n.rng.Intn(numEmployees)
		b := n.rng.Intn(numEmployees)
		c := n.rng.Intn(numEmployees)
		if a == b || b == c || a == c {
			continue
		}
		if !movable(ctx, a, d) || !movable(ctx, b, d) || !movable(ctx, c, d) {
			continue
		}
		shiftA := ctx.ShiftAt(a, d)
		shiftB := ctx.ShiftAt(b, d)
		shiftC := ctx.ShiftAt(c, d)
		if shiftA == shiftB && shiftB == shiftC {
			continue
		}

		neighbor := current.Clone()
		neighbor.Context.Assign(a, d, shiftB)
		neighbor.Context.Assign(b, d, shiftC)
		neighbor.Context.Assign(c, d, shiftA)
		return neighbor
	}
	return nil
}

// generateChiefSwapMove 把某个夜班的带班席位转给同班次的另一名带班资格员工
func (n *NeighborhoodGenerator) generateChiefSwapMove(current *Solution) *Solution {
	ctx := current.Context
	numDays := ctx.NumDays()
	if numDays == 0 {
		return nil
	}
	nightShifts := model.NightShiftKinds()

	for attempt := 0; attempt < 20; attempt++ {
		d := n.rng.Intn(numDays)
		shift := nightShifts[n.rng.Intn(len(nightShifts))]
		currentChief := ctx.ChiefAt(d, shift)
		if currentChief == "" {
			continue
		}

		var candidates []string
		for _, ei := range ctx.EmployeesOnShift(d, shift) {
			emp := ctx.Employees[ei]
			if emp.IsChief && emp.Code != currentChief {
				candidates = append(candidates, emp.Code)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		neighbor := current.Clone()
		neighbor.Context.SetChief(d, shift, candidates[n.rng.Intn(len(candidates))])
		return neighbor
	}
	return nil
}

// GenerateBatch 批量生成邻域解，跳过未能产出候选的尝试
func (n *NeighborhoodGenerator) GenerateBatch(current *Solution, count int) []*Solution {
	results := make([]*Solution, 0, count)
	for i := 0; i < count; i++ {
		if neighbor := n.GenerateNeighbor(current); neighbor != nil {
			results = append(results, neighbor)
		}
	}
	return results
}
