// Package solver 实现构造阶段求解器：按锁定、anchor 循环、带班席位、
// 定员的优先顺序贪心填充决策张量，产出一个满足全部硬约束（或证明不可行）
// 的初始解，再交给 optimizer 包做软惩罚方向的局部搜索。
package solver

import (
	gocontext "context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/paiban/roster/pkg/errors"
	"github.com/paiban/roster/pkg/history"
	"github.com/paiban/roster/pkg/logger"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// Request 求解请求：日历已解析的工作日、花名册、避让组、历史投影、锁定分配与随机种子
type Request struct {
	Group            string
	Month            string
	WorkDays         []time.Time
	Employees        []model.Employee
	AvoidanceGroups  []model.AvoidanceGroup
	AnchorEmployeeID string
	Projection       history.Projection
	Pins             []model.PinnedAssignment
	Seed             int64
	MaxTimeSeconds   float64
}

// rngSource 适配 math/rand.Rand 到 constraint.RandomSource
type rngSource struct{ r *rand.Rand }

func (s rngSource) Float64() float64 { return s.r.Float64() }

// Solve 执行构造阶段求解，返回决策张量上下文与最终状态；失败时上下文为 nil 并附带错误
func Solve(goCtx gocontext.Context, req Request) (*constraint.Context, model.SolverStatus, error) {
	log := logger.NewSolverLogger()
	log.SolveStart(req.Group, req.Month, len(req.Employees), len(req.WorkDays), req.Seed)
	start := time.Now()

	if len(req.WorkDays) == 0 {
		return constraint.NewContext(nil, req.Employees, req.AvoidanceGroups, nil), model.StatusOptimal, nil
	}

	for _, pin := range req.Pins {
		if pin.EmployeeID == req.AnchorEmployeeID && pin.Shift != model.ShiftDay && pin.Shift != model.ShiftSleep {
			return nil, model.StatusInfeasible, errors.PinInvalid(pin.EmployeeID, pin.Date, "anchor 员工只能被锁定为 DAY 或 SLEEP")
		}
	}

	rng := rand.New(rand.NewSource(req.Seed))
	ctx := constraint.NewContext(req.WorkDays, req.Employees, req.AvoidanceGroups, rngSource{rng})
	ctx.AnchorEmployeeID = req.AnchorEmployeeID
	ctx.AnchorPhaseOffset = req.Projection.AnchorPhaseOffset
	ctx.PrevCounts = req.Projection.PrevCounts

	for _, pin := range req.Pins {
		ctx.SetPin(pin.EmployeeID, pin.Date, pin.Shift)
	}

	anchorIdx := ctx.EmployeeIndex(req.AnchorEmployeeID)

	// 每人累计已分配班次数，驱动公平轮转
	totalCount := make([]int, len(req.Employees))

	for d := range req.WorkDays {
		date := ctx.DateAt(d)

		// 1. 先落实本日全部锁定分配
		for _, pin := range req.Pins {
			if pin.Date != date {
				continue
			}
			ei := ctx.EmployeeIndex(pin.EmployeeID)
			if ei < 0 {
				continue
			}
			ctx.Assign(ei, d, pin.Shift)
			totalCount[ei]++
		}

		// 2. anchor 循环（锁定日由锁定值接管）
		if anchorIdx >= 0 && !ctx.IsPinned(req.AnchorEmployeeID, date) {
			required := history.RequiredAnchorShift(d, ctx.AnchorPhaseOffset)
			ctx.Assign(anchorIdx, d, required)
			totalCount[anchorIdx]++
		}

		if err := fillDay(ctx, d, date, totalCount, rng); err != nil {
			if time.Since(start).Seconds() > req.MaxTimeSeconds && req.MaxTimeSeconds > 0 {
				log.SolveComplete(string(model.StatusTimeout), time.Since(start), 0, req.Seed)
				return nil, model.StatusTimeout, errors.SolveTimeout(req.MaxTimeSeconds)
			}
			log.SolveComplete(string(model.StatusInfeasible), time.Since(start), 0, req.Seed)
			return nil, model.StatusInfeasible, errors.Infeasible(err.Error())
		}

		if req.MaxTimeSeconds > 0 && time.Since(start).Seconds() > req.MaxTimeSeconds {
			log.SolveComplete(string(model.StatusTimeout), time.Since(start), 0, req.Seed)
			return nil, model.StatusTimeout, errors.SolveTimeout(req.MaxTimeSeconds)
		}
	}

	manager := BuildManager()
	feasible, violations := manager.IsFeasible(ctx)
	if !feasible {
		reason := "未知约束冲突"
		if len(violations) > 0 {
			reason = violations[0].Message
		}
		log.SolveComplete(string(model.StatusInfeasible), time.Since(start), 0, req.Seed)
		return nil, model.StatusInfeasible, errors.Infeasible(reason)
	}

	penalty := manager.TotalSoftPenalty(ctx)
	log.SolveComplete(string(model.StatusFeasible), time.Since(start), float64(penalty), req.Seed)
	return ctx, model.StatusFeasible, nil
}

// fillDay 为一个工作日填满剩余的班次定员，尊重锁定、anchor、互斥组、
// 间隔与连续性约束；并为每个夜班预先指派一名带班资格员工。
func fillDay(ctx *constraint.Context, d int, date string, totalCount []int, rng *rand.Rand) error {
	// 按当前负载升序排列候选人；负载相同的员工之间用该 seed 派生的随机
	// 抖动打破顺序，避免花名册靠前的员工在平手时总被优先填充。
	type loadEntry struct {
		index  int
		jitter float64
	}
	entries := make([]loadEntry, len(ctx.Employees))
	for i := range entries {
		entries[i] = loadEntry{index: i, jitter: rng.Float64()}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ci, cj := totalCount[entries[i].index], totalCount[entries[j].index]
		if ci != cj {
			return ci < cj
		}
		return entries[i].jitter < entries[j].jitter
	})
	employeesByLoad := make([]int, len(entries))
	for i, e := range entries {
		employeesByLoad[i] = e.index
	}

	assign := func(shift model.ShiftKind, need int, chiefOnly bool) error {
		filled := 0
		for _, ei := range employeesByLoad {
			if filled >= need {
				break
			}
			if ctx.ShiftAt(ei, d) != model.ShiftNone {
				continue
			}
			emp := ctx.Employees[ei]
			if emp.Code == ctx.AnchorEmployeeID {
				continue
			}
			if chiefOnly && !emp.IsChief {
				continue
			}
			if !canPlace(ctx, ei, d, shift) {
				continue
			}
			ctx.Assign(ei, d, shift)
			totalCount[ei]++
			filled++
		}
		if filled < need {
			return fmt.Errorf("%s 的 %s 班只填满 %d/%d 人", date, shift, filled, need)
		}
		return nil
	}

	// 先为每个夜班指派一名带班资格员工占据该班次（并记为带班席位）
	for _, shift := range model.NightShiftKinds() {
		if ctx.ChiefAt(d, shift) != "" {
			continue // 锁定分配已经把一名带班资格员工放在这里的情况需另行核实
		}
		if err := assign(shift, 1, true); err != nil {
			return err
		}
	}

	// 核验/登记带班席位：取该夜班上第一个带班资格员工作为带班人
	for _, shift := range model.NightShiftKinds() {
		if ctx.ChiefAt(d, shift) != "" {
			continue
		}
		for _, ei := range ctx.EmployeesOnShift(d, shift) {
			if ctx.Employees[ei].IsChief {
				ctx.SetChief(d, shift, ctx.Employees[ei].Code)
				break
			}
		}
		if ctx.ChiefAt(d, shift) == "" {
			return fmt.Errorf("%s 的 %s 班找不到带班资格员工", date, shift)
		}
	}

	// 补齐各班次剩余定员
	for _, shift := range model.WorkingShiftKinds() {
		want := model.SlotCount(shift)
		have := len(ctx.EmployeesOnShift(d, shift))
		if have < want {
			if err := assign(shift, want-have, false); err != nil {
				return err
			}
		}
	}

	return nil
}

// canPlace 检查把 employeeIdx 放到 (dayIdx, shift) 是否违反已知的硬约束
func canPlace(ctx *constraint.Context, employeeIdx, dayIdx int, shift model.ShiftKind) bool {
	emp := ctx.Employees[employeeIdx]

	if emp.Code != "" {
		if g, ok := avoidanceGroupOf(ctx, emp.Code); ok {
			for _, otherID := range g.EmployeeIDs {
				if otherID == emp.Code {
					continue
				}
				oi := ctx.EmployeeIndex(otherID)
				if oi >= 0 && ctx.ShiftAt(oi, dayIdx) == shift {
					return false
				}
			}
		}
	}

	if shift == model.ShiftMiniNight || shift == model.ShiftLateNight {
		if dayIdx > 0 && ctx.ShiftAt(employeeIdx, dayIdx-1) == shift {
			return false
		}
	}

	if shift == model.ShiftLateNight {
		for back := dayIdx - 1; back >= 0 && back > dayIdx-4; back-- {
			if ctx.ShiftAt(employeeIdx, back) == model.ShiftLateNight {
				return false
			}
		}
	}

	if shift == model.ShiftDay && emp.Code != ctx.AnchorEmployeeID {
		if dayIdx > 0 && ctx.ShiftAt(employeeIdx, dayIdx-1) == model.ShiftDay {
			return false
		}
	}

	return true
}

func avoidanceGroupOf(ctx *constraint.Context, employeeID string) (model.AvoidanceGroup, bool) {
	for _, g := range ctx.AvoidanceGroups {
		for _, id := range g.EmployeeIDs {
			if id == employeeID {
				return g, true
			}
		}
	}
	return model.AvoidanceGroup{}, false
}
