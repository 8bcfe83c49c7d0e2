package optimizer

import (
	gocontext "context"
	"testing"
	"time"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler/constraint"
	"github.com/paiban/roster/pkg/scheduler/constraint/builtin"
)

func buildDays(n int) []time.Time {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func buildEmployees(n int) []model.Employee {
	out := make([]model.Employee, n)
	for i := 0; i < n; i++ {
		out[i] = model.Employee{Code: "e" + string(rune('0'+i/10)) + string(rune('0'+i%10)), DisplayPosition: i, IsChief: i < 6}
	}
	return out
}

// rotation 是长度 17 的循环班次序列（6 DAY、5 SLEEP、3 MINI_NIGHT、3 LATE_NIGHT）：
// 相邻两格不会同为 DAY、MINI_NIGHT 或 LATE_NIGHT，两格 LATE_NIGHT 的循环距离至少为 5
var rotation = []model.ShiftKind{
	model.ShiftLateNight, model.ShiftDay, model.ShiftSleep, model.ShiftDay, model.ShiftMiniNight, model.ShiftDay,
	model.ShiftLateNight, model.ShiftDay, model.ShiftSleep, model.ShiftDay, model.ShiftMiniNight, model.ShiftSleep,
	model.ShiftLateNight, model.ShiftDay, model.ShiftSleep, model.ShiftMiniNight, model.ShiftSleep,
}

// fillDay 让第 i 人在第 d 天上 rotation[(i+d)%17]：每天定员不变，连续至多 5 天内
// 满足 DAY/LATE_NIGHT 最小间隔与连续夜班禁止；前 6 名带班资格员工每天在
// SLEEP/MINI_NIGHT/LATE_NIGHT 上各恰好一人，并登记为该班带班
func fillDay(ctx *constraint.Context, d int, employees []model.Employee) {
	for i := range employees {
		ctx.Assign(i, d, rotation[(i+d)%len(rotation)])
	}
	for i := 0; i < 6; i++ {
		if shift := ctx.ShiftAt(i, d); shift.IsNightShift() {
			ctx.SetChief(d, shift, employees[i].Code)
		}
	}
}

func buildFeasibleContext(days int) *constraint.Context {
	employees := buildEmployees(17)
	ctx := constraint.NewContext(buildDays(days), employees, nil, nil)
	for d := 0; d < days; d++ {
		fillDay(ctx, d, employees)
	}
	return ctx
}

func buildManager() *constraint.Manager {
	manager := constraint.NewManager()
	builtin.RegisterDefaultConstraints(manager)
	return manager
}

func TestManagerEvaluator_可行解得分不含硬违反惩罚(t *testing.T) {
	ctx := buildFeasibleContext(3)
	evaluator := &ManagerEvaluator{Manager: buildManager()}

	score, feasible, _ := evaluator.Evaluate(ctx)
	if !feasible {
		t.Fatal("合规排班应判定为可行")
	}
	if score >= hardViolationPenalty {
		t.Errorf("可行解得分不应包含硬违反惩罚，得到 %.0f", score)
	}
}

func TestManagerEvaluator_不可行解得分显著更高(t *testing.T) {
	employees := buildEmployees(17)
	ctx := constraint.NewContext(buildDays(1), employees, nil, nil)
	// 只分配 6 人在 DAY，其余班次留空，违反定员
	for i := 0; i < 6; i++ {
		ctx.Assign(i, 0, model.ShiftDay)
	}
	evaluator := &ManagerEvaluator{Manager: buildManager()}

	score, feasible, violations := evaluator.Evaluate(ctx)
	if feasible {
		t.Fatal("定员不符时应判定为不可行")
	}
	if score < hardViolationPenalty {
		t.Errorf("不可行解得分应远高于纯软惩罚, 得到 %.0f", score)
	}
	if len(violations) == 0 {
		t.Error("应返回违反信息")
	}
}

func TestNeighborhoodGenerator_GenerateNeighbor保持定员不变(t *testing.T) {
	ctx := buildFeasibleContext(3)
	evaluator := &ManagerEvaluator{Manager: buildManager()}
	sol := NewSolution(ctx, evaluator)

	gen := NewNeighborhoodGenerator()
	for i := 0; i < 50; i++ {
		neighbor := gen.GenerateNeighbor(sol)
		if neighbor == nil {
			continue
		}
		for d := 0; d < neighbor.Context.NumDays(); d++ {
			for _, shift := range model.WorkingShiftKinds() {
				got := len(neighbor.Context.EmployeesOnShift(d, shift))
				want := model.SlotCount(shift)
				if got != want {
					t.Fatalf("邻域移动后第 %d 天 %s 班人数 = %d, 期望 %d", d, shift, got, want)
				}
			}
		}
	}
}

func TestNeighborhoodGenerator_不改动anchor员工或锁定单元格(t *testing.T) {
	ctx := buildFeasibleContext(2)
	ctx.AnchorEmployeeID = "e00"
	date := ctx.DateAt(0)
	ctx.SetPin("e03", date, ctx.ShiftAt(ctx.EmployeeIndex("e03"), 0))

	evaluator := &ManagerEvaluator{Manager: buildManager()}
	sol := NewSolution(ctx, evaluator)
	gen := NewNeighborhoodGenerator()

	anchorIdx := ctx.EmployeeIndex("e00")
	pinnedIdx := ctx.EmployeeIndex("e03")
	anchorOriginal := make([]model.ShiftKind, ctx.NumDays())
	for d := range anchorOriginal {
		anchorOriginal[d] = ctx.ShiftAt(anchorIdx, d)
	}
	pinnedOriginal := ctx.ShiftAt(pinnedIdx, 0)

	for i := 0; i < 80; i++ {
		neighbor := gen.GenerateNeighbor(sol)
		if neighbor == nil {
			continue
		}
		for d := range anchorOriginal {
			if neighbor.Context.ShiftAt(anchorIdx, d) != anchorOriginal[d] {
				t.Fatalf("anchor 员工第 %d 天被邻域移动改动", d)
			}
		}
		if neighbor.Context.ShiftAt(pinnedIdx, 0) != pinnedOriginal {
			t.Fatal("锁定单元格被邻域移动改动")
		}
	}
}

func TestLocalSearchOptimizer_Optimize不劣化可行解(t *testing.T) {
	ctx := buildFeasibleContext(5)
	evaluator := &ManagerEvaluator{Manager: buildManager()}
	initial := NewSolution(ctx, evaluator)

	config := DefaultOptConfig()
	config.MaxIterations = 100
	config.MaxTime = 2 * time.Second
	config.NeighborhoodSize = 8

	optimizer := NewLocalSearchOptimizer(config, evaluator)
	best, err := optimizer.Optimize(gocontext.Background(), initial)
	if err != nil {
		t.Fatalf("优化不应返回错误: %v", err)
	}
	if best.Score > initial.Score {
		t.Errorf("优化结果不应劣于初始解: best=%.2f initial=%.2f", best.Score, initial.Score)
	}
	if !best.Feasible {
		t.Error("从可行解出发优化结果应保持可行")
	}
}

func TestParallelOptimizer_OptimizeParallel不劣化可行解(t *testing.T) {
	ctx := buildFeasibleContext(5)
	evaluator := &ManagerEvaluator{Manager: buildManager()}
	initial := NewSolution(ctx, evaluator)

	config := DefaultOptConfig()
	config.MaxIterations = 20
	config.MaxTime = 2 * time.Second
	config.NeighborhoodSize = 8
	config.ParallelWorkers = 4

	optimizer := NewParallelOptimizer(config, evaluator)
	best, err := optimizer.OptimizeParallel(gocontext.Background(), initial)
	if err != nil {
		t.Fatalf("并行优化不应返回错误: %v", err)
	}
	if best.Score > initial.Score {
		t.Errorf("并行优化结果不应劣于初始解: best=%.2f initial=%.2f", best.Score, initial.Score)
	}
}

func TestIslandOptimizer_OptimizeIslands不劣化可行解(t *testing.T) {
	ctx := buildFeasibleContext(5)
	evaluator := &ManagerEvaluator{Manager: buildManager()}
	initial := NewSolution(ctx, evaluator)

	config := DefaultOptConfig()
	config.MaxIterations = 20
	config.MaxTime = 2 * time.Second
	config.NeighborhoodSize = 8

	islands := NewIslandOptimizer(config, evaluator, 3)
	best, err := islands.OptimizeIslands(gocontext.Background(), initial)
	if err != nil {
		t.Fatalf("岛屿优化不应返回错误: %v", err)
	}
	if best == nil {
		t.Fatal("岛屿优化应返回一个全局最优解")
	}
	if best.Score > initial.Score {
		t.Errorf("岛屿优化结果不应劣于初始解: best=%.2f initial=%.2f", best.Score, initial.Score)
	}
	if !best.Feasible {
		t.Error("从可行解出发优化结果应保持可行")
	}
}

func TestTabuList_AddAndContains(t *testing.T) {
	tabu := NewTabuList(2)
	tabu.Add(1)
	tabu.Add(2)
	if !tabu.Contains(1) || !tabu.Contains(2) {
		t.Fatal("已添加的键应存在")
	}
	tabu.Add(3)
	if tabu.Contains(1) {
		t.Error("超出容量后最旧的键应被淘汰")
	}
	if !tabu.Contains(3) {
		t.Error("最新添加的键应存在")
	}
}

func TestBoltzmannProbability(t *testing.T) {
	if boltzmannProbability(-1, 10) != 1.0 {
		t.Error("更优解应总是被接受")
	}
	if boltzmannProbability(1, 0) != 0.0 {
		t.Error("温度为 0 时不应接受更差的解")
	}
	p := boltzmannProbability(1, 10)
	if p <= 0 || p >= 1 {
		t.Errorf("温度大于 0 时接受概率应在 (0,1) 区间内, 得到 %f", p)
	}
}
