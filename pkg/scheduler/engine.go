// Package scheduler 串联日历解析、花名册校验、历史投影、构造阶段求解与
// 局部搜索优化，产出一份完整的月度排班结果。这是 HTTP 处理器与
// cmd/paibanctl 共用的单一入口。
package scheduler

import (
	gocontext "context"
	"fmt"
	"time"

	"github.com/paiban/roster/pkg/calendar"
	"github.com/paiban/roster/pkg/errors"
	"github.com/paiban/roster/pkg/history"
	"github.com/paiban/roster/pkg/logger"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster"
	"github.com/paiban/roster/pkg/scheduler/constraint"
	"github.com/paiban/roster/pkg/scheduler/optimizer"
	"github.com/paiban/roster/pkg/scheduler/solver"
	"github.com/paiban/roster/pkg/stats"
)

// Request 一次完整排班请求的外部输入：日历与花名册尚未解析
type Request struct {
	Month                 string // YYYY-MM
	Group                 calendar.Group
	Employees             []model.Employee
	AvoidanceGroups       []model.AvoidanceGroup
	Pins                  []model.PinnedAssignment
	PreviousMonthSchedule []model.DayRecord
	FirstWorkDayOverride  int // 月内日序号，0 表示未提供
	Seed                  int64
	AnchorDate            time.Time
	AnchorGroup           calendar.Group
	AnchorEmployeeID      string
	MaxTimeSeconds        float64
}

// Run 解析工作日历，构建花名册，投影跨月历史，执行构造阶段求解，
// 再交给局部搜索优化器做软惩罚方向的打磨，最终产出一份完整排班结果。
func Run(goCtx gocontext.Context, req Request) (*model.Schedule, error) {
	r, err := roster.New(req.Employees, req.AvoidanceGroups)
	if err != nil {
		return nil, err
	}

	year, month, err := parseMonth(req.Month)
	if err != nil {
		return nil, err
	}

	calReq := calendar.Request{
		Year:        year,
		Month:       month,
		Group:       req.Group,
		AnchorDate:  req.AnchorDate,
		AnchorGroup: req.AnchorGroup,
	}
	if req.FirstWorkDayOverride > 0 {
		loc := req.AnchorDate.Location()
		if loc == nil {
			loc = time.UTC
		}
		calReq.FirstWorkDayOverride = time.Date(year, month, req.FirstWorkDayOverride, 0, 0, 0, 0, loc)
	}

	workDays, err := calendar.Resolve(calReq)
	if err != nil {
		return nil, err
	}

	projection := history.Project(req.PreviousMonthSchedule, req.AnchorEmployeeID)

	seed := req.Seed
	if seed == 0 {
		seed = deriveSeed(req.Month, string(req.Group))
	}

	solveReq := solver.Request{
		Group:            string(req.Group),
		Month:            req.Month,
		WorkDays:         workDays,
		Employees:        r.Employees(),
		AvoidanceGroups:  r.AvoidanceGroups(),
		AnchorEmployeeID: req.AnchorEmployeeID,
		Projection:       projection,
		Pins:             req.Pins,
		Seed:             seed,
		MaxTimeSeconds:   req.MaxTimeSeconds,
	}

	solved, status, err := solver.Solve(goCtx, solveReq)
	if err != nil {
		return nil, err
	}

	manager := solver.BuildManager()
	final := polish(goCtx, solved, manager, req.MaxTimeSeconds)

	days := extractDays(final, workDays)
	analyzer := stats.NewAnalyzer()
	statistics := analyzer.Analyze(days, r.Employees(), projection.PrevCounts, projection.HasPreviousData, seed)

	workDayStrings := make([]string, len(workDays))
	for i, d := range workDays {
		workDayStrings[i] = d.Format("2006-01-02")
	}

	return &model.Schedule{
		Month:      req.Month,
		Group:      string(req.Group),
		WorkDays:   workDayStrings,
		Days:       days,
		Statistics: statistics,
		Status:     status,
		SeedUsed:   seed,
	}, nil
}

// polish 在构造阶段解的基础上运行局部搜索，超时或无改进时原样返回
func polish(goCtx gocontext.Context, ctx *constraint.Context, manager *constraint.Manager, maxTimeSeconds float64) *constraint.Context {
	if ctx == nil || ctx.NumDays() == 0 {
		return ctx
	}

	budget := maxTimeSeconds
	if budget <= 0 {
		budget = 30
	}
	optCtx, cancel := gocontext.WithTimeout(goCtx, time.Duration(budget*float64(time.Second)))
	defer cancel()

	evaluator := &optimizer.ManagerEvaluator{Manager: manager}
	initial := optimizer.NewSolution(ctx, evaluator)
	config := optimizer.DefaultOptConfig()
	searcher := optimizer.NewIslandOptimizer(config, evaluator, config.ParallelWorkers)

	best, err := searcher.OptimizeIslands(optCtx, initial)
	if err != nil || best == nil || !best.Feasible {
		logger.Warn().Err(err).Msg("局部搜索未产出更优可行解，沿用构造阶段结果")
		return ctx
	}
	return best.Context
}

// extractDays 从已求解的决策张量按工作日顺序与花名册展示顺序物化日记录
func extractDays(ctx *constraint.Context, workDays []time.Time) []model.DayRecord {
	if ctx == nil {
		return nil
	}
	days := make([]model.DayRecord, len(workDays))
	for d, wd := range workDays {
		date := ctx.DateAt(d)
		records := make([]model.Assignment, 0, ctx.NumEmployees())
		for e, emp := range ctx.Employees {
			shift := ctx.ShiftAt(e, d)
			if shift == model.ShiftNone || !shift.IsWorkingShift() {
				continue
			}
			records = append(records, model.Assignment{
				EmployeeID: emp.Code,
				Date:       date,
				Shift:      shift,
				IsChief:    shift.IsNightShift() && ctx.ChiefAt(d, shift) == emp.Code,
				IsPinned:   ctx.IsPinned(emp.Code, date),
			})
		}
		days[d] = model.DayRecord{Date: date, DayOfWeek: wd.Weekday(), Records: records}
	}
	return days
}

func parseMonth(month string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, 0, errors.InvalidInput("month", fmt.Sprintf("期望 YYYY-MM 格式，得到 %q", month))
	}
	return t.Year(), t.Month(), nil
}

// deriveSeed 在调用方未指定种子时，从 (月份, 班组) 派生一个确定性种子，
// 使相同输入总是产出相同排班（规约 §8 幂等性要求）。
func deriveSeed(month, group string) int64 {
	h := int64(0)
	for _, r := range month + group {
		h = h*31 + int64(r)
	}
	if h < 0 {
		h = -h
	}
	return h
}
