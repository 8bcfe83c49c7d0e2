// Package e2e 端到端验证：按完整月度排班对规约 §8 中列出的场景与不变量
// 逐一复现，贯穿日历解析、花名册构建、历史投影、求解与校验整条链路。
package e2e

import (
	"context"
	"fmt"
	"testing"

	"github.com/paiban/roster/pkg/calendar"
	"github.com/paiban/roster/pkg/errors"
	"github.com/paiban/roster/pkg/history"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler"
	"github.com/paiban/roster/pkg/validator"
)

func buildEmployees(n int) []model.Employee {
	employees := make([]model.Employee, n)
	for i := 0; i < n; i++ {
		employees[i] = model.Employee{
			Code:  fmt.Sprintf("E%02d", i+1),
			Name:  fmt.Sprintf("员工%02d", i+1),
			Group: "A",
		}
	}
	return employees
}

func assertNoViolations(t *testing.T, schedule *model.Schedule, employees []model.Employee) {
	t.Helper()
	v := validator.NewValidator()
	violations := v.Validate(schedule.Days, employees, nil, employees[0].Code)
	if len(violations) != 0 {
		t.Errorf("期望零违反，实际 %d 条: %+v", len(violations), violations)
	}
}

// TestScenario_NoHistoryEmptyPins 复现"无历史、无锁定"场景：anchor 员工从相位 0
// 起按 DAY/SLEEP/SLEEP 循环，夜班每班恰好一名带班。
func TestScenario_NoHistoryEmptyPins(t *testing.T) {
	employees := buildEmployees(17)
	req := scheduler.Request{
		Month:            "2026-05",
		Group:            calendar.GroupA,
		Employees:        employees,
		AnchorEmployeeID: employees[0].Code,
		MaxTimeSeconds:   5,
		Seed:             42,
	}

	schedule, err := scheduler.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	assertNoViolations(t, schedule, employees)

	anchorID := employees[0].Code
	for i, day := range schedule.Days {
		want := history.RequiredAnchorShift(i, 0)
		got := day.ByEmployee(anchorID)
		if got == nil {
			t.Fatalf("第 %d 个工作日缺少 anchor 员工分配", i)
		}
		if got.Shift != want {
			t.Errorf("第 %d 个工作日 anchor 班次应为 %s，实际 %s", i, want, got.Shift)
		}

		for _, night := range model.NightShiftKinds() {
			assigned := day.ByShift(night)
			chiefCount := 0
			for _, a := range assigned {
				if a.IsChief {
					chiefCount++
				}
			}
			if len(assigned) > 0 && chiefCount != 1 {
				t.Errorf("第 %d 天 %s 班应恰好一名带班，实际 %d", i, night, chiefCount)
			}
		}
	}

	if schedule.Statistics == nil || schedule.Statistics.HasPreviousData {
		t.Error("无历史场景下 has_previous_data 应为 false")
	}
}

// TestScenario_HistoryContinuation 上月以 anchor DAY 结尾，新月应从 SLEEP,SLEEP,DAY 开始
func TestScenario_HistoryContinuation(t *testing.T) {
	employees := buildEmployees(17)
	anchorID := employees[0].Code

	prevMonth := []model.DayRecord{
		{Date: "2026-04-28", Records: []model.Assignment{{EmployeeID: anchorID, Date: "2026-04-28", Shift: model.ShiftSleep}}},
		{Date: "2026-05-01", Records: []model.Assignment{{EmployeeID: anchorID, Date: "2026-05-01", Shift: model.ShiftDay}}},
	}

	req := scheduler.Request{
		Month:                 "2026-06",
		Group:                 calendar.GroupA,
		Employees:             employees,
		AnchorEmployeeID:      anchorID,
		PreviousMonthSchedule: prevMonth,
		MaxTimeSeconds:        5,
		Seed:                  7,
	}

	schedule, err := scheduler.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	assertNoViolations(t, schedule, employees)

	want := []model.ShiftKind{model.ShiftSleep, model.ShiftSleep, model.ShiftDay}
	for i := 0; i < len(want) && i < len(schedule.Days); i++ {
		got := schedule.Days[i].ByEmployee(anchorID)
		if got == nil || got.Shift != want[i] {
			t.Errorf("第 %d 个工作日期望 %s，实际 %v", i, want[i], got)
		}
	}
}

// TestScenario_HistoryContinuationEdge 上月以 DAY, SLEEP, SLEEP 结尾，
// 新月应从 DAY, SLEEP, SLEEP 开始（相位归零）
func TestScenario_HistoryContinuationEdge(t *testing.T) {
	employees := buildEmployees(17)
	anchorID := employees[0].Code

	prevMonth := []model.DayRecord{
		{Date: "2026-04-25", Records: []model.Assignment{{EmployeeID: anchorID, Date: "2026-04-25", Shift: model.ShiftDay}}},
		{Date: "2026-04-28", Records: []model.Assignment{{EmployeeID: anchorID, Date: "2026-04-28", Shift: model.ShiftSleep}}},
		{Date: "2026-05-01", Records: []model.Assignment{{EmployeeID: anchorID, Date: "2026-05-01", Shift: model.ShiftSleep}}},
	}

	req := scheduler.Request{
		Month:                 "2026-06",
		Group:                 calendar.GroupA,
		Employees:             employees,
		AnchorEmployeeID:      anchorID,
		PreviousMonthSchedule: prevMonth,
		MaxTimeSeconds:        5,
		Seed:                  7,
	}

	schedule, err := scheduler.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}

	want := []model.ShiftKind{model.ShiftDay, model.ShiftSleep, model.ShiftSleep}
	for i := 0; i < len(want) && i < len(schedule.Days); i++ {
		got := schedule.Days[i].ByEmployee(anchorID)
		if got == nil || got.Shift != want[i] {
			t.Errorf("第 %d 个工作日期望 %s，实际 %v", i, want[i], got)
		}
	}
}

// TestScenario_PinHonored 锁定一名带班员工在某工作日上 LATE_NIGHT，输出中必须保留
func TestScenario_PinHonored(t *testing.T) {
	employees := buildEmployees(17)

	base := scheduler.Request{
		Month:            "2026-07",
		Group:            calendar.GroupA,
		Employees:        employees,
		AnchorEmployeeID: employees[0].Code,
		MaxTimeSeconds:   5,
		Seed:             11,
	}
	probe, err := scheduler.Run(context.Background(), base)
	if err != nil {
		t.Fatalf("探测求解失败: %v", err)
	}
	if len(probe.WorkDays) < 5 {
		t.Skip("本月工作日不足 5 个，跳过锁定场景")
	}
	pinDate := probe.WorkDays[4]
	pinEmployee := employees[2].Code // 花名册第 3 位，带班资格

	withPin := base
	withPin.Pins = []model.PinnedAssignment{{EmployeeID: pinEmployee, Date: pinDate, Shift: model.ShiftLateNight}}

	schedule, err := scheduler.Run(context.Background(), withPin)
	if err != nil {
		t.Fatalf("带锁定求解失败: %v", err)
	}
	assertNoViolations(t, schedule, employees)

	day := schedule.DayByDate(pinDate)
	if day == nil {
		t.Fatalf("找不到锁定日期 %s", pinDate)
	}
	assignment := day.ByEmployee(pinEmployee)
	if assignment == nil || assignment.Shift != model.ShiftLateNight {
		t.Errorf("锁定员工 %s 在 %s 应为 LATE_NIGHT，实际 %+v", pinEmployee, pinDate, assignment)
	}
	if !assignment.IsPinned {
		t.Error("锁定分配的 IsPinned 标志应为 true")
	}
}

// TestScenario_AvoidanceRespected 互斥组内两名成员任何一天都不应共享同一班次
func TestScenario_AvoidanceRespected(t *testing.T) {
	employees := buildEmployees(17)
	group := model.AvoidanceGroup{Name: "不可共班", EmployeeIDs: []string{employees[6].Code, employees[7].Code}}

	req := scheduler.Request{
		Month:            "2026-08",
		Group:            calendar.GroupA,
		Employees:        employees,
		AvoidanceGroups:  []model.AvoidanceGroup{group},
		AnchorEmployeeID: employees[0].Code,
		MaxTimeSeconds:   5,
		Seed:             3,
	}

	schedule, err := scheduler.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	assertNoViolations(t, schedule, employees)

	for _, day := range schedule.Days {
		a := day.ByEmployee(group.EmployeeIDs[0])
		b := day.ByEmployee(group.EmployeeIDs[1])
		if a != nil && b != nil && a.Shift == b.Shift {
			t.Errorf("%s: 互斥组成员 %s 与 %s 同为 %s", day.Date, a.EmployeeID, b.EmployeeID, a.Shift)
		}
	}
}

// TestScenario_Infeasible 把全部六名带班锁定到同一天 DAY，夜班将无人带班，应返回 INFEASIBLE
func TestScenario_Infeasible(t *testing.T) {
	employees := buildEmployees(17)

	probe, err := scheduler.Run(context.Background(), scheduler.Request{
		Month:            "2026-09",
		Group:            calendar.GroupA,
		Employees:        employees,
		AnchorEmployeeID: employees[0].Code,
		MaxTimeSeconds:   5,
	})
	if err != nil {
		t.Fatalf("探测求解失败: %v", err)
	}
	firstDay := probe.WorkDays[0]

	var pins []model.PinnedAssignment
	for i := 0; i < 6; i++ {
		pins = append(pins, model.PinnedAssignment{EmployeeID: employees[i].Code, Date: firstDay, Shift: model.ShiftDay})
	}

	_, err = scheduler.Run(context.Background(), scheduler.Request{
		Month:            "2026-09",
		Group:            calendar.GroupA,
		Employees:        employees,
		AnchorEmployeeID: employees[0].Code,
		Pins:             pins,
		MaxTimeSeconds:   5,
	})
	if err == nil {
		t.Fatal("期望 INFEASIBLE 错误，实际求解成功")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.CodeInfeasible {
		t.Errorf("期望 INFEASIBLE 错误码，实际: %v", err)
	}
}

// TestIdempotence_SameSeedSameOutput 相同输入与种子必须产出相同输出
func TestIdempotence_SameSeedSameOutput(t *testing.T) {
	employees := buildEmployees(17)
	req := scheduler.Request{
		Month:            "2026-10",
		Group:            calendar.GroupB,
		Employees:        employees,
		AnchorEmployeeID: employees[0].Code,
		MaxTimeSeconds:   5,
		Seed:             99,
	}

	first, err := scheduler.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("第一次求解失败: %v", err)
	}
	second, err := scheduler.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("第二次求解失败: %v", err)
	}

	if len(first.Days) != len(second.Days) {
		t.Fatalf("两次求解的天数不一致: %d vs %d", len(first.Days), len(second.Days))
	}
	for i := range first.Days {
		a, b := first.Days[i], second.Days[i]
		if len(a.Records) != len(b.Records) {
			t.Fatalf("第 %d 天记录数不一致", i)
			continue
		}
		for _, rec := range a.Records {
			other := b.ByEmployee(rec.EmployeeID)
			if other == nil || other.Shift != rec.Shift {
				t.Errorf("第 %d 天员工 %s 的班次在两次求解间不一致", i, rec.EmployeeID)
			}
		}
	}
	if first.SeedUsed != second.SeedUsed {
		t.Errorf("种子应保持一致: %d vs %d", first.SeedUsed, second.SeedUsed)
	}
}
