package constraint

import (
	"testing"
	"time"

	"github.com/paiban/roster/pkg/model"
)

func buildDays(n int) []time.Time {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = start.AddDate(0, 0, i*3)
	}
	return out
}

func buildTestEmployees(n int) []model.Employee {
	out := make([]model.Employee, n)
	for i := 0; i < n; i++ {
		out[i] = model.Employee{Code: "e" + string(rune('0'+i)), DisplayPosition: i, IsChief: i < 6}
	}
	return out
}

func TestContext_AssignAndRead(t *testing.T) {
	days := buildDays(3)
	employees := buildTestEmployees(2)
	ctx := NewContext(days, employees, nil, nil)

	ctx.Assign(0, 1, model.ShiftDay)

	if got := ctx.ShiftAt(0, 1); got != model.ShiftDay {
		t.Errorf("ShiftAt(0,1) = %s, 期望 DAY", got)
	}
	if !ctx.IsAssigned(0, 1, model.ShiftDay) {
		t.Error("IsAssigned 应为 true")
	}
	if ctx.ShiftAt(0, 0) != model.ShiftNone {
		t.Error("未分配单元格应为 NONE")
	}
}

func TestContext_DayIndexAndEmployeeIndex(t *testing.T) {
	days := buildDays(2)
	employees := buildTestEmployees(1)
	ctx := NewContext(days, employees, nil, nil)

	if ctx.DayIndex(days[1].Format("2006-01-02")) != 1 {
		t.Error("DayIndex 应返回 1")
	}
	if ctx.DayIndex("2099-01-01") != -1 {
		t.Error("不存在的日期应返回 -1")
	}
	if ctx.EmployeeIndex("e0") != 0 {
		t.Error("EmployeeIndex 应返回 0")
	}
	if ctx.EmployeeIndex("ghost") != -1 {
		t.Error("不存在的员工应返回 -1")
	}
}

func TestContext_ChiefSeat(t *testing.T) {
	days := buildDays(1)
	ctx := NewContext(days, buildTestEmployees(1), nil, nil)

	if ctx.ChiefAt(0, model.ShiftSleep) != "" {
		t.Error("初始带班席位应为空")
	}
	ctx.SetChief(0, model.ShiftSleep, "e0")
	if ctx.ChiefAt(0, model.ShiftSleep) != "e0" {
		t.Error("设置后应返回 e0")
	}
}

func TestContext_Pins(t *testing.T) {
	ctx := NewContext(buildDays(1), buildTestEmployees(1), nil, nil)

	if ctx.IsPinned("e0", "2026-01-01") {
		t.Error("未设置锁定时应为 false")
	}
	ctx.SetPin("e0", "2026-01-01", model.ShiftLateNight)
	shift, ok := ctx.PinnedShift("e0", "2026-01-01")
	if !ok || shift != model.ShiftLateNight {
		t.Error("锁定分配应可读取")
	}
}

func TestContext_EmployeesOnShift(t *testing.T) {
	ctx := NewContext(buildDays(1), buildTestEmployees(3), nil, nil)
	ctx.Assign(0, 0, model.ShiftDay)
	ctx.Assign(2, 0, model.ShiftDay)
	ctx.Assign(1, 0, model.ShiftSleep)

	onDay := ctx.EmployeesOnShift(0, model.ShiftDay)
	if len(onDay) != 2 {
		t.Errorf("期望 2 人在 DAY 班，得到 %d", len(onDay))
	}
}
