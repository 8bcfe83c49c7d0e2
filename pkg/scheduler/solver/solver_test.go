package solver

import (
	gocontext "context"
	"testing"
	"time"

	"github.com/paiban/roster/pkg/model"
)

func buildWorkDays(n int) []time.Time {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func buildRoster(n int) []model.Employee {
	out := make([]model.Employee, n)
	for i := 0; i < n; i++ {
		out[i] = model.Employee{
			Code:            "e" + string(rune('0'+i/10)) + string(rune('0'+i%10)),
			DisplayPosition: i,
			IsChief:         i < 6,
		}
	}
	return out
}

func TestSolve_产出可行解(t *testing.T) {
	req := Request{
		Group:            "A",
		Month:            "2026-08",
		WorkDays:         buildWorkDays(10),
		Employees:        buildRoster(17),
		AnchorEmployeeID: "e00",
		Seed:             42,
		MaxTimeSeconds:   5,
	}

	ctx, status, err := Solve(gocontext.Background(), req)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	if status != model.StatusFeasible && status != model.StatusOptimal {
		t.Fatalf("期望可行解，得到状态 %s", status)
	}

	for d := 0; d < ctx.NumDays(); d++ {
		for _, shift := range model.WorkingShiftKinds() {
			got := len(ctx.EmployeesOnShift(d, shift))
			want := model.SlotCount(shift)
			if got != want {
				t.Errorf("第 %d 天 %s 班人数 = %d, 期望 %d", d, shift, got, want)
			}
		}
		for _, shift := range model.NightShiftKinds() {
			if ctx.ChiefAt(d, shift) == "" {
				t.Errorf("第 %d 天 %s 班缺少带班", d, shift)
			}
		}
	}
}

func TestSolve_遵守锁定分配(t *testing.T) {
	req := Request{
		WorkDays:         buildWorkDays(5),
		Employees:        buildRoster(17),
		AnchorEmployeeID: "e00",
		Pins: []model.PinnedAssignment{
			{EmployeeID: "e06", Date: "2026-08-03", Shift: model.ShiftLateNight},
		},
		Seed:           7,
		MaxTimeSeconds: 5,
	}

	ctx, status, err := Solve(gocontext.Background(), req)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	if status == model.StatusInfeasible {
		t.Fatal("锁定分配本身合规时不应判定为不可行")
	}

	ei := ctx.EmployeeIndex("e06")
	di := ctx.DayIndex("2026-08-03")
	if ctx.ShiftAt(ei, di) != model.ShiftLateNight {
		t.Error("锁定分配未被保留")
	}
}

func TestSolve_anchor员工遵守周期(t *testing.T) {
	req := Request{
		WorkDays:         buildWorkDays(4),
		Employees:        buildRoster(17),
		AnchorEmployeeID: "e00",
		Seed:             1,
		MaxTimeSeconds:   5,
	}

	ctx, _, err := Solve(gocontext.Background(), req)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}

	anchorIdx := ctx.EmployeeIndex("e00")
	for d := 0; d < ctx.NumDays(); d++ {
		shift := ctx.ShiftAt(anchorIdx, d)
		if shift != model.ShiftDay && shift != model.ShiftSleep {
			t.Errorf("anchor 第 %d 天被分配 %s，超出 DAY/SLEEP 范围", d, shift)
		}
	}
}

func TestSolve_anchor锁定为夜班时返回不可行(t *testing.T) {
	req := Request{
		WorkDays:         buildWorkDays(2),
		Employees:        buildRoster(17),
		AnchorEmployeeID: "e00",
		Pins: []model.PinnedAssignment{
			{EmployeeID: "e00", Date: "2026-08-01", Shift: model.ShiftLateNight},
		},
		Seed:           1,
		MaxTimeSeconds: 5,
	}

	_, status, err := Solve(gocontext.Background(), req)
	if err == nil || status != model.StatusInfeasible {
		t.Fatal("anchor 被锁定为夜班应立即判定为不可行")
	}
}

func TestSolve_空日历(t *testing.T) {
	req := Request{Employees: buildRoster(17), AnchorEmployeeID: "e00"}
	ctx, status, err := Solve(gocontext.Background(), req)
	if err != nil {
		t.Fatalf("空日历不应出错: %v", err)
	}
	if status != model.StatusOptimal {
		t.Errorf("空日历期望 OPTIMAL，得到 %s", status)
	}
	if ctx.NumDays() != 0 {
		t.Error("空日历的工作日数应为 0")
	}
}
