package history

import (
	"testing"

	"github.com/paiban/roster/pkg/model"
)

func TestProject_无历史时相位为零(t *testing.T) {
	p := Project(nil, "anchor")
	if p.HasPreviousData {
		t.Error("空历史应标记 HasPreviousData = false")
	}
	if p.AnchorPhaseOffset != 0 {
		t.Errorf("无历史相位应为 0，得到 %d", p.AnchorPhaseOffset)
	}
}

func TestProject_上月结束于DAY(t *testing.T) {
	prev := []model.DayRecord{
		{Date: "2026-01-01", Records: []model.Assignment{{EmployeeID: "anchor", Shift: model.ShiftSleep}}},
		{Date: "2026-01-04", Records: []model.Assignment{{EmployeeID: "anchor", Shift: model.ShiftDay}}},
	}

	p := Project(prev, "anchor")
	if p.AnchorPhaseOffset != 1 {
		t.Errorf("上月结束于 DAY 时相位应为 1，得到 %d", p.AnchorPhaseOffset)
	}
}

func TestProject_上月结束于两个SLEEP(t *testing.T) {
	prev := []model.DayRecord{
		{Date: "2026-01-01", Records: []model.Assignment{{EmployeeID: "anchor", Shift: model.ShiftSleep}}},
		{Date: "2026-01-04", Records: []model.Assignment{{EmployeeID: "anchor", Shift: model.ShiftSleep}}},
	}

	p := Project(prev, "anchor")
	if p.AnchorPhaseOffset != 0 {
		t.Errorf("连续两个 SLEEP 后相位应为 0，得到 %d", p.AnchorPhaseOffset)
	}
}

func TestProject_DAY后SLEEP相位为二(t *testing.T) {
	prev := []model.DayRecord{
		{Date: "2026-01-01", Records: []model.Assignment{{EmployeeID: "anchor", Shift: model.ShiftDay}}},
		{Date: "2026-01-04", Records: []model.Assignment{{EmployeeID: "anchor", Shift: model.ShiftSleep}}},
	}

	p := Project(prev, "anchor")
	if p.AnchorPhaseOffset != 2 {
		t.Errorf("DAY 后 SLEEP 相位应为 2，得到 %d", p.AnchorPhaseOffset)
	}
}

func TestProject_anchor缺席视为无历史(t *testing.T) {
	prev := []model.DayRecord{
		{Date: "2026-01-01", Records: []model.Assignment{{EmployeeID: "other", Shift: model.ShiftDay}}},
	}

	p := Project(prev, "anchor")
	if p.AnchorPhaseOffset != 0 {
		t.Errorf("anchor 缺席应默认相位 0，得到 %d", p.AnchorPhaseOffset)
	}
}

func TestRequiredAnchorShift(t *testing.T) {
	tests := []struct {
		dayIndex    int
		phaseOffset int
		expected    model.ShiftKind
	}{
		{0, 0, model.ShiftDay},
		{1, 0, model.ShiftSleep},
		{2, 0, model.ShiftSleep},
		{3, 0, model.ShiftDay},
		{0, 1, model.ShiftSleep},
		{2, 1, model.ShiftDay},
	}

	for _, tt := range tests {
		if got := RequiredAnchorShift(tt.dayIndex, tt.phaseOffset); got != tt.expected {
			t.Errorf("RequiredAnchorShift(%d, %d) = %s, expected %s", tt.dayIndex, tt.phaseOffset, got, tt.expected)
		}
	}
}

func TestProject_上月计数统计(t *testing.T) {
	prev := []model.DayRecord{
		{Date: "2026-01-01", Records: []model.Assignment{
			{EmployeeID: "e1", Shift: model.ShiftDay},
			{EmployeeID: "e2", Shift: model.ShiftLateNight},
		}},
		{Date: "2026-01-04", Records: []model.Assignment{
			{EmployeeID: "e1", Shift: model.ShiftDay},
		}},
	}

	p := Project(prev, "anchor")
	if p.PrevCounts["e1"][model.ShiftDay] != 2 {
		t.Errorf("e1 的 DAY 计数应为 2，得到 %d", p.PrevCounts["e1"][model.ShiftDay])
	}
	if p.PrevCounts["e2"][model.ShiftLateNight] != 1 {
		t.Errorf("e2 的 LATE_NIGHT 计数应为 1，得到 %d", p.PrevCounts["e2"][model.ShiftLateNight])
	}
}
