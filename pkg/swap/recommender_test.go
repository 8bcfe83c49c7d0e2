package swap

import (
	"fmt"
	"testing"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/validator"
)

func buildRecords(pairs ...[2]string) []model.Assignment {
	out := make([]model.Assignment, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, model.Assignment{EmployeeID: p[0], Shift: model.ShiftKind(p[1])})
	}
	return out
}

func dayShift(n int, prefix string, shift model.ShiftKind) []model.Assignment {
	out := make([]model.Assignment, n)
	for i := 0; i < n; i++ {
		out[i] = model.Assignment{EmployeeID: fmt.Sprintf("%s%d", prefix, i), Shift: shift}
	}
	return out
}

func TestAdvisor_SlotCountMismatch_从超员班次移出(t *testing.T) {
	var records []model.Assignment
	records = append(records, dayShift(7, "day", model.ShiftDay)...)  // 多 1 人
	records = append(records, dayShift(4, "sleep", model.ShiftSleep)...) // 少 1 人
	records = append(records, dayShift(3, "mini", model.ShiftMiniNight)...)
	records = append(records, dayShift(3, "late", model.ShiftLateNight)...)
	days := []model.DayRecord{{Date: "2026-08-01", Records: records}}
	conflict := validator.Violation{Type: validator.SlotCountMismatch, Date: "2026-08-01", Shift: model.ShiftDay}

	proposal := NewAdvisor().Advise(days, nil, conflict, "2026-08-01")
	if proposal == nil {
		t.Fatal("期望有修复建议")
	}
	if len(proposal.Edits) != 1 {
		t.Fatalf("期望单次移动，得到 %+v", proposal.Edits)
	}
	edit := proposal.Edits[0]
	if edit.FromShift != model.ShiftDay || edit.ToShift != model.ShiftSleep {
		t.Errorf("期望从 DAY 班移至 SLEEP 班，得到 %+v", edit)
	}
}

func TestAdvisor_SlotCountMismatch_锁定员工不被移动(t *testing.T) {
	var records []model.Assignment
	records = append(records, dayShift(7, "day", model.ShiftDay)...)
	records = append(records, dayShift(4, "sleep", model.ShiftSleep)...)
	records = append(records, dayShift(3, "mini", model.ShiftMiniNight)...)
	records = append(records, dayShift(3, "late", model.ShiftLateNight)...)
	for i := range records {
		if records[i].EmployeeID == "day0" {
			records[i].IsPinned = true
		}
	}
	days := []model.DayRecord{{Date: "2026-08-01", Records: records}}
	conflict := validator.Violation{Type: validator.SlotCountMismatch, Date: "2026-08-01", Shift: model.ShiftDay}

	proposal := NewAdvisor().Advise(days, nil, conflict, "2026-08-01")
	if proposal == nil {
		t.Fatal("期望有修复建议")
	}
	for _, edit := range proposal.Edits {
		if edit.EmployeeID == "day0" {
			t.Fatalf("锁定员工不应出现在建议中: %+v", proposal.Edits)
		}
	}
}

func TestAdvisor_SlotCountMismatch_无缺员搭档时不建议(t *testing.T) {
	var records []model.Assignment
	records = append(records, dayShift(7, "day", model.ShiftDay)...) // 多 1 人
	records = append(records, dayShift(5, "sleep", model.ShiftSleep)...)
	records = append(records, dayShift(3, "mini", model.ShiftMiniNight)...)
	records = append(records, dayShift(3, "late", model.ShiftLateNight)...)
	days := []model.DayRecord{{Date: "2026-08-01", Records: records}}
	conflict := validator.Violation{Type: validator.SlotCountMismatch, Date: "2026-08-01", Shift: model.ShiftDay}

	proposal := NewAdvisor().Advise(days, nil, conflict, "2026-08-01")
	if proposal != nil {
		t.Fatalf("没有缺员搭档时不应给出建议，得到 %+v", proposal)
	}
}

func TestAdvisor_ConsecutiveViolation_次日互换打断连续夜班(t *testing.T) {
	days := []model.DayRecord{
		{Date: "2026-08-01", Records: buildRecords([2]string{"e1", "MINI_NIGHT"}, [2]string{"e2", "DAY"})},
		{Date: "2026-08-02", Records: buildRecords([2]string{"e1", "MINI_NIGHT"}, [2]string{"e2", "DAY"})},
		{Date: "2026-08-03", Records: buildRecords([2]string{"e1", "DAY"}, [2]string{"e2", "DAY"})},
	}
	conflict := validator.Violation{Type: validator.ConsecutiveViolation, Date: "2026-08-01", Shift: model.ShiftMiniNight, EmployeeID: "e1"}

	proposal := NewAdvisor().Advise(days, nil, conflict, "2026-08-01")
	if proposal == nil {
		t.Fatal("期望有修复建议")
	}
	if len(proposal.Edits) != 2 {
		t.Fatalf("期望一对互换，得到 %+v", proposal.Edits)
	}
	for _, edit := range proposal.Edits {
		if edit.Date != "2026-08-02" {
			t.Errorf("互换应发生在 D+1 (2026-08-02)，得到 %s", edit.Date)
		}
	}
}

func TestAdvisor_ConsecutiveViolation_候选会在D2再次连续则跳过(t *testing.T) {
	days := []model.DayRecord{
		{Date: "2026-08-01", Records: buildRecords([2]string{"e1", "MINI_NIGHT"}, [2]string{"e2", "DAY"})},
		{Date: "2026-08-02", Records: buildRecords([2]string{"e1", "MINI_NIGHT"}, [2]string{"e2", "DAY"})},
		{Date: "2026-08-03", Records: buildRecords([2]string{"e1", "DAY"}, [2]string{"e2", "MINI_NIGHT"})},
	}
	conflict := validator.Violation{Type: validator.ConsecutiveViolation, Date: "2026-08-01", Shift: model.ShiftMiniNight, EmployeeID: "e1"}

	proposal := NewAdvisor().Advise(days, nil, conflict, "2026-08-01")
	if proposal != nil {
		t.Fatalf("唯一候选会在 D+2 形成新的连续夜班，应无建议，得到 %+v", proposal)
	}
}

func TestAdvisor_ChiefMissing_从富余班次调入带班员工(t *testing.T) {
	employees := []model.Employee{
		{Code: "chief1", IsChief: true},
		{Code: "chief2", IsChief: true},
		{Code: "worker1", IsChief: false},
	}
	days := []model.DayRecord{
		{Date: "2026-08-01", Records: buildRecords(
			[2]string{"chief1", "SLEEP"}, [2]string{"chief2", "SLEEP"},
			[2]string{"worker1", "MINI_NIGHT"},
		)},
	}
	conflict := validator.Violation{Type: validator.ChiefMissing, Date: "2026-08-01", Shift: model.ShiftMiniNight}

	proposal := NewAdvisor().Advise(days, employees, conflict, "2026-08-01")
	if proposal == nil {
		t.Fatal("期望有修复建议")
	}
	if len(proposal.Edits) != 2 {
		t.Fatalf("期望一对互换，得到 %+v", proposal.Edits)
	}

	var movedChief bool
	for _, edit := range proposal.Edits {
		if edit.EmployeeID == "chief1" || edit.EmployeeID == "chief2" {
			if edit.ToShift != model.ShiftMiniNight {
				t.Errorf("带班员工应调入缺带班的班次，得到 %+v", edit)
			}
			movedChief = true
		}
	}
	if !movedChief {
		t.Errorf("建议中应包含带班员工的调动, 得到 %+v", proposal.Edits)
	}
}

func TestAdvisor_ChiefMissing_搭档夜班仅一名带班则不可用(t *testing.T) {
	employees := []model.Employee{
		{Code: "chief1", IsChief: true},
		{Code: "worker1", IsChief: false},
	}
	days := []model.DayRecord{
		{Date: "2026-08-01", Records: buildRecords(
			[2]string{"chief1", "SLEEP"},
			[2]string{"worker1", "MINI_NIGHT"},
		)},
	}
	conflict := validator.Violation{Type: validator.ChiefMissing, Date: "2026-08-01", Shift: model.ShiftMiniNight}

	proposal := NewAdvisor().Advise(days, employees, conflict, "2026-08-01")
	if proposal != nil {
		t.Fatalf("SLEEP 班只有唯一带班时不应被抽走，得到 %+v", proposal)
	}
}

func TestAdvisor_ChiefDuplicate_多余带班调往缺带班夜班(t *testing.T) {
	employees := []model.Employee{
		{Code: "chief1", IsChief: true},
		{Code: "chief2", IsChief: true},
		{Code: "worker1", IsChief: false},
	}
	days := []model.DayRecord{
		{Date: "2026-08-01", Records: buildRecords(
			[2]string{"chief1", "MINI_NIGHT"}, [2]string{"chief2", "MINI_NIGHT"},
			[2]string{"worker1", "LATE_NIGHT"},
		)},
	}
	conflict := validator.Violation{Type: validator.ChiefDuplicate, Date: "2026-08-01", Shift: model.ShiftMiniNight, EmployeeID: "chief2"}

	proposal := NewAdvisor().Advise(days, employees, conflict, "2026-08-01")
	if proposal == nil {
		t.Fatal("期望有修复建议")
	}
	for _, edit := range proposal.Edits {
		if edit.EmployeeID == "chief2" && edit.ToShift != model.ShiftLateNight {
			t.Errorf("多余带班应调往缺带班的 LATE_NIGHT 班，得到 %+v", edit)
		}
	}
}

func TestAdvisor_过去日期不产生建议(t *testing.T) {
	days := []model.DayRecord{
		{Date: "2026-08-01", Records: []model.Assignment{
			{EmployeeID: "e1", Shift: model.ShiftDay},
			{EmployeeID: "e2", Shift: model.ShiftDay},
		}},
	}
	conflict := validator.Violation{Type: validator.SlotCountMismatch, Date: "2026-08-01", Shift: model.ShiftDay}

	proposal := NewAdvisor().Advise(days, nil, conflict, "2026-08-02")
	if proposal != nil {
		t.Fatalf("过去日期的冲突不应产生建议，得到 %+v", proposal)
	}
}
