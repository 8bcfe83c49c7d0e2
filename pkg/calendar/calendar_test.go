package calendar

import (
	"testing"
	"time"
)

func TestResolve_锚定班组本月工作日(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	req := Request{
		Year:        2026,
		Month:       time.January,
		Group:       GroupA,
		AnchorDate:  anchor,
		AnchorGroup: GroupA,
	}

	days, err := Resolve(req)
	if err != nil {
		t.Fatalf("Resolve() 不应返回错误: %v", err)
	}

	expectedFirst := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !days[0].Equal(expectedFirst) {
		t.Errorf("第一个工作日 = %v, expected %v", days[0], expectedFirst)
	}

	for i := 1; i < len(days); i++ {
		gap := days[i].Sub(days[i-1]).Hours() / 24
		if gap != 3 {
			t.Errorf("相邻工作日间隔应为 3 天，得到 %v 天", gap)
		}
	}
}

func TestResolve_三班组互不重叠(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seen := make(map[string]string)

	for _, g := range []Group{GroupA, GroupB, GroupC} {
		days, err := Resolve(Request{
			Year: 2026, Month: time.January, Group: g,
			AnchorDate: anchor, AnchorGroup: GroupA,
		})
		if err != nil {
			t.Fatalf("班组 %s 不应出现 CALENDAR_EMPTY: %v", g, err)
		}
		for _, d := range days {
			key := d.Format("2006-01-02")
			if owner, ok := seen[key]; ok {
				t.Errorf("%s 同时被班组 %s 和 %s 占用", key, owner, g)
			}
			seen[key] = string(g)
		}
	}
}

func TestResolve_覆盖指定月份(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	override := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	days, err := Resolve(Request{
		Year: 2026, Month: time.February, Group: GroupA,
		AnchorDate: anchor, AnchorGroup: GroupA,
		FirstWorkDayOverride: override,
	})
	if err != nil {
		t.Fatalf("Resolve() 不应返回错误: %v", err)
	}
	if !days[0].Equal(override) {
		t.Errorf("覆盖后的第一个工作日 = %v, expected %v", days[0], override)
	}
}
