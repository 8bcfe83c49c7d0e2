// Package calendar 解析给定月份、给定班组在“工作一天休息两天”锚定规则下的工作日序列。
package calendar

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/paiban/roster/pkg/errors"
)

// Group 班组标识
type Group string

const (
	GroupA Group = "A"
	GroupB Group = "B"
	GroupC Group = "C"
)

// offset 返回该班组相对于 anchor 日期的周期偏移（见 spec §4.1）
func offset(g Group) int {
	switch g {
	case GroupA:
		return 0
	case GroupB:
		return 1
	case GroupC:
		return 2
	default:
		return 0
	}
}

// Request 解析某个 (月份, 班组) 工作日序列所需的输入
type Request struct {
	Year  int
	Month time.Month
	Group Group

	AnchorDate time.Time
	AnchorGroup Group

	// FirstWorkDayOverride 如果非零，则忽略锚定公式，
	// 从该日期开始每隔三天取一个工作日直到月末。
	FirstWorkDayOverride time.Time
}

// Resolve 返回目标月份内该班组的严格递增工作日序列。
// 结果为空时返回 CALENDAR_EMPTY 错误。
func Resolve(req Request) ([]time.Time, error) {
	loc := req.AnchorDate.Location()
	if loc == nil {
		loc = time.UTC
	}
	monthStart := time.Date(req.Year, req.Month, 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, -1)

	var days []time.Time
	if !req.FirstWorkDayOverride.IsZero() {
		days = everyThirdDay(req.FirstWorkDayOverride, monthEnd)
	} else {
		days = anchoredWorkDays(req, monthStart, monthEnd)
	}

	if len(days) == 0 {
		return nil, errors.CalendarEmpty(string(req.Group), monthStart.Format("2006-01"))
	}
	return days, nil
}

// anchoredWorkDays 应用 offset(G) 公式: (days_between(anchor, D) - offset(G)) mod 3 == 0
func anchoredWorkDays(req Request, monthStart, monthEnd time.Time) []time.Time {
	anchorOffset := offset(req.AnchorGroup)
	targetOffset := offset(req.Group)

	// 锚定日当天，锚定班组上班，即 days_between == 0 时 offset(anchorGroup) 必须满足公式，
	// 因此整体相位以锚定日为 days_between=0、offset(anchorGroup) 为基准重新归零。
	anchorDate := dateOnly(req.AnchorDate)

	// 目标班组相对锚定班组的相位差
	phaseDiff := mod(targetOffset-anchorOffset, 3)

	// 从锚定日起第 phaseDiff 天是目标班组的第一个工作日参考点（可能早于/晚于本月）
	firstRef := anchorDate.AddDate(0, 0, phaseDiff)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: 3,
		Dtstart:  firstRef,
	})
	if err != nil {
		return nil
	}

	return rule.Between(monthStart, monthEnd, true)
}

// everyThirdDay 从 start 开始每隔三天取一天，直到（含）end。
func everyThirdDay(start, end time.Time) []time.Time {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: 3,
		Dtstart:  dateOnly(start),
	})
	if err != nil {
		return nil
	}
	return rule.Between(dateOnly(start), dateOnly(end), true)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
