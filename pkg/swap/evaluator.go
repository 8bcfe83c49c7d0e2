package swap

import "github.com/paiban/roster/pkg/model"

// Evaluator 在多个结构上合法的候选修复方案之间挑选扰动最小的一个：
// 优先选择“转出方本月该班次已偏多、转入方本月该班次已偏少”的互换，
// 这样顺带朝公平的方向迈进一步，而不仅仅是消除冲突。
type Evaluator struct{}

// NewEvaluator 创建候选评估器
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Best 对候选集打分并返回得分最高者；候选集为空时返回 nil
func (e *Evaluator) Best(days []model.DayRecord, candidates []Proposal) *Proposal {
	if len(candidates) == 0 {
		return nil
	}

	counts := monthCounts(days)

	best := candidates[0]
	best.Score = e.score(counts, best.Edits)
	for _, c := range candidates[1:] {
		c.Score = e.score(counts, c.Edits)
		if c.Score > best.Score {
			best = c
		}
	}
	return &best
}

// score 对一组编辑打分：每条编辑贡献“转出班次计数 − 转入班次计数”，
// 越大说明这次移动越顺应当月已经形成的分布。
func (e *Evaluator) score(counts map[string]map[model.ShiftKind]int, edits []Edit) float64 {
	total := 0.0
	for _, edit := range edits {
		c := counts[edit.EmployeeID]
		total += float64(c[edit.FromShift] - c[edit.ToShift])
	}
	return total
}

// monthCounts 统计每名员工本月每种工作班次的出现次数
func monthCounts(days []model.DayRecord) map[string]map[model.ShiftKind]int {
	out := make(map[string]map[model.ShiftKind]int)
	for _, day := range days {
		for _, rec := range day.Records {
			if !rec.Shift.IsWorkingShift() {
				continue
			}
			if out[rec.EmployeeID] == nil {
				out[rec.EmployeeID] = make(map[model.ShiftKind]int)
			}
			out[rec.EmployeeID][rec.Shift]++
		}
	}
	return out
}
