// Package stats 计算排班方案的班次分布与公平性统计
package stats

import (
	"math"
	"sort"

	"github.com/paiban/roster/pkg/model"
)

// Analyzer 公平性分析器
type Analyzer struct{}

// NewAnalyzer 创建公平性分析器
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze 计算一个月排班方案的班次分布统计：本月分布、叠加上月计数后的
// 两月分布、两月公平性评分，以及作为辅助指标的基尼系数。
func (a *Analyzer) Analyze(days []model.DayRecord, employees []model.Employee, prevCounts map[string]map[model.ShiftKind]int, hasPrevious bool, seed int64) *model.Statistics {
	thisMonth := a.countThisMonth(days, employees)

	shiftDistributions := make(map[model.ShiftKind]model.ShiftDistribution)
	twoMonthDistributions := make(map[model.ShiftKind]model.ShiftDistribution)
	gini := make(map[model.ShiftKind]float64)

	spreadSum := 0

	for _, shift := range model.WorkingShiftKinds() {
		monthCounts := make(map[string]int, len(employees))
		combinedCounts := make(map[string]int, len(employees))

		for _, emp := range employees {
			m := thisMonth[emp.Code][shift]
			monthCounts[emp.Code] = m

			prev := 0
			if prevCounts != nil {
				prev = prevCounts[emp.Code][shift]
			}
			combinedCounts[emp.Code] = m + prev
		}

		shiftDistributions[shift] = buildDistribution(monthCounts)
		twoMonthDist := buildDistribution(combinedCounts)
		twoMonthDistributions[shift] = twoMonthDist
		gini[shift] = calculateGini(valuesOf(combinedCounts))

		spreadSum += twoMonthDist.Spread
	}

	return &model.Statistics{
		ShiftDistributions:    shiftDistributions,
		TwoMonthDistributions: twoMonthDistributions,
		FairnessScore:         float64(spreadSum),
		HasPreviousData:       hasPrevious,
		Seed:                  seed,
		Gini:                  gini,
	}
}

// countThisMonth 统计本月每个员工、每种工作班次的计数
func (a *Analyzer) countThisMonth(days []model.DayRecord, employees []model.Employee) map[string]map[model.ShiftKind]int {
	counts := make(map[string]map[model.ShiftKind]int, len(employees))
	for _, emp := range employees {
		counts[emp.Code] = make(map[model.ShiftKind]int)
	}

	for _, day := range days {
		for _, rec := range day.Records {
			if !rec.Shift.IsWorkingShift() {
				continue
			}
			if counts[rec.EmployeeID] == nil {
				counts[rec.EmployeeID] = make(map[model.ShiftKind]int)
			}
			counts[rec.EmployeeID][rec.Shift]++
		}
	}

	return counts
}

// buildDistribution 从每员工计数构建一份分布统计
func buildDistribution(counts map[string]int) model.ShiftDistribution {
	if len(counts) == 0 {
		return model.ShiftDistribution{PerEmployee: map[string]int{}}
	}

	values := make([]float64, 0, len(counts))
	min, max := -1, -1
	for _, c := range counts {
		values = append(values, float64(c))
		if min == -1 || c < min {
			min = c
		}
		if max == -1 || c > max {
			max = c
		}
	}

	avg := average(values)
	std := stddev(values, avg)

	perEmployee := make(map[string]int, len(counts))
	for code, c := range counts {
		perEmployee[code] = c
	}

	return model.ShiftDistribution{
		Min:         min,
		Max:         max,
		Avg:         avg,
		Std:         std,
		Spread:      max - min,
		PerEmployee: perEmployee,
	}
}

func valuesOf(counts map[string]int) []float64 {
	out := make([]float64, 0, len(counts))
	for _, c := range counts {
		out = append(out, float64(c))
	}
	return out
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// calculateGini 计算基尼系数；是辅助指标，不参与 FairnessScore 评分，
// 仅用于比 spread 更细粒度地观察两月分布的不均衡程度。
func calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}
