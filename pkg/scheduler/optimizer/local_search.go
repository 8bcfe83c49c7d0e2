// Package optimizer 提供排班方案的局部搜索优化
package optimizer

import (
	"context"
	"hash/fnv"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// OptimizationConfig 优化配置
type OptimizationConfig struct {
	MaxIterations    int           `json:"max_iterations"`    // 最大迭代次数
	MaxTime          time.Duration `json:"max_time"`          // 最大运行时间
	InitialTemp      float64       `json:"initial_temp"`      // 模拟退火初始温度
	CoolingRate      float64       `json:"cooling_rate"`      // 冷却速率
	TabuSize         int           `json:"tabu_size"`         // 禁忌表大小
	NeighborhoodSize int           `json:"neighborhood_size"` // 邻域大小
	ParallelWorkers  int           `json:"parallel_workers"`  // 并行工作数
	StopOnPlateau    bool          `json:"stop_on_plateau"`   // 平台期停止
	PlateauThreshold int           `json:"plateau_threshold"` // 平台期阈值（无改进迭代次数）
}

// DefaultOptConfig 默认优化配置
func DefaultOptConfig() *OptimizationConfig {
	return &OptimizationConfig{
		MaxIterations:    2000,
		MaxTime:          20 * time.Second,
		InitialTemp:      100.0,
		CoolingRate:      0.99,
		TabuSize:         80,
		NeighborhoodSize: 24,
		ParallelWorkers:  4,
		StopOnPlateau:    true,
		PlateauThreshold: 200,
	}
}

// Solution 表示一个排班方案：决策张量本身加上其评估得分
type Solution struct {
	Context    *constraint.Context
	Score      float64
	Violations []string
	Feasible   bool
}

// Clone 深拷贝解决方案（底层张量深拷贝，评估结果随之复制）
func (s *Solution) Clone() *Solution {
	clone := &Solution{
		Context:    s.Context.Clone(),
		Score:      s.Score,
		Violations: make([]string, len(s.Violations)),
		Feasible:   s.Feasible,
	}
	copy(clone.Violations, s.Violations)
	return clone
}

// NewSolution 用一个已求解的决策张量构造初始解，立即完成一次评估
func NewSolution(ctx *constraint.Context, evaluator ConstraintEvaluator) *Solution {
	s := &Solution{Context: ctx}
	score, feasible, violations := evaluator.Evaluate(ctx)
	s.Score = score
	s.Feasible = feasible
	s.Violations = violations
	return s
}

// ConstraintEvaluator 约束评估器接口：返回目标函数得分（越低越好）、
// 是否满足全部硬约束，以及违反信息摘要
type ConstraintEvaluator interface {
	Evaluate(ctx *constraint.Context) (score float64, feasible bool, violations []string)
}

// ManagerEvaluator 把 constraint.Manager 适配为 ConstraintEvaluator。
// 硬约束违反时得分远高于任何软惩罚组合，保证局部搜索总是优先修复不可行性。
type ManagerEvaluator struct {
	Manager *constraint.Manager
}

const hardViolationPenalty = 1_000_000

// Evaluate 实现 ConstraintEvaluator
func (m *ManagerEvaluator) Evaluate(ctx *constraint.Context) (float64, bool, []string) {
	result := m.Manager.Evaluate(ctx)
	score := float64(result.TotalPenalty)
	if !result.IsValid {
		score += hardViolationPenalty * float64(len(result.HardViolations))
	}

	violations := make([]string, 0, len(result.HardViolations)+len(result.SoftViolations))
	for _, v := range result.HardViolations {
		violations = append(violations, v.Message)
	}
	for _, v := range result.SoftViolations {
		violations = append(violations, v.Message)
	}

	return score, result.IsValid, violations
}

// LocalSearchOptimizer 局部搜索优化器：模拟退火接受准则 + 禁忌表
type LocalSearchOptimizer struct {
	config    *OptimizationConfig
	evaluator ConstraintEvaluator
	neighbors *NeighborhoodGenerator
	tabuList  *TabuList
	rng       *rand.Rand
	mu        sync.Mutex
}

// NewLocalSearchOptimizer 创建局部搜索优化器
func NewLocalSearchOptimizer(config *OptimizationConfig, evaluator ConstraintEvaluator) *LocalSearchOptimizer {
	if config == nil {
		config = DefaultOptConfig()
	}
	return &LocalSearchOptimizer{
		config:    config,
		evaluator: evaluator,
		neighbors: NewNeighborhoodGenerator(),
		tabuList:  NewTabuList(config.TabuSize),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Optimize 对初始解执行模拟退火局部搜索，返回找到的最优解
func (o *LocalSearchOptimizer) Optimize(ctx context.Context, initial *Solution) (*Solution, error) {
	start := time.Now()

	current := initial.Clone()
	best := current.Clone()

	temperature := o.config.InitialTemp
	noImprovementCount := 0

	log.Printf("开始局部搜索优化: max_iterations=%d, max_time=%s, initial_score=%.2f",
		o.config.MaxIterations, o.config.MaxTime, current.Score)

	for i := 0; i < o.config.MaxIterations; i++ {
		select {
		case <-ctx.Done():
			log.Println("优化被取消")
			return best, ctx.Err()
		default:
		}

		if time.Since(start) > o.config.MaxTime {
			log.Println("达到最大运行时间")
			break
		}

		neighborList := o.generateNeighbors(current)
		if len(neighborList) == 0 {
			continue
		}

		bestNeighbor := o.evaluateBestNeighbor(neighborList)
		if bestNeighbor == nil {
			continue
		}

		moveKey := hashContext(bestNeighbor.Context)
		inTabu := o.tabuList.Contains(moveKey)

		accept := false
		if bestNeighbor.Score < current.Score {
			accept = true
		} else if !inTabu {
			delta := bestNeighbor.Score - current.Score
			prob := boltzmannProbability(delta, temperature)
			if o.rng.Float64() < prob {
				accept = true
			}
		}

		if accept {
			current = bestNeighbor
			o.tabuList.Add(moveKey)

			if current.Score < best.Score {
				best = current.Clone()
				noImprovementCount = 0
				log.Printf("发现更优解: iteration=%d, score=%.2f", i, best.Score)
			} else {
				noImprovementCount++
			}
		} else {
			noImprovementCount++
		}

		if o.config.StopOnPlateau && noImprovementCount >= o.config.PlateauThreshold {
			log.Printf("达到平台期阈值，停止优化: iterations=%d, no_improvement=%d", i, noImprovementCount)
			break
		}

		temperature *= o.config.CoolingRate
	}

	elapsed := time.Since(start)
	log.Printf("局部搜索优化完成: initial=%.2f, final=%.2f, improvement=%.2f, elapsed=%s",
		initial.Score, best.Score, initial.Score-best.Score, elapsed)

	return best, nil
}

// generateNeighbors 生成邻域解
func (o *LocalSearchOptimizer) generateNeighbors(current *Solution) []*Solution {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.neighbors.GenerateBatch(current, o.config.NeighborhoodSize)
}

// evaluateBestNeighbor 评估一批邻域解并返回得分最优者
func (o *LocalSearchOptimizer) evaluateBestNeighbor(neighborList []*Solution) *Solution {
	if len(neighborList) == 0 {
		return nil
	}

	var best *Solution
	bestScore := math.MaxFloat64

	for _, neighbor := range neighborList {
		score, feasible, violations := o.evaluator.Evaluate(neighbor.Context)
		neighbor.Score = score
		neighbor.Feasible = feasible
		neighbor.Violations = violations

		if best == nil || score < bestScore {
			best = neighbor
			bestScore = score
		}
	}

	return best
}

// hashContext 计算决策张量的哈希 (FNV-1a)，用作禁忌表的移动键
func hashContext(ctx *constraint.Context) uint64 {
	h := fnv.New64a()
	for e := 0; e < ctx.NumEmployees(); e++ {
		for d := 0; d < ctx.NumDays(); d++ {
			h.Write([]byte(ctx.ShiftAt(e, d)))
			h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// boltzmannProbability 计算模拟退火的接受概率
// delta: 能量差 (new - old)
// temperature: 当前温度
func boltzmannProbability(delta, temperature float64) float64 {
	if delta <= 0 {
		return 1.0 // 更优解总是接受
	}
	if temperature <= 0 {
		return 0.0 // 温度为0时不接受更差的解
	}
	return math.Exp(-delta / temperature)
}

// TabuList 禁忌表（使用uint64哈希作为键提高性能）
type TabuList struct {
	items   map[uint64]struct{}
	order   []uint64
	maxSize int
	mu      sync.RWMutex
}

// NewTabuList 创建禁忌表
func NewTabuList(size int) *TabuList {
	return &TabuList{
		items:   make(map[uint64]struct{}),
		order:   make([]uint64, 0, size),
		maxSize: size,
	}
}

// Add 添加到禁忌表
func (t *TabuList) Add(key uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.items[key]; exists {
		return
	}

	if len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.items, oldest)
	}

	t.items[key] = struct{}{}
	t.order = append(t.order, key)
}

// Contains 检查是否在禁忌表中
func (t *TabuList) Contains(key uint64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, exists := t.items[key]
	return exists
}

// Clear 清空禁忌表
func (t *TabuList) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = make(map[uint64]struct{})
	t.order = t.order[:0]
}
