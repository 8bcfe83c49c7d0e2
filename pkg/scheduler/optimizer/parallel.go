// Package optimizer 提供排班方案的局部搜索优化
package optimizer

import (
	"context"
	"log"
	"sync"
)

// ParallelEvaluator 并行评估器
type ParallelEvaluator struct {
	workers   int
	evaluator ConstraintEvaluator
}

// NewParallelEvaluator 创建并行评估器
func NewParallelEvaluator(workers int, evaluator ConstraintEvaluator) *ParallelEvaluator {
	if workers <= 0 {
		workers = 4
	}
	return &ParallelEvaluator{
		workers:   workers,
		evaluator: evaluator,
	}
}

// EvaluationResult 评估结果
type EvaluationResult struct {
	Index      int
	Solution   *Solution
	Score      float64
	Violations []string
	Feasible   bool
}

// EvaluateBatch 并行评估一批解决方案
func (p *ParallelEvaluator) EvaluateBatch(ctx context.Context, solutions []*Solution) []EvaluationResult {
	if len(solutions) == 0 {
		return nil
	}

	resultChan := make(chan EvaluationResult, len(solutions))
	jobChan := make(chan struct {
		index    int
		solution *Solution
	}, len(solutions))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := p.evaluateSingle(job.solution)
					result.Index = job.index
					resultChan <- result
				}
			}
		}()
	}

	go func() {
		for i, sol := range solutions {
			jobChan <- struct {
				index    int
				solution *Solution
			}{i, sol}
		}
		close(jobChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]EvaluationResult, len(solutions))
	for result := range resultChan {
		results[result.Index] = result
	}

	return results
}

// evaluateSingle 评估单个解决方案
func (p *ParallelEvaluator) evaluateSingle(solution *Solution) EvaluationResult {
	if p.evaluator == nil {
		return EvaluationResult{Solution: solution, Score: 0, Feasible: true}
	}

	score, feasible, violations := p.evaluator.Evaluate(solution.Context)

	return EvaluationResult{
		Solution:   solution,
		Score:      score,
		Violations: violations,
		Feasible:   feasible,
	}
}

// FindBest 从结果中找出最优解
func (p *ParallelEvaluator) FindBest(results []EvaluationResult) *EvaluationResult {
	if len(results) == 0 {
		return nil
	}

	best := &results[0]
	for i := 1; i < len(results); i++ {
		if results[i].Score < best.Score {
			best = &results[i]
		}
	}
	return best
}

// ParallelOptimizer 并行优化器：每轮并行生成并评估一批邻域解
type ParallelOptimizer struct {
	config    *OptimizationConfig
	evaluator *ParallelEvaluator
	neighbors *NeighborhoodGenerator
}

// NewParallelOptimizer 创建并行优化器
func NewParallelOptimizer(config *OptimizationConfig, constraintEvaluator ConstraintEvaluator) *ParallelOptimizer {
	if config == nil {
		config = DefaultOptConfig()
	}
	return &ParallelOptimizer{
		config:    config,
		evaluator: NewParallelEvaluator(config.ParallelWorkers, constraintEvaluator),
		neighbors: NewNeighborhoodGenerator(),
	}
}

// OptimizeParallel 并行优化
func (p *ParallelOptimizer) OptimizeParallel(ctx context.Context, initial *Solution) (*Solution, error) {
	current := initial.Clone()
	best := current.Clone()

	log.Printf("开始并行优化: workers=%d, neighborhood_size=%d",
		p.config.ParallelWorkers, p.config.NeighborhoodSize)

	noImprovementCount := 0

	for iter := 0; iter < p.config.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			return best, ctx.Err()
		default:
		}

		neighborList := p.generateNeighborsParallel(ctx, current, p.config.NeighborhoodSize)
		if len(neighborList) == 0 {
			continue
		}

		results := p.evaluator.EvaluateBatch(ctx, neighborList)

		bestResult := p.evaluator.FindBest(results)
		if bestResult == nil {
			continue
		}

		if bestResult.Score < current.Score {
			current = bestResult.Solution.Clone()
			current.Score = bestResult.Score
			current.Violations = bestResult.Violations
			current.Feasible = bestResult.Feasible

			if current.Score < best.Score {
				best = current.Clone()
				noImprovementCount = 0
				log.Printf("并行优化发现更优解: iteration=%d, score=%.2f, violations=%d",
					iter, best.Score, len(best.Violations))
			}
		} else {
			noImprovementCount++
		}

		if p.config.StopOnPlateau && noImprovementCount >= p.config.PlateauThreshold {
			log.Printf("并行优化达到平台期: iterations=%d", iter)
			break
		}
	}

	log.Printf("并行优化完成: initial=%.2f, final=%.2f", initial.Score, best.Score)

	return best, nil
}

// generateNeighborsParallel 并行生成邻域解
func (p *ParallelOptimizer) generateNeighborsParallel(ctx context.Context, current *Solution, count int) []*Solution {
	resultChan := make(chan *Solution, count)

	var wg sync.WaitGroup
	batchSize := count / p.config.ParallelWorkers
	if batchSize < 1 {
		batchSize = 1
	}

	for i := 0; i < p.config.ParallelWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			localGen := NewNeighborhoodGenerator()

			for j := 0; j < batchSize; j++ {
				select {
				case <-ctx.Done():
					return
				default:
					neighbor := localGen.GenerateNeighbor(current)
					if neighbor != nil {
						resultChan <- neighbor
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]*Solution, 0, count)
	for neighbor := range resultChan {
		results = append(results, neighbor)
	}

	return results
}

// IslandOptimizer 岛屿模型并行优化器：多个独立种群并行退火，取全局最优
type IslandOptimizer struct {
	config      *OptimizationConfig
	evaluator   ConstraintEvaluator
	islandCount int
}

// NewIslandOptimizer 创建岛屿模型优化器
func NewIslandOptimizer(config *OptimizationConfig, evaluator ConstraintEvaluator, islandCount int) *IslandOptimizer {
	if islandCount < 2 {
		islandCount = 2
	}
	return &IslandOptimizer{
		config:      config,
		evaluator:   evaluator,
		islandCount: islandCount,
	}
}

// Island 岛屿（独立种群）：每个岛屿自己的邻域搜索又在内部用
// ParallelEvaluator 并发打分一批邻域解，双层并行。
type Island struct {
	ID        int
	Best      *Solution
	Current   *Solution
	Optimizer *ParallelOptimizer
}

// OptimizeIslands 岛屿模型并行优化：每个岛屿独立跑一轮并行邻域搜索，
// 取全局最优，作为 random_tiebreak 软惩罚所需的打破对称性的多样性来源。
func (io *IslandOptimizer) OptimizeIslands(ctx context.Context, initial *Solution) (*Solution, error) {
	islands := make([]*Island, io.islandCount)
	for i := 0; i < io.islandCount; i++ {
		islands[i] = &Island{
			ID:        i,
			Best:      initial.Clone(),
			Current:   initial.Clone(),
			Optimizer: NewParallelOptimizer(io.config, io.evaluator),
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < io.islandCount; i++ {
		wg.Add(1)
		go func(island *Island) {
			defer wg.Done()

			result, err := island.Optimizer.OptimizeParallel(ctx, island.Current)
			if err == nil {
				mu.Lock()
				island.Best = result
				mu.Unlock()
			}
		}(islands[i])
	}

	wg.Wait()

	globalBest := islands[0].Best
	for _, island := range islands[1:] {
		if island.Best.Score < globalBest.Score {
			globalBest = island.Best
		}
	}

	log.Printf("岛屿模型优化完成: islands=%d, best_score=%.2f", io.islandCount, globalBest.Score)

	return globalBest, nil
}
