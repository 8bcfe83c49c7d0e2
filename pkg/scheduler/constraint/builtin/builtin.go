package builtin

import (
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// RegisterDefaultConstraints 按规约 §4.4 注册 10 条硬约束（约束 1 由决策张量结构保证，不单独登记）与 5 条软惩罚
func RegisterDefaultConstraints(manager *constraint.Manager) {
	// 硬约束
	manager.Register(NewHeadcountConstraint())
	manager.Register(NewChiefCoverageConstraint())
	manager.Register(NewChiefQualificationConstraint())
	manager.Register(NewAnchorCycleConstraint())
	manager.Register(NewAnchorRestrictionConstraint())
	manager.Register(NewPinConstraint())
	manager.Register(NewAvoidanceConstraint())
	manager.Register(NewLateNightMinSpacingConstraint())
	manager.Register(NewDayMinSpacingConstraint())
	manager.Register(NewConsecutiveNightProhibitionConstraint())

	// 软惩罚
	manager.Register(NewLeaderDayConsecutivePenalty())
	manager.Register(NewLateNightGapPenalty())
	manager.Register(NewDayGapPenalty())
	manager.Register(NewTwoMonthSpreadPenalty())
	manager.Register(NewRandomTiebreakPenalty())
}
