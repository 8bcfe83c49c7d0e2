// Package constraints 导出约束库：把求解核心实际注册的硬/软约束
// 整理成一份供前端渲染的目录，名称、类别、权重全部来自约束管理器本身，
// 不是另一份手工维护的静态清单。
package constraints

import (
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// Definition 约束目录里的一条记录
type Definition struct {
	Name        string              `json:"name"`
	Category    constraint.Category `json:"category"` // hard | soft
	Weight      int                 `json:"weight"`
	Description string              `json:"description"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library []Definition `json:"library"`
}

// descriptions 按约束名提供人类可读说明；未登记的约束退化为空字符串，
// 不会阻止其出现在目录里。
var descriptions = map[string]string{
	"定员":                "每个工作日的四种班次人数必须恰好等于定员 (6, 5, 3, 3)。",
	"带班覆盖":              "每个夜班席位必须恰好有一名带班员工，不能缺失也不能重复。",
	"带班资格":              "带班席位只能由花名册前六位（带班资格）员工担任。",
	"anchor循环":          "anchor 员工按历史投影推导的 DAY/SLEEP/SLEEP 相位连续排班。",
	"anchor员工班次限制":      "anchor 员工在任何工作日（含锁定日）只能被分配 DAY 或 SLEEP。",
	"锁定分配":              "每一条外部锁定分配必须原样出现在最终结果中。",
	"互斥组":               "同一互斥组内的成员不能在同一天被分配同一班次。",
	"LATE_NIGHT最小间隔":    "同一员工两次 LATE_NIGHT 之间至少间隔 3 个工作日。",
	"DAY最小间隔":           "非 anchor 员工两次 DAY 之间至少间隔 1 个工作日。",
	"连续夜班禁止":            "禁止同一员工在相邻工作日连续出现 MINI_NIGHT 或连续出现 LATE_NIGHT；不检查 4 天窗口内的夜班次数。",
	"leader_day_consecutive": "带班员工连续多日 DAY 班的软惩罚。",
	"late_gap_violation":     "LATE_NIGHT 间隔超过上限（带班资格 5 天，其他 6 天）时的软惩罚。",
	"day_gap_violation":      "非 anchor 员工 DAY 间隔超过 3 天时的软惩罚。",
	"two_month_spread":       "跨两月班次分布不均衡时的软惩罚，驱动公平性评分。",
	"random_tiebreak":        "在若干等价最优解之间打破对称性的随机抖动惩罚。",
}

// FromManager 把给定约束管理器当前注册的全部约束物化为目录条目，
// 硬约束在前、按权重降序排列——与 Manager.GetAll() 的注册顺序一致。
func FromManager(manager *constraint.Manager) []Definition {
	all := manager.GetAll()
	out := make([]Definition, 0, len(all))
	for _, c := range all {
		out = append(out, Definition{
			Name:        c.Name(),
			Category:    c.Category(),
			Weight:      c.Weight(),
			Description: descriptions[c.Name()],
		})
	}
	return out
}
