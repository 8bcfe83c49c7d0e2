package solver

import (
	"github.com/paiban/roster/pkg/scheduler/constraint"
	"github.com/paiban/roster/pkg/scheduler/constraint/builtin"
)

// BuildManager 构造一个登记了全部内置硬约束与软惩罚的约束管理器
func BuildManager() *constraint.Manager {
	manager := constraint.NewManager()
	builtin.RegisterDefaultConstraints(manager)
	return manager
}
