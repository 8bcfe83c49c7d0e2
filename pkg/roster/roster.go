// Package roster 提供花名册模型：按展示顺序保存员工，
// 派生带班资格，并提供互斥组成员查询。
package roster

import (
	"github.com/paiban/roster/pkg/errors"
	"github.com/paiban/roster/pkg/model"
)

const minRosterSize = 17

// Roster 不可变的花名册，保持输入的展示顺序
type Roster struct {
	employees       []model.Employee
	byID            map[string]*model.Employee
	avoidanceGroups []model.AvoidanceGroup
	avoidanceByID   map[string]*model.AvoidanceGroup
}

// New 构建花名册，按展示顺序分配 IsChief（前 6 位）
// 人数不足 17 人时返回 ROSTER_TOO_SMALL。
func New(employees []model.Employee, groups []model.AvoidanceGroup) (*Roster, error) {
	if len(employees) < minRosterSize {
		return nil, errors.RosterTooSmall(len(employees), minRosterSize)
	}

	ordered := make([]model.Employee, len(employees))
	copy(ordered, employees)

	byID := make(map[string]*model.Employee, len(ordered))
	for i := range ordered {
		ordered[i].DisplayPosition = i
		ordered[i].IsChief = i < 6
		byID[ordered[i].Code] = &ordered[i]
	}

	avoidanceByID := make(map[string]*model.AvoidanceGroup, len(groups))
	for i := range groups {
		g := groups[i]
		for _, empID := range g.EmployeeIDs {
			avoidanceByID[empID] = &groups[i]
		}
	}

	return &Roster{
		employees:       ordered,
		byID:            byID,
		avoidanceGroups: groups,
		avoidanceByID:   avoidanceByID,
	}, nil
}

// Employees 按展示顺序返回全部员工
func (r *Roster) Employees() []model.Employee {
	return r.employees
}

// ByID 按外部标识符查找员工
func (r *Roster) ByID(employeeID string) (*model.Employee, bool) {
	e, ok := r.byID[employeeID]
	return e, ok
}

// Anchor 返回 0 号 anchor employee
func (r *Roster) Anchor() *model.Employee {
	if len(r.employees) == 0 {
		return nil
	}
	return &r.employees[0]
}

// ChiefIDs 返回全部带班资格员工的标识符（派生，不存储）
func (r *Roster) ChiefIDs() []string {
	var ids []string
	for _, e := range r.employees {
		if e.IsChief {
			ids = append(ids, e.Code)
		}
	}
	return ids
}

// AvoidanceGroups 返回全部互斥组
func (r *Roster) AvoidanceGroups() []model.AvoidanceGroup {
	return r.avoidanceGroups
}

// AvoidanceGroupOf 返回给定员工所属的互斥组（如果有）
func (r *Roster) AvoidanceGroupOf(employeeID string) (*model.AvoidanceGroup, bool) {
	g, ok := r.avoidanceByID[employeeID]
	return g, ok
}

// Size 返回花名册人数
func (r *Roster) Size() int {
	return len(r.employees)
}
