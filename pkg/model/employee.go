// Package model 定义排班引擎的核心数据模型
package model

// Employee 员工
//
// ID 是内部存储标识符；Code 是外部请求中使用的不透明标识符（spec 中的
// employee_id）。DisplayPosition 是花名册中的顺序位置，0 号员工为 anchor
// employee。IsChief 是一等字段，由 DisplayPosition < 6 派生后固化，
// 避免后续逻辑依赖位置判断。
type Employee struct {
	BaseModel
	Code            string `json:"employee_id" db:"code"`
	Name            string `json:"name" db:"name"`
	DisplayPosition int    `json:"display_position" db:"display_position"`
	IsChief         bool   `json:"is_chief" db:"is_chief"`
	Group           string `json:"group" db:"group"` // A/B/C
	AvoidanceGroup  string `json:"avoidance_group,omitempty" db:"avoidance_group"`
}

// IsAnchor 判断是否为 0 号 anchor employee
func (e *Employee) IsAnchor() bool {
	return e.DisplayPosition == 0
}

// AvoidanceGroup 互斥组：组内成员同一天不能共享同一班次
type AvoidanceGroup struct {
	BaseModel
	Name        string   `json:"name" db:"name"`
	EmployeeIDs []string `json:"employee_ids" db:"employee_ids"`
}

// Contains 判断员工是否属于该互斥组
func (g *AvoidanceGroup) Contains(employeeID string) bool {
	for _, id := range g.EmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}
