// Package builtin 提供规约中 10 条硬约束（约束 2–11；约束 1 由决策张量结构保证）与 5 条软惩罚的内置实现
package builtin

import (
	"github.com/paiban/roster/pkg/scheduler/constraint"
)

// BaseConstraint 约束基类，承担名称/类别/权重与配置读写
type BaseConstraint struct {
	name     string
	category constraint.Category
	weight   int
	config   map[string]interface{}
}

// NewBaseConstraint 创建基础约束
func NewBaseConstraint(name string, cat constraint.Category, weight int) *BaseConstraint {
	return &BaseConstraint{
		name:     name,
		category: cat,
		weight:   weight,
		config:   make(map[string]interface{}),
	}
}

// Name 返回约束名称
func (c *BaseConstraint) Name() string { return c.name }

// Category 返回约束类别
func (c *BaseConstraint) Category() constraint.Category { return c.category }

// Weight 返回约束权重
func (c *BaseConstraint) Weight() int { return c.weight }

// SetConfig 设置配置
func (c *BaseConstraint) SetConfig(config map[string]interface{}) {
	c.config = config
}

// GetConfigInt 获取整数配置
func (c *BaseConstraint) GetConfigInt(key string, defaultVal int) int {
	if val, ok := c.config[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case float64:
			return int(v)
		case int64:
			return int(v)
		}
	}
	return defaultVal
}

// CreateViolation 创建违反详情
func (c *BaseConstraint) CreateViolation(empID, date, message string, penalty int) constraint.ViolationDetail {
	return constraint.ViolationDetail{
		ConstraintName: c.name,
		EmployeeID:     empID,
		Date:           date,
		Message:        message,
		Penalty:        penalty,
	}
}

// Evaluate 默认评估实现（子类需覆盖）
func (c *BaseConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return true, 0, nil
}
