// Package constraint 定义约束接口、决策张量 Context 及约束管理器。
package constraint

import (
	"time"

	"github.com/paiban/roster/pkg/model"
)

// Category 约束类别
type Category string

const (
	CategoryHard Category = "hard"
	CategorySoft Category = "soft"
)

// Constraint 约束接口。硬约束的 Evaluate 在违反时返回 valid=false；
// 软约束恒为 valid=true，仅通过 penalty 计入目标函数。
type Constraint interface {
	Name() string
	Category() Category
	Weight() int
	Evaluate(ctx *Context) (valid bool, penalty int, details []ViolationDetail)
}

// ViolationDetail 约束违反详情
type ViolationDetail struct {
	ConstraintName string `json:"constraint_name"`
	EmployeeID     string `json:"employee_id,omitempty"`
	Date           string `json:"date,omitempty"`
	Message        string `json:"message"`
	Penalty        int    `json:"penalty"`
}

// Context 是决策变量张量 x[e,d,s] 的扁平化实现：因为“每人每天恰好一个班次”
// 是永远成立的硬约束，x[e][d] 直接存放“取值为 1 的那个 s”（未分配时为
// model.ShiftNone），而不是逐一存储 |shift-kinds| 个布尔量。IsAssigned
// 仍然提供 x[e,d,s] 风格的布尔读法，供约束实现保持规约中描述的接口形状。
// 带班席位 c[e,d,s] 同理压缩为 chiefSeat[d][nightShift] = employeeID。
type Context struct {
	WorkDays    []time.Time
	dayIndex    map[string]int
	Employees   []model.Employee
	employeeIdx map[string]int

	AvoidanceGroups []model.AvoidanceGroup
	Pins            map[pinKey]model.ShiftKind

	AnchorEmployeeID  string
	AnchorPhaseOffset int
	PrevCounts        map[string]map[model.ShiftKind]int

	x         [][]model.ShiftKind // [employeeIdx][dayIdx]
	chiefSeat []map[model.ShiftKind]string // [dayIdx][nightShiftKind] -> employeeID

	rng RandomSource
}

// RandomSource 产生 [0,1) 区间的抖动值，供 random_tiebreak 软惩罚使用。
type RandomSource interface {
	Float64() float64
}

type pinKey struct {
	employeeID string
	date       string
}

// EmployeeID 返回锁定键对应的员工标识符
func (k pinKey) EmployeeID() string { return k.employeeID }

// Date 返回锁定键对应的日期
func (k pinKey) Date() string { return k.date }

// NewContext 构建一个空白决策张量
func NewContext(workDays []time.Time, employees []model.Employee, groups []model.AvoidanceGroup, rng RandomSource) *Context {
	c := &Context{
		WorkDays:        workDays,
		Employees:       employees,
		AvoidanceGroups: groups,
		Pins:            make(map[pinKey]model.ShiftKind),
		rng:             rng,
	}

	c.dayIndex = make(map[string]int, len(workDays))
	for i, d := range workDays {
		c.dayIndex[d.Format("2006-01-02")] = i
	}

	c.employeeIdx = make(map[string]int, len(employees))
	for i, e := range employees {
		c.employeeIdx[e.Code] = i
	}

	c.x = make([][]model.ShiftKind, len(employees))
	for i := range c.x {
		c.x[i] = make([]model.ShiftKind, len(workDays))
		for d := range c.x[i] {
			c.x[i][d] = model.ShiftNone
		}
	}

	c.chiefSeat = make([]map[model.ShiftKind]string, len(workDays))
	for i := range c.chiefSeat {
		c.chiefSeat[i] = make(map[model.ShiftKind]string)
	}

	return c
}

// DayIndex 返回某日期在工作日序列中的下标，不存在返回 -1
func (c *Context) DayIndex(date string) int {
	if i, ok := c.dayIndex[date]; ok {
		return i
	}
	return -1
}

// DateAt 返回指定工作日下标对应的日期字符串
func (c *Context) DateAt(dayIdx int) string {
	return c.WorkDays[dayIdx].Format("2006-01-02")
}

// EmployeeIndex 返回员工在展示顺序中的下标，不存在返回 -1
func (c *Context) EmployeeIndex(employeeID string) int {
	if i, ok := c.employeeIdx[employeeID]; ok {
		return i
	}
	return -1
}

// Assign 设置 x[e,d] = s
func (c *Context) Assign(employeeIdx, dayIdx int, shift model.ShiftKind) {
	c.x[employeeIdx][dayIdx] = shift
}

// ShiftAt 返回 x[e][d]
func (c *Context) ShiftAt(employeeIdx, dayIdx int) model.ShiftKind {
	return c.x[employeeIdx][dayIdx]
}

// IsAssigned 实现 x[e,d,s] 的布尔读法
func (c *Context) IsAssigned(employeeIdx, dayIdx int, shift model.ShiftKind) bool {
	return c.x[employeeIdx][dayIdx] == shift
}

// SetChief 设置 c[e,d,s] = 1，即该员工占据某夜班的带班席位
func (c *Context) SetChief(dayIdx int, nightShift model.ShiftKind, employeeID string) {
	c.chiefSeat[dayIdx][nightShift] = employeeID
}

// ChiefAt 返回某天某夜班的带班员工标识符，空字符串表示无人带班
func (c *Context) ChiefAt(dayIdx int, nightShift model.ShiftKind) string {
	return c.chiefSeat[dayIdx][nightShift]
}

// EmployeesOnShift 返回某工作日、某班次的全部员工下标
func (c *Context) EmployeesOnShift(dayIdx int, shift model.ShiftKind) []int {
	var out []int
	for e := range c.x {
		if c.x[e][dayIdx] == shift {
			out = append(out, e)
		}
	}
	return out
}

// SetPin 记录一个锁定分配
func (c *Context) SetPin(employeeID, date string, shift model.ShiftKind) {
	c.Pins[pinKey{employeeID, date}] = shift
}

// PinnedShift 返回给定 (员工, 日期) 的锁定班次，第二个返回值表示是否存在
func (c *Context) PinnedShift(employeeID, date string) (model.ShiftKind, bool) {
	s, ok := c.Pins[pinKey{employeeID, date}]
	return s, ok
}

// IsPinned 判断给定单元格是否被锁定
func (c *Context) IsPinned(employeeID, date string) bool {
	_, ok := c.Pins[pinKey{employeeID, date}]
	return ok
}

// Jitter 返回一个 [0,1) 随机抖动，找不到随机源时返回 0
func (c *Context) Jitter() float64 {
	if c.rng == nil {
		return 0
	}
	return c.rng.Float64()
}

// Clone 深拷贝决策张量，供局部搜索在不干扰当前最优解的情况下试探性修改
func (c *Context) Clone() *Context {
	clone := &Context{
		WorkDays:          c.WorkDays,
		dayIndex:          c.dayIndex,
		Employees:         c.Employees,
		employeeIdx:       c.employeeIdx,
		AvoidanceGroups:   c.AvoidanceGroups,
		AnchorEmployeeID:  c.AnchorEmployeeID,
		AnchorPhaseOffset: c.AnchorPhaseOffset,
		PrevCounts:        c.PrevCounts,
		rng:               c.rng,
	}

	clone.Pins = make(map[pinKey]model.ShiftKind, len(c.Pins))
	for k, v := range c.Pins {
		clone.Pins[k] = v
	}

	clone.x = make([][]model.ShiftKind, len(c.x))
	for i, row := range c.x {
		clone.x[i] = append([]model.ShiftKind(nil), row...)
	}

	clone.chiefSeat = make([]map[model.ShiftKind]string, len(c.chiefSeat))
	for i, seats := range c.chiefSeat {
		clone.chiefSeat[i] = make(map[model.ShiftKind]string, len(seats))
		for k, v := range seats {
			clone.chiefSeat[i][k] = v
		}
	}

	return clone
}

// NumEmployees 返回决策张量中的员工数
func (c *Context) NumEmployees() int { return len(c.x) }

// NumDays 返回决策张量中的工作日数
func (c *Context) NumDays() int { return len(c.WorkDays) }

// Result 约束评估结果
type Result struct {
	IsValid        bool
	TotalPenalty   int
	HardViolations []ViolationDetail
	SoftViolations []ViolationDetail
}
