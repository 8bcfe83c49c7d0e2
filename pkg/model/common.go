// Package model 定义排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftKind 班次类型
type ShiftKind string

const (
	ShiftDay        ShiftKind = "DAY"
	ShiftSleep      ShiftKind = "SLEEP"
	ShiftMiniNight  ShiftKind = "MINI_NIGHT"
	ShiftLateNight  ShiftKind = "LATE_NIGHT"
	ShiftVacation   ShiftKind = "VACATION" // 仅用于输入
	ShiftCustom     ShiftKind = "CUSTOM"   // 仅用于输入
	ShiftNone       ShiftKind = "NONE"     // 仅用于输入
)

// WorkingShiftKinds 返回需要排班的班次种类，按固定顺序
func WorkingShiftKinds() []ShiftKind {
	return []ShiftKind{ShiftDay, ShiftSleep, ShiftMiniNight, ShiftLateNight}
}

// NightShiftKinds 返回夜班种类（每个夜班席位都需要一名带班）
func NightShiftKinds() []ShiftKind {
	return []ShiftKind{ShiftSleep, ShiftMiniNight, ShiftLateNight}
}

// IsNightShift 判断是否为夜班
func (s ShiftKind) IsNightShift() bool {
	switch s {
	case ShiftSleep, ShiftMiniNight, ShiftLateNight:
		return true
	default:
		return false
	}
}

// IsWorkingShift 判断是否为需要排班的工作班次
func (s ShiftKind) IsWorkingShift() bool {
	switch s {
	case ShiftDay, ShiftSleep, ShiftMiniNight, ShiftLateNight:
		return true
	default:
		return false
	}
}

// SlotCount 每个工作班次每天需要的固定人数
func SlotCount(kind ShiftKind) int {
	switch kind {
	case ShiftDay:
		return 6
	case ShiftSleep:
		return 5
	case ShiftMiniNight:
		return 3
	case ShiftLateNight:
		return 3
	default:
		return 0
	}
}

// SolverStatus 求解结果状态
type SolverStatus string

const (
	StatusFeasible   SolverStatus = "FEASIBLE"
	StatusOptimal    SolverStatus = "OPTIMAL"
	StatusInfeasible SolverStatus = "INFEASIBLE"
	StatusTimeout    SolverStatus = "TIMEOUT"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}
