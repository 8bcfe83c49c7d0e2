// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/roster/pkg/model"
)

// AvoidanceGroupRepository 互斥组仓储
type AvoidanceGroupRepository struct {
	db DB
}

// NewAvoidanceGroupRepository 创建互斥组仓储
func NewAvoidanceGroupRepository(db DB) *AvoidanceGroupRepository {
	return &AvoidanceGroupRepository{db: db}
}

// Create 创建互斥组
func (r *AvoidanceGroupRepository) Create(ctx context.Context, group *model.AvoidanceGroup) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now

	idsJSON, _ := json.Marshal(group.EmployeeIDs)

	query := `
		INSERT INTO avoidance_groups (id, name, employee_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, group.ID, group.Name, idsJSON, group.CreatedAt, group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("创建互斥组失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取互斥组
func (r *AvoidanceGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AvoidanceGroup, error) {
	query := `
		SELECT id, name, employee_ids, created_at, updated_at
		FROM avoidance_groups
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新互斥组
func (r *AvoidanceGroupRepository) Update(ctx context.Context, group *model.AvoidanceGroup) error {
	group.UpdatedAt = time.Now()
	idsJSON, _ := json.Marshal(group.EmployeeIDs)

	query := `
		UPDATE avoidance_groups SET name = $2, employee_ids = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, group.ID, group.Name, idsJSON, group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("更新互斥组失败: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("互斥组不存在")
	}
	return nil
}

// Delete 软删除互斥组
func (r *AvoidanceGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE avoidance_groups SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除互斥组失败: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("互斥组不存在")
	}
	return nil
}

// ListAll 返回全部未删除的互斥组，供求解核心构建输入使用
func (r *AvoidanceGroupRepository) ListAll(ctx context.Context) ([]model.AvoidanceGroup, error) {
	query := `SELECT id, name, employee_ids, created_at, updated_at FROM avoidance_groups WHERE deleted_at IS NULL`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询互斥组列表失败: %w", err)
	}
	defer rows.Close()

	var out []model.AvoidanceGroup
	for rows.Next() {
		g := &model.AvoidanceGroup{}
		var idsJSON []byte
		if err := rows.Scan(&g.ID, &g.Name, &idsJSON, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描互斥组失败: %w", err)
		}
		json.Unmarshal(idsJSON, &g.EmployeeIDs)
		out = append(out, *g)
	}
	return out, nil
}

func (r *AvoidanceGroupRepository) scan(row *sql.Row) (*model.AvoidanceGroup, error) {
	g := &model.AvoidanceGroup{}
	var idsJSON []byte
	err := row.Scan(&g.ID, &g.Name, &idsJSON, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描互斥组失败: %w", err)
	}
	json.Unmarshal(idsJSON, &g.EmployeeIDs)
	return g, nil
}
