// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/roster/pkg/model"
)

// EmployeeRepository 员工花名册仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	now := time.Now()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	query := `
		INSERT INTO employees (
			id, code, name, display_position, is_chief, "group", avoidance_group,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Code, emp.Name, emp.DisplayPosition, emp.IsChief, emp.Group, emp.AvoidanceGroup,
		emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取员工
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := `
		SELECT id, code, name, display_position, is_chief, "group", avoidance_group,
			created_at, updated_at
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

// GetByCode 根据外部花名册标识符获取员工
func (r *EmployeeRepository) GetByCode(ctx context.Context, code string) (*model.Employee, error) {
	query := `
		SELECT id, code, name, display_position, is_chief, "group", avoidance_group,
			created_at, updated_at
		FROM employees
		WHERE code = $1 AND deleted_at IS NULL
	`
	return r.scan(r.db.QueryRowContext(ctx, query, code))
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	emp.UpdatedAt = time.Now()

	query := `
		UPDATE employees SET
			code = $2, name = $3, display_position = $4, is_chief = $5,
			"group" = $6, avoidance_group = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Code, emp.Name, emp.DisplayPosition, emp.IsChief,
		emp.Group, emp.AvoidanceGroup, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}
	return nil
}

// Delete 软删除员工
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}
	return nil
}

// List 按过滤条件查询员工
func (r *EmployeeRepository) List(ctx context.Context, filter ListFilter) ([]*model.Employee, int, error) {
	conditions := []string{"deleted_at IS NULL"}
	var args []interface{}
	argIndex := 1

	if group, ok := filter.Extra["group"].(string); ok && group != "" {
		conditions = append(conditions, fmt.Sprintf(`"group" = $%d`, argIndex))
		args = append(args, group)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询员工总数失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, code, name, display_position, is_chief, "group", avoidance_group,
			created_at, updated_at
		FROM employees
		WHERE %s
		ORDER BY display_position ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询员工列表失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := r.scanRows(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, emp)
	}
	return employees, total, nil
}

// ListByGroup 按显示顺序返回某班组的全部花名册成员，用于构建排班核心
// 所需的不可变花名册输入
func (r *EmployeeRepository) ListByGroup(ctx context.Context, group string) ([]*model.Employee, error) {
	filter := DefaultListFilter().WithLimit(10000)
	filter.Extra = map[string]interface{}{"group": group}
	employees, _, err := r.List(ctx, filter)
	return employees, err
}

func (r *EmployeeRepository) scan(row *sql.Row) (*model.Employee, error) {
	emp := &model.Employee{}
	err := row.Scan(
		&emp.ID, &emp.Code, &emp.Name, &emp.DisplayPosition, &emp.IsChief,
		&emp.Group, &emp.AvoidanceGroup, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描员工数据失败: %w", err)
	}
	return emp, nil
}

func (r *EmployeeRepository) scanRows(rows *sql.Rows) (*model.Employee, error) {
	emp := &model.Employee{}
	err := rows.Scan(
		&emp.ID, &emp.Code, &emp.Name, &emp.DisplayPosition, &emp.IsChief,
		&emp.Group, &emp.AvoidanceGroup, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描员工数据失败: %w", err)
	}
	return emp, nil
}
