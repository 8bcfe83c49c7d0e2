// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paiban/roster/pkg/model"
)

// ScheduleRepository 已保存排班的持久化仓储：按 (月份, 班组) 存取一份完整
// Schedule，为历史投影器提供"上月已保存排班"的数据来源，也是 ad-hoc 编辑
// 流程中"当前排班"的存储后端。
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建排班仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Save 保存或覆盖一个 (月份, 班组) 的排班结果
func (r *ScheduleRepository) Save(ctx context.Context, schedule *model.Schedule) error {
	workDaysJSON, _ := json.Marshal(schedule.WorkDays)
	daysJSON, _ := json.Marshal(schedule.Days)
	statsJSON, _ := json.Marshal(schedule.Statistics)
	now := time.Now()

	query := `
		INSERT INTO schedules (month, "group", work_days, days, statistics, status, seed_used, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (month, "group") DO UPDATE SET
			work_days = EXCLUDED.work_days, days = EXCLUDED.days,
			statistics = EXCLUDED.statistics, status = EXCLUDED.status,
			seed_used = EXCLUDED.seed_used, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		schedule.Month, schedule.Group, workDaysJSON, daysJSON, statsJSON,
		schedule.Status, schedule.SeedUsed, now,
	)
	if err != nil {
		return fmt.Errorf("保存排班失败: %w", err)
	}
	return nil
}

// GetByMonthGroup 获取指定 (月份, 班组) 已保存的排班，不存在返回 nil
func (r *ScheduleRepository) GetByMonthGroup(ctx context.Context, month, group string) (*model.Schedule, error) {
	query := `
		SELECT month, "group", work_days, days, statistics, status, seed_used
		FROM schedules
		WHERE month = $1 AND "group" = $2
	`
	return r.scan(r.db.QueryRowContext(ctx, query, month, group))
}

// GetPreviousMonth 获取指定班组在某月份之前一个月已保存的排班，供历史
// 投影器计算 anchor 相位偏移与两月公平性基准
func (r *ScheduleRepository) GetPreviousMonth(ctx context.Context, group, previousMonth string) (*model.Schedule, error) {
	return r.GetByMonthGroup(ctx, previousMonth, group)
}

// List 列出某班组全部已保存的排班月份，按月份倒序
func (r *ScheduleRepository) List(ctx context.Context, group string, limit int) ([]*model.Schedule, error) {
	query := `
		SELECT month, "group", work_days, days, statistics, status, seed_used
		FROM schedules
		WHERE "group" = $1
		ORDER BY month DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, group, limit)
	if err != nil {
		return nil, fmt.Errorf("查询排班列表失败: %w", err)
	}
	defer rows.Close()

	var out []*model.Schedule
	for rows.Next() {
		s := &model.Schedule{}
		var workDaysJSON, daysJSON, statsJSON []byte
		if err := rows.Scan(&s.Month, &s.Group, &workDaysJSON, &daysJSON, &statsJSON, &s.Status, &s.SeedUsed); err != nil {
			return nil, fmt.Errorf("扫描排班记录失败: %w", err)
		}
		json.Unmarshal(workDaysJSON, &s.WorkDays)
		json.Unmarshal(daysJSON, &s.Days)
		if len(statsJSON) > 0 {
			json.Unmarshal(statsJSON, &s.Statistics)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *ScheduleRepository) scan(row *sql.Row) (*model.Schedule, error) {
	s := &model.Schedule{}
	var workDaysJSON, daysJSON, statsJSON []byte

	err := row.Scan(&s.Month, &s.Group, &workDaysJSON, &daysJSON, &statsJSON, &s.Status, &s.SeedUsed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描排班记录失败: %w", err)
	}

	json.Unmarshal(workDaysJSON, &s.WorkDays)
	json.Unmarshal(daysJSON, &s.Days)
	if len(statsJSON) > 0 {
		json.Unmarshal(statsJSON, &s.Statistics)
	}
	return s, nil
}
