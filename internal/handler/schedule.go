// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/paiban/roster/internal/config"
	"github.com/paiban/roster/internal/metrics"
	"github.com/paiban/roster/internal/repository"
	"github.com/paiban/roster/pkg/calendar"
	"github.com/paiban/roster/pkg/errors"
	"github.com/paiban/roster/pkg/logger"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler"
	"github.com/paiban/roster/pkg/swap"
	"github.com/paiban/roster/pkg/validator"
)

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	respondJSON(w, err.HTTPStatus, solveFailure{ErrorKind: err.Code, Detail: err.Message})
}

// ScheduleHandler 排班处理器：承载 Solve / Validate / Advise 三个端点
type ScheduleHandler struct {
	cfg          *config.Config
	scheduleRepo *repository.ScheduleRepository
}

// NewScheduleHandler 创建排班处理器，scheduleRepo 为 nil 时不持久化求解结果
func NewScheduleHandler(cfg *config.Config, scheduleRepo *repository.ScheduleRepository) *ScheduleHandler {
	return &ScheduleHandler{cfg: cfg, scheduleRepo: scheduleRepo}
}

// prevDayInput 请求体中"上月已排班"的一天
type prevDayInput struct {
	Date    string `json:"date"`
	Records []struct {
		EmployeeID string          `json:"employee_id"`
		Shift      model.ShiftKind `json:"shift"`
	} `json:"records"`
}

// SolveRequest Solve 端点的请求体，字段名与外部契约一一对应
type SolveRequest struct {
	Month                 string                   `json:"month"` // YYYY-MM
	Group                 string                   `json:"group"` // A|B|C
	Employees             []model.Employee         `json:"employees"`
	AvoidanceGroups       []model.AvoidanceGroup   `json:"avoidance_groups,omitempty"`
	Pinned                []model.PinnedAssignment `json:"pinned,omitempty"`
	PreviousMonthSchedule []prevDayInput           `json:"previous_month_schedule,omitempty"`
	FirstWorkDayOverride  int                      `json:"first_work_day_override,omitempty"` // 月内日序号
	Seed                  int64                    `json:"seed,omitempty"`
}

// solveFailure Solve 失败响应：`{ error_kind, detail }`
type solveFailure struct {
	ErrorKind errors.Code `json:"error_kind"`
	Detail    string      `json:"detail"`
}

// Solve 处理 POST /api/v1/schedule/solve
func (h *ScheduleHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if req.Month == "" {
		respondError(w, errors.InvalidInput("month", "不能为空"))
		return
	}
	if len(req.Employees) == 0 {
		respondError(w, errors.InvalidInput("employees", "不能为空"))
		return
	}

	anchorEmployeeID := req.Employees[0].Code

	previousMonth := toDayRecords(req.PreviousMonthSchedule)
	if previousMonth == nil && h.scheduleRepo != nil {
		previousMonth = h.loadPreviousMonth(r.Context(), req.Month, req.Group)
	}

	runReq := scheduler.Request{
		Month:                 req.Month,
		Group:                 calendar.Group(req.Group),
		Employees:             req.Employees,
		AvoidanceGroups:       req.AvoidanceGroups,
		Pins:                  req.Pinned,
		PreviousMonthSchedule: previousMonth,
		FirstWorkDayOverride:  req.FirstWorkDayOverride,
		Seed:                  req.Seed,
		AnchorEmployeeID:      anchorEmployeeID,
		AnchorDate:            parseAnchorDate(h.cfg.Solver.AnchorDate),
		AnchorGroup:           calendar.Group(h.cfg.Solver.AnchorGroup),
		MaxTimeSeconds:        h.cfg.Solver.MaxTimeSeconds,
	}

	start := time.Now()
	schedule, err := scheduler.Run(r.Context(), runReq)
	duration := time.Since(start)

	if err != nil {
		appErr, ok := err.(*errors.AppError)
		if !ok {
			appErr = errors.Wrap(err, errors.CodeInternal, "求解失败")
		}
		metrics.RecordSolve(req.Group, metricStatusForError(appErr.Code), duration)
		respondJSON(w, appErr.HTTPStatus, solveFailure{ErrorKind: appErr.Code, Detail: appErr.Message})
		return
	}

	metrics.RecordSolve(req.Group, strings.ToLower(string(schedule.Status)), duration)
	if schedule.Statistics != nil {
		metrics.SetFairnessScore(req.Group, schedule.Statistics.FairnessScore)
		for shift, gini := range schedule.Statistics.Gini {
			metrics.SetFairnessGini(req.Group, string(shift), gini)
		}
	}

	if h.scheduleRepo != nil {
		if err := h.scheduleRepo.Save(r.Context(), schedule); err != nil {
			logSaveFailure(err)
		}
	}

	respondJSON(w, http.StatusOK, schedule)
}

// ValidateRequest Validate 端点的请求体：一份完整月度排班加花名册与互斥组
type ValidateRequest struct {
	Days             []model.DayRecord      `json:"schedules"`
	Employees        []model.Employee       `json:"employees"`
	AvoidanceGroups  []model.AvoidanceGroup `json:"avoidance_groups,omitempty"`
	AnchorEmployeeID string                 `json:"anchor_employee_id"`
}

// ValidateResponse Validate 端点的响应体
type ValidateResponse struct {
	Violations []validator.Violation `json:"violations"`
}

// Validate 处理 POST /api/v1/schedule/validate
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	anchorEmployeeID := req.AnchorEmployeeID
	if anchorEmployeeID == "" && len(req.Employees) > 0 {
		anchorEmployeeID = req.Employees[0].Code
	}

	v := validator.NewValidator()
	violations := v.Validate(req.Days, req.Employees, req.AvoidanceGroups, anchorEmployeeID)
	if violations == nil {
		violations = []validator.Violation{}
	}

	respondJSON(w, http.StatusOK, ValidateResponse{Violations: violations})
}

// AdviseRequest Advisor 端点的请求体：一条冲突加当前排班与今天日期
type AdviseRequest struct {
	Days      []model.DayRecord   `json:"schedules"`
	Employees []model.Employee    `json:"employees"`
	Conflict  validator.Violation `json:"conflict"`
	Today     string              `json:"today"`
}

// AdviseResponse Advisor 端点的响应体：description + changes，无建议时两者都为空
type AdviseResponse struct {
	Description string      `json:"description,omitempty"`
	Changes     []swap.Edit `json:"changes"`
}

// Advise 处理 POST /api/v1/schedule/advise
func (h *ScheduleHandler) Advise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AdviseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Today == "" {
		req.Today = time.Now().Format("2006-01-02")
	}

	advisor := swap.NewAdvisor()
	proposal := advisor.Advise(req.Days, req.Employees, req.Conflict, req.Today)

	if proposal == nil {
		respondJSON(w, http.StatusOK, AdviseResponse{Changes: []swap.Edit{}})
		return
	}
	respondJSON(w, http.StatusOK, AdviseResponse{Description: proposal.Reason, Changes: proposal.Edits})
}

// loadPreviousMonth 调用方没有随请求附带上月排班时，尝试从持久化仓储里
// 取一份已保存的结果；找不到就退化为 nil（视为无历史）
func (h *ScheduleHandler) loadPreviousMonth(ctx context.Context, month, group string) []model.DayRecord {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return nil
	}
	prevMonth := t.AddDate(0, -1, 0).Format("2006-01")

	saved, err := h.scheduleRepo.GetByMonthGroup(ctx, prevMonth, group)
	if err != nil || saved == nil {
		return nil
	}
	return saved.Days
}

// toDayRecords 把请求体中精简的"上月排班"结构转换为 history 投影器需要的
// model.DayRecord 切片；星期几、IsChief、IsPinned 对历史投影无意义，留零值
func toDayRecords(in []prevDayInput) []model.DayRecord {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.DayRecord, len(in))
	for i, d := range in {
		records := make([]model.Assignment, len(d.Records))
		for j, rec := range d.Records {
			records[j] = model.Assignment{EmployeeID: rec.EmployeeID, Date: d.Date, Shift: rec.Shift}
		}
		out[i] = model.DayRecord{Date: d.Date, Records: records}
	}
	return out
}

// parseAnchorDate 解析配置中的锚定日期，解析失败时退化为零值
func parseAnchorDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// metricStatusForError 把错误码映射为 RecordSolve 使用的状态标签
func metricStatusForError(code errors.Code) string {
	switch code {
	case errors.CodeInfeasible:
		return "infeasible"
	case errors.CodeTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// logSaveFailure 持久化求解结果失败时记录一条警告，不影响响应
func logSaveFailure(err error) {
	logger.Warn().Err(err).Msg("持久化排班结果失败")
}
