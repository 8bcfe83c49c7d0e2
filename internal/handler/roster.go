// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/paiban/roster/internal/repository"
	"github.com/paiban/roster/pkg/errors"
	"github.com/paiban/roster/pkg/model"
)

// RosterHandler 花名册主数据处理器：员工与互斥组的增删改查，供调用方
// 在发起 Solve 请求前维护一份持久化的花名册，而不是每次都手写全量列表。
type RosterHandler struct {
	employees  *repository.EmployeeRepository
	avoidances *repository.AvoidanceGroupRepository
}

// NewRosterHandler 创建花名册处理器
func NewRosterHandler(employees *repository.EmployeeRepository, avoidances *repository.AvoidanceGroupRepository) *RosterHandler {
	return &RosterHandler{employees: employees, avoidances: avoidances}
}

// Employees 处理 /api/v1/roster/employees 的集合操作：GET 列表，POST 创建
func (h *RosterHandler) Employees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		group := r.URL.Query().Get("group")
		var (
			employees []*model.Employee
			err       error
		)
		if group != "" {
			employees, err = h.employees.ListByGroup(r.Context(), group)
		} else {
			employees, _, err = h.employees.List(r.Context(), repository.DefaultListFilter())
		}
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInternal, "查询员工列表失败"))
			return
		}
		respondJSON(w, http.StatusOK, employees)

	case http.MethodPost:
		var emp model.Employee
		if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if emp.Code == "" {
			respondError(w, errors.InvalidInput("employee_id", "不能为空"))
			return
		}
		if err := h.employees.Create(r.Context(), &emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInternal, "创建员工失败"))
			return
		}
		respondJSON(w, http.StatusCreated, emp)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// EmployeeByID 处理 /api/v1/roster/employees/{id} 的单条操作：
// GET 查询，PUT 更新，DELETE 软删除
func (h *RosterHandler) EmployeeByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDFromPath(w, r, "/api/v1/roster/employees/")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		emp, err := h.employees.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInternal, "查询员工失败"))
			return
		}
		if emp == nil {
			respondError(w, errors.NotFound("员工", id.String()))
			return
		}
		respondJSON(w, http.StatusOK, emp)

	case http.MethodPut:
		var emp model.Employee
		if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		emp.ID = id
		if err := h.employees.Update(r.Context(), &emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeNotFound, "更新员工失败"))
			return
		}
		respondJSON(w, http.StatusOK, emp)

	case http.MethodDelete:
		if err := h.employees.Delete(r.Context(), id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeNotFound, "删除员工失败"))
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// AvoidanceGroups 处理 /api/v1/roster/avoidance-groups 的集合操作：
// GET 列表，POST 创建
func (h *RosterHandler) AvoidanceGroups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		groups, err := h.avoidances.ListAll(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInternal, "查询互斥组列表失败"))
			return
		}
		respondJSON(w, http.StatusOK, groups)

	case http.MethodPost:
		var group model.AvoidanceGroup
		if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if len(group.EmployeeIDs) < 2 {
			respondError(w, errors.InvalidInput("employee_ids", "互斥组至少需要两名成员"))
			return
		}
		if err := h.avoidances.Create(r.Context(), &group); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInternal, "创建互斥组失败"))
			return
		}
		respondJSON(w, http.StatusCreated, group)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// AvoidanceGroupByID 处理 /api/v1/roster/avoidance-groups/{id} 的单条操作
func (h *RosterHandler) AvoidanceGroupByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDFromPath(w, r, "/api/v1/roster/avoidance-groups/")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		group, err := h.avoidances.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInternal, "查询互斥组失败"))
			return
		}
		if group == nil {
			respondError(w, errors.NotFound("互斥组", id.String()))
			return
		}
		respondJSON(w, http.StatusOK, group)

	case http.MethodPut:
		var group model.AvoidanceGroup
		if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		group.ID = id
		if err := h.avoidances.Update(r.Context(), &group); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeNotFound, "更新互斥组失败"))
			return
		}
		respondJSON(w, http.StatusOK, group)

	case http.MethodDelete:
		if err := h.avoidances.Delete(r.Context(), id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeNotFound, "删除互斥组失败"))
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// parseUUIDFromPath 从形如 prefix+"{uuid}" 的路径中取出 UUID，解析失败时
// 直接写出 400 响应并返回 ok=false
func parseUUIDFromPath(w http.ResponseWriter, r *http.Request, prefix string) (uuid.UUID, bool) {
	idStr := strings.TrimPrefix(r.URL.Path, prefix)
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, errors.InvalidInput("id", "不是合法的UUID"))
		return uuid.Nil, false
	}
	return id, true
}
