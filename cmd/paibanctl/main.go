// paibanctl 是排班引擎的命令行入口：绕开 HTTP 层，直接对一份本地 JSON
// 花名册文件求解或校验，便于离线复现某次求解结果。
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/paiban/roster/pkg/calendar"
	"github.com/paiban/roster/pkg/errors"
	"github.com/paiban/roster/pkg/logger"
	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/scheduler"
	"github.com/paiban/roster/pkg/validator"
)

// rosterFile 是求解子命令读取的输入文件结构
type rosterFile struct {
	Month                 string                   `json:"month"`
	Group                 string                   `json:"group"`
	Employees             []model.Employee         `json:"employees"`
	AvoidanceGroups       []model.AvoidanceGroup   `json:"avoidance_groups,omitempty"`
	Pinned                []model.PinnedAssignment `json:"pinned,omitempty"`
	PreviousMonthSchedule []model.DayRecord        `json:"previous_month_schedule,omitempty"`
	AnchorDate            string                   `json:"anchor_date,omitempty"`
	AnchorGroup           string                   `json:"anchor_group,omitempty"`
	Seed                  int64                    `json:"seed,omitempty"`
	MaxTimeSeconds        float64                  `json:"max_time_seconds,omitempty"`
}

func main() {
	logger.Init(logger.Config{Level: "warn", Format: "console"})

	root := &cobra.Command{
		Use:   "paibanctl",
		Short: "排班引擎命令行工具",
		Long:  "paibanctl 直接调用排班求解核心，用于离线复现或排查一次月度排班结果。",
	}

	root.AddCommand(solveCmd())
	root.AddCommand(validateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func solveCmd() *cobra.Command {
	var seedOverride int64
	var maxTime float64

	cmd := &cobra.Command{
		Use:   "solve <roster.json>",
		Short: "对给定的花名册文件求解一份月度排班",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rf, err := readRosterFile(args[0])
			if err != nil {
				return err
			}

			req := scheduler.Request{
				Month:                 rf.Month,
				Group:                 calendar.Group(rf.Group),
				Employees:             rf.Employees,
				AvoidanceGroups:       rf.AvoidanceGroups,
				Pins:                  rf.Pinned,
				PreviousMonthSchedule: rf.PreviousMonthSchedule,
				AnchorEmployeeID:      anchorOf(rf.Employees),
				AnchorDate:            parseAnchorDate(rf.AnchorDate),
				AnchorGroup:           calendar.Group(rf.AnchorGroup),
				Seed:                  rf.Seed,
				MaxTimeSeconds:        rf.MaxTimeSeconds,
			}
			if seedOverride != 0 {
				req.Seed = seedOverride
			}
			if maxTime != 0 {
				req.MaxTimeSeconds = maxTime
			}

			schedule, err := scheduler.Run(context.Background(), req)
			if err != nil {
				if appErr, ok := err.(*errors.AppError); ok {
					return fmt.Errorf("%s: %s", appErr.Code, appErr.Message)
				}
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(schedule)
		},
	}

	cmd.Flags().Int64Var(&seedOverride, "seed", 0, "覆盖文件中的随机种子")
	cmd.Flags().Float64Var(&maxTime, "max-time", 0, "覆盖求解时间上限（秒）")
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <roster.json> <schedule.json>",
		Short: "对一份已求解的排班结果重新跑一遍冲突校验",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rf, err := readRosterFile(args[0])
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("读取排班文件失败: %w", err)
			}
			var schedule model.Schedule
			if err := json.Unmarshal(data, &schedule); err != nil {
				return fmt.Errorf("解析排班文件失败: %w", err)
			}

			v := validator.NewValidator()
			violations := v.Validate(schedule.Days, rf.Employees, rf.AvoidanceGroups, anchorOf(rf.Employees))

			if len(violations) == 0 {
				fmt.Println("没有发现违反。")
				return nil
			}
			for _, viol := range violations {
				fmt.Printf("[%s] %s %s: %s\n", viol.Type, viol.EmployeeID, viol.Date, viol.Message)
			}
			return fmt.Errorf("发现 %d 条违反", len(violations))
		},
	}
	return cmd
}

func readRosterFile(path string) (*rosterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取花名册文件失败: %w", err)
	}
	var rf rosterFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("解析花名册文件失败: %w", err)
	}
	return &rf, nil
}

func anchorOf(employees []model.Employee) string {
	if len(employees) == 0 {
		return ""
	}
	return employees[0].Code
}

func parseAnchorDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
