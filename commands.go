package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/remindagent/internal/excel"
	"github.com/example/remindagent/pkg/models"
	"github.com/spf13/cobra"
)

var (
	suggestHint     string
	scheduleAt      string
	outcomeFeedback string
	importSheet     string
)

func init() {
	rootCmd.AddCommand(analyzeCmd, suggestCmd, decideCmd, scheduleCmd, rescheduleCmd,
		outcomeCmd, insightsCmd, modifyCmd, parseCmd, importCmd)

	suggestCmd.Flags().StringVar(&suggestHint, "hint", "", `preferred time, "YYYY-MM-DD HH:MM"`)
	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", `time to schedule at, "YYYY-MM-DD HH:MM" (suggested when empty)`)
	outcomeCmd.Flags().StringVar(&outcomeFeedback, "feedback", "", "free-form feedback")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet to import (first sheet by default)")
}

// printJSON writes v to the command output
func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withApp runs fn against a freshly wired app
func withApp(fn func(cmd *cobra.Command, a *app, args []string) (interface{}, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := fn(cmd, a, args)
		if err != nil {
			return err
		}
		return printJSON(cmd, out)
	}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze USER",
	Short: "Show the behavioral profile derived from a user's history",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) (interface{}, error) {
		return a.agent.AnalyzeUser(cmd.Context(), args[0])
	}),
}

var suggestCmd = &cobra.Command{
	Use:   "suggest USER TASK",
	Short: "Suggest when to schedule a task",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) (interface{}, error) {
		return a.agent.SuggestTime(cmd.Context(), args[0], args[1], suggestHint)
	}),
}

var decideCmd = &cobra.Command{
	Use:     "decide USER TASK TIME",
	Short:   "Evaluate priority, overload and breaks for a task",
	Example: `  remindagent decide u1 "Write report" "2025-06-01 15:00"`,
	Args:    cobra.ExactArgs(3),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) (interface{}, error) {
		return a.agent.Decide(cmd.Context(), args[0], args[1], args[2])
	}),
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule USER TASK",
	Short: "Record a task; the running daemon picks up its reminder",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) (interface{}, error) {
		at := scheduleAt
		if at == "" {
			s, err := a.agent.SuggestTime(cmd.Context(), args[0], args[1], "")
			if err != nil {
				return nil, err
			}
			at = models.FormatTime(s.Time)
		}
		return a.agent.ScheduleTask(cmd.Context(), args[0], args[1], at)
	}),
}

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule USER TASK",
	Short: "Suggest a fresh time for an existing task",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) (interface{}, error) {
		return a.agent.RescheduleTask(cmd.Context(), args[0], args[1])
	}),
}

var outcomeCmd = &cobra.Command{
	Use:   "outcome USER TASK OUTCOME",
	Short: "Report a task outcome (completed, failed or skipped)",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) (interface{}, error) {
		return a.agent.RecordOutcome(cmd.Context(), args[0], args[1], args[2], outcomeFeedback)
	}),
}

var insightsCmd = &cobra.Command{
	Use:   "insights USER",
	Short: "Explain a user's productivity patterns",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) (interface{}, error) {
		return a.agent.Insights(cmd.Context(), args[0])
	}),
}

var modifyCmd = &cobra.Command{
	Use:   "modify USER TASK TIME",
	Short: "Suggest changes that make a task more likely to succeed",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) (interface{}, error) {
		return a.agent.TaskModifications(cmd.Context(), args[0], args[1], args[2])
	}),
}

var parseCmd = &cobra.Command{
	Use:     "parse USER TEXT...",
	Short:   "Extract a task and time from a free-form request",
	Example: `  remindagent parse u1 call mom tomorrow at 6pm`,
	Args:    cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) (interface{}, error) {
		return a.agent.ParseRequest(cmd.Context(), args[0], strings.Join(args[1:], " "))
	}),
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import task history from an Excel or CSV file",
	Long: `Import task history. Columns: user_id, task_name, scheduled_time and the
optional completion_status, completion_time and feedback. The first row is a header.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) (interface{}, error) {
		config := excel.DefaultImportConfig(args[0])
		config.SheetName = importSheet
		config.Location = a.cfg.Scheduler.Location

		result, err := excel.ImportHistory(cmd.Context(), a.store, config)
		if err != nil {
			if result != nil {
				return nil, fmt.Errorf("%w (imported %d rows before failing)", err, result.Imported)
			}
			return nil, err
		}
		return result, nil
	}),
}
