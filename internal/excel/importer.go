package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/remindagent/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Importer appends historical task events
type Importer interface {
	ImportTaskEvent(ctx context.Context, event *models.TaskEvent) (int64, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath        string // Path to the Excel or CSV file
	SheetName       string // Sheet to import; the first sheet when empty
	StartRow        int    // The row to start importing from (1-based index)
	UserColumn      string
	TaskColumn      string
	ScheduledColumn string
	StatusColumn    string // optional
	CompletedColumn string // optional
	FeedbackColumn  string // optional
	Location        *time.Location
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:        path,
		StartRow:        2, // skip header
		UserColumn:      "A",
		TaskColumn:      "B",
		ScheduledColumn: "C",
		StatusColumn:    "D",
		CompletedColumn: "E",
		FeedbackColumn:  "F",
		Location:        time.Local,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	Imported       int      `json:"imported"`
	Errors         []string `json:"errors"`
}

// ImportHistory imports task history from an Excel or CSV file. Bad rows are
// reported in the result; a storage failure aborts the import.
func ImportHistory(ctx context.Context, store Importer, config ImportConfig) (*ImportResult, error) {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.StartRow < 1 {
		config.StartRow = 1
	}

	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 || blank(row) {
			continue
		}
		result.TotalProcessed++

		event, err := parseRow(row, config)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		if _, err := store.ImportTaskEvent(ctx, event); err != nil {
			return result, fmt.Errorf("failed to import row %d: %w", i+1, err)
		}
		result.Imported++
	}
	return result, nil
}

func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(row []string, config ImportConfig) (*models.TaskEvent, error) {
	userID := cell(row, config.UserColumn)
	taskName := cell(row, config.TaskColumn)
	if userID == "" {
		return nil, errors.New("user_id cannot be empty")
	}
	if taskName == "" {
		return nil, errors.New("task_name cannot be empty")
	}

	scheduled, err := models.ParseInputTime(cell(row, config.ScheduledColumn), config.Location)
	if err != nil {
		return nil, fmt.Errorf("scheduled_time: %w", err)
	}

	event := &models.TaskEvent{
		UserID:           userID,
		TaskName:         taskName,
		ScheduledTime:    scheduled,
		CompletionStatus: models.StatusPending,
		Feedback:         cell(row, config.FeedbackColumn),
	}

	if status := cell(row, config.StatusColumn); status != "" && !strings.EqualFold(status, string(models.StatusPending)) {
		outcome, err := models.ParseOutcome(status)
		if err != nil {
			return nil, err
		}
		event.CompletionStatus = outcome
	}

	if completed := cell(row, config.CompletedColumn); completed != "" {
		if !event.Resolved() {
			return nil, errors.New("completion_time given for an unresolved task")
		}
		t, err := models.ParseInputTime(completed, config.Location)
		if err != nil {
			return nil, fmt.Errorf("completion_time: %w", err)
		}
		event.CompletionTime = &t
	}
	return event, nil
}

// cell returns the trimmed value of the given column, or "" when the column is unset or missing
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
