// package formatter provides functions to export execution history to various formats (CSV, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/thornmill/relabel/internal/shared"
	"github.com/thornmill/relabel/internal/store"
)

// ExportToCSV converts execution records to CSV format with columns:
// ID, Action, Label, Total, Success, Failed, Start, DurationMS, Retry, Error
func ExportToCSV(records []store.ExecutionRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Action", "Label", "Total", "Success", "Failed", "Start", "DurationMS", "Retry", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.Action,
			rec.LabelName,
			strconv.Itoa(rec.TotalCount),
			strconv.Itoa(rec.SuccessCount),
			strconv.Itoa(rec.FailedCount),
			rec.StartTime.Format(time.RFC3339),
			strconv.FormatInt(rec.DurationMS, 10),
			strconv.FormatBool(rec.IsRetry),
			rec.Error,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText converts execution records to plain text format, newest-first.
func ExportToText(records []store.ExecutionRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Executions: %d\n\n", len(records)))

	for i, rec := range records {
		marker := ""
		if rec.IsRetry {
			marker = " (retry)"
		}
		buf.WriteString(fmt.Sprintf("%d. %s %q%s: %d/%d succeeded",
			i+1, rec.Action, rec.LabelName, marker, rec.SuccessCount, rec.TotalCount))
		if rec.FailedCount > 0 {
			buf.WriteString(fmt.Sprintf(", failed: %s", strings.Join(rec.FailedUIDs, ", ")))
		}
		if rec.Error != "" {
			buf.WriteString(fmt.Sprintf(" [aborted: %s]", rec.Error))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ToJSON generates an indented JSON representation of execution records.
func ToJSON(records []store.ExecutionRecord) ([]byte, error) {
	return shared.MarshalJSON(records, true)
}

// WriteCSVExport writes execution history to a CSV file.
//
// Defaults to history.csv when no path is given.
func WriteCSVExport(records []store.ExecutionRecord, filepath string) (string, error) {
	if filepath == "" {
		filepath = "history.csv"
	}

	csvData, err := ExportToCSV(records)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteJSONExport writes execution history to a JSON file.
//
// Defaults to history.json when no path is given.
func WriteJSONExport(records []store.ExecutionRecord, filepath string) (string, error) {
	if filepath == "" {
		filepath = "history.json"
	}

	jsonData, err := ToJSON(records)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport writes execution history to a plain text file.
//
// Defaults to history.txt when no path is given.
func WriteTextExport(records []store.ExecutionRecord, filepath string) (string, error) {
	if filepath == "" {
		filepath = "history.txt"
	}

	textData, err := ExportToText(records)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
