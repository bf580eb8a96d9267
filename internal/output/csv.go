package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/matthewmjones/dissertation-matching/internal/matching"
)

var exportHeader = []string{
	"Student ID", "Student Name", "Supervisor ID", "Supervisor Name",
	"Match Score", "Primary Subject", "Methodology Needs",
}

// WriteCSV writes the assignments in the export format consumed by the
// school's admin spreadsheets.
func WriteCSV(w io.Writer, result *matching.Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for _, assignment := range result.Assignments {
		record := []string{
			assignment.Student.ID,
			assignment.Student.Name,
			assignment.Supervisor.ID,
			assignment.Supervisor.Name,
			FormatScore(assignment),
			assignment.Student.PrimarySubject,
			strings.Join(assignment.Student.MethodologyNeeds, ","),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write assignment for student %s: %w", assignment.Student.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
