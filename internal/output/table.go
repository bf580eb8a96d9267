// Package output renders matching results for the terminal and for CSV export.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/matthewmjones/dissertation-matching/internal/matching"

	"github.com/olekukonko/tablewriter"
)

// DefaultScoreLabel is shown for fallback assignments instead of a score.
const DefaultScoreLabel = "Default Assignment"

// Table writes the assignments as a formatted table.
func Table(w io.Writer, result *matching.Result) error {
	if result == nil || len(result.Assignments) == 0 {
		fmt.Fprintln(w, "No assignments produced.")
		return nil
	}

	table := tablewriter.NewTable(w)
	table.Header("Student", "Primary Subject", "Methodology", "Supervisor", "Match Score")

	for _, assignment := range result.Assignments {
		if err := table.Append([]string{
			assignment.Student.Name,
			assignment.Student.PrimarySubject,
			strings.Join(assignment.Student.MethodologyNeeds, ", "),
			assignment.Supervisor.Name,
			FormatScore(assignment),
		}); err != nil {
			return fmt.Errorf("append assignment row: %w", err)
		}
	}

	return table.Render()
}

// Summary writes the run statistics in a single line.
func Summary(w io.Writer, stats matching.Stats) {
	average := "n/a"
	if stats.HasAverage {
		average = fmt.Sprintf("%.2f", stats.AverageScore)
	}
	fmt.Fprintf(w, "Students: %d  Assigned: %d  Unassigned: %d  Avg score: %s\n",
		stats.Total, stats.Assigned, stats.Unassigned, average)
}

// FormatScore renders an assignment's score, substituting the default label
// for fallback assignments.
func FormatScore(assignment matching.Assignment) string {
	if assignment.Default {
		return DefaultScoreLabel
	}
	return fmt.Sprintf("%.2f", assignment.Score)
}
