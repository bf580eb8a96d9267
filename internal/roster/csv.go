package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const confidenceSuffix = "_confidence"

// ParseStudents reads student records from CSV data with a header row.
// Required columns: student_id, name, primary_subject, abstract. Optional:
// secondary_subject, methodology_needs (comma-separated list).
func ParseStudents(r io.Reader) ([]Student, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, fmt.Errorf("reading student data: %w", err)
	}

	students := make([]Student, 0, len(rows))
	for i, row := range rows {
		var student Student
		if err := decodeRow(row, &student); err != nil {
			return nil, fmt.Errorf("student row %d: %w", i+1, err)
		}

		if student.ID == "" {
			return nil, fmt.Errorf("student row %d: student_id is required", i+1)
		}
		if student.PrimarySubject == "" {
			return nil, fmt.Errorf("student row %d (%s): primary_subject is required", i+1, student.ID)
		}

		student.MethodologyNeeds = splitList(row["methodology_needs"])
		students = append(students, student)
	}

	return students, nil
}

// ParseSupervisors reads supervisor records from CSV data with a header row.
// Any column named <tag>_confidence is collected into the confidence map; the
// remaining required columns are supervisor_id, name and capacity.
func ParseSupervisors(r io.Reader) ([]Supervisor, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, fmt.Errorf("reading supervisor data: %w", err)
	}

	supervisors := make([]Supervisor, 0, len(rows))
	for i, row := range rows {
		var supervisor Supervisor
		if err := decodeRow(row, &supervisor); err != nil {
			return nil, fmt.Errorf("supervisor row %d: %w", i+1, err)
		}

		if supervisor.ID == "" {
			return nil, fmt.Errorf("supervisor row %d: supervisor_id is required", i+1)
		}
		if supervisor.Capacity < 0 {
			return nil, fmt.Errorf("supervisor row %d (%s): capacity must not be negative", i+1, supervisor.ID)
		}

		supervisor.Confidence = confidenceColumns(row)
		supervisor.WillNotSupervise = splitList(strings.ToLower(row["will_not_supervise"]))
		supervisor.IsDefault = parseBoolLenient(row["is_default"])

		supervisors = append(supervisors, supervisor)
	}

	return supervisors, nil
}

func readRows(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, nil
	}

	headers := make([]string, len(records[0]))
	for i, header := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func decodeRow(row map[string]string, result any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(row)
}

func confidenceColumns(row map[string]string) map[string]int {
	confidence := make(map[string]int)
	for key, value := range row {
		if !strings.HasSuffix(key, confidenceSuffix) {
			continue
		}
		tag := strings.TrimSuffix(key, confidenceSuffix)
		if tag == "" || value == "" {
			continue
		}
		level, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		confidence[tag] = level
	}
	return confidence
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// parseBoolLenient normalizes the textual booleans that arrive from
// spreadsheet exports: "true" and "1" in any casing count as true.
func parseBoolLenient(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "true" || value == "1"
}
