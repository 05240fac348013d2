package zoho

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

// The records endpoint answers in one of two shapes depending on the form and
// API vintage:
//
//   - legacy: response.result.Employees.row[] where every field of a record is
//     a separate {val, content} pair that has to be reassembled, or
//   - flat: response.result as a plain array of already-keyed objects.
//
// Both decode paths produce the same flat field map, so the variant never
// leaks out of this package.

type apiEnvelope struct {
	Response struct {
		Result  json.RawMessage `json:"result"`
		Message string          `json:"message"`
		Status  int             `json:"status"`
	} `json:"response"`
}

type legacyResult struct {
	Employees struct {
		Row []legacyRecord `json:"row"`
	} `json:"Employees"`
}

type legacyRecord struct {
	FL []struct {
		Val     string `json:"val"`
		Content string `json:"content"`
	} `json:"FL"`
}

// decodeEmployeeRecords detects the response shape and returns one field map
// per record.
func decodeEmployeeRecords(body []byte) ([]map[string]string, error) {
	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Newf("failed to parse directory response: %w", err).
			Category(errors.CategoryDirectory).
			Component("zoho").
			Build()
	}

	result := bytes.TrimSpace(envelope.Response.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, nil
	}

	if result[0] == '[' {
		return decodeFlatResult(result)
	}
	return decodeLegacyResult(result)
}

func decodeLegacyResult(result []byte) ([]map[string]string, error) {
	var legacy legacyResult
	if err := json.Unmarshal(result, &legacy); err != nil {
		return nil, errors.Newf("failed to parse legacy directory result: %w", err).
			Category(errors.CategoryDirectory).
			Component("zoho").
			Build()
	}

	records := make([]map[string]string, 0, len(legacy.Employees.Row))
	for _, row := range legacy.Employees.Row {
		fields := make(map[string]string, len(row.FL))
		for _, fl := range row.FL {
			fields[fl.Val] = fl.Content
		}
		records = append(records, fields)
	}
	return records, nil
}

func decodeFlatResult(result []byte) ([]map[string]string, error) {
	var flat []map[string]any
	if err := json.Unmarshal(result, &flat); err != nil {
		return nil, errors.Newf("failed to parse flat directory result: %w", err).
			Category(errors.CategoryDirectory).
			Component("zoho").
			Build()
	}

	records := make([]map[string]string, 0, len(flat))
	for _, obj := range flat {
		fields := make(map[string]string, len(obj))
		for key, value := range obj {
			if value == nil {
				continue
			}
			if s, ok := value.(string); ok {
				fields[key] = s
			} else {
				fields[key] = fmt.Sprint(value)
			}
		}
		records = append(records, fields)
	}
	return records, nil
}

// fieldAliases lists, per logical profile field, the record keys to try in
// order. Key names vary between forms (e.g. "Email" vs "Email address").
var fieldAliases = map[string][]string{
	"employeeId": {"EmployeeID", "Employee ID"},
	"firstName":  {"FirstName", "First Name"},
	"lastName":   {"LastName", "Last Name"},
	"nickname":   {"Nickname", "Nick Name"},
	"email":      {"Email", "Email address", "EmailID", "Email ID"},
	"position":   {"Position", "Designation"},
}

func fieldValue(fields map[string]string, logical string) string {
	for _, alias := range fieldAliases[logical] {
		if v, ok := fields[alias]; ok && v != "" {
			return v
		}
	}
	return ""
}

// profileFromFields maps a flat record onto a staff profile.
func profileFromFields(fields map[string]string) timesheet.StaffProfile {
	return timesheet.StaffProfile{
		EmployeeID: fieldValue(fields, "employeeId"),
		FirstName:  fieldValue(fields, "firstName"),
		LastName:   fieldValue(fields, "lastName"),
		Nickname:   fieldValue(fields, "nickname"),
		Email:      fieldValue(fields, "email"),
		Position:   fieldValue(fields, "position"),
	}
}
