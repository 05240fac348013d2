// Package sheets backs the timesheet row store and master data with a Google
// Sheets spreadsheet accessed through a service account.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/shopstack-asia/shopstack-timesheet/internal/conf"
	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
	"github.com/shopstack-asia/shopstack-timesheet/internal/logging"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

const (
	timeLogSheet = "Time Log"

	projectsRange = "Projects!A2:D"
	tasksRange    = "Roles and Tasks!A2:B"
	timeLogRange  = "Time Log!A2:M"
	appendRange   = "Time Log!A:M"

	// Data starts on sheet row 2; row 1 is the header.
	firstDataRow = 2
)

// Store reads and writes the spreadsheet regions. It implements
// timesheet.RowStore for the Time Log region and exposes the Projects and
// Roles and Tasks regions as master data sources.
type Store struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	logger        *slog.Logger

	mu       sync.Mutex
	sheetIDs map[string]int64 // tab title -> numeric sheet id, resolved lazily
}

// New builds a Store from the configured spreadsheet id and service account
// credentials (raw JSON preferred, key file as fallback).
func New(ctx context.Context, settings *conf.SheetsSettings) (*Store, error) {
	if settings.SpreadsheetID == "" {
		return nil, errors.Newf("spreadsheet id is required").
			Category(errors.CategoryConfiguration).
			Component("sheets").
			Build()
	}

	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}
	switch {
	case settings.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(settings.CredentialsJSON)))
	case settings.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(settings.CredentialsFile))
	default:
		return nil, errors.Newf("service account credentials are required").
			Category(errors.CategoryConfiguration).
			Component("sheets").
			Build()
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Newf("failed to create sheets service: %w", err).
			Category(errors.CategorySheets).
			Component("sheets").
			Build()
	}

	logger := logging.ForService("sheets")
	logger.Info("sheets store initialized", "spreadsheet_id", settings.SpreadsheetID)

	return &Store{
		svc:           svc,
		spreadsheetID: settings.SpreadsheetID,
		logger:        logger,
		sheetIDs:      make(map[string]int64),
	}, nil
}

// Projects returns all rows of the Projects region. Empty rows are skipped.
func (s *Store) Projects(ctx context.Context) ([]timesheet.Project, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, projectsRange).Context(ctx).Do()
	if err != nil {
		return nil, s.wrapAPIError(err, "fetch projects", projectsRange)
	}

	projects := make([]timesheet.Project, 0, len(resp.Values))
	for _, values := range resp.Values {
		if p, ok := projectFromValues(values); ok {
			projects = append(projects, p)
		}
	}

	s.logger.Debug("fetched projects", "count", len(projects))
	return projects, nil
}

// Tasks returns all rows of the Roles and Tasks region. Empty rows are skipped.
func (s *Store) Tasks(ctx context.Context) ([]timesheet.Task, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, tasksRange).Context(ctx).Do()
	if err != nil {
		return nil, s.wrapAPIError(err, "fetch tasks", tasksRange)
	}

	tasks := make([]timesheet.Task, 0, len(resp.Values))
	for _, values := range resp.Values {
		if t, ok := taskFromValues(values); ok {
			tasks = append(tasks, t)
		}
	}

	s.logger.Debug("fetched tasks", "count", len(tasks))
	return tasks, nil
}

// allRows reads the full Time Log region. Rows that fail to decode (short
// rows, unparseable dates) are logged and dropped rather than failing the read.
func (s *Store) allRows(ctx context.Context) ([]timesheet.StoredRow, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, timeLogRange).Context(ctx).Do()
	if err != nil {
		return nil, s.wrapAPIError(err, "fetch time log", timeLogRange)
	}

	rows := make([]timesheet.StoredRow, 0, len(resp.Values))
	for i, values := range resp.Values {
		index := int64(i + firstDataRow)
		row, err := valuesToRow(values)
		if err != nil {
			s.logger.Warn("dropping unreadable time log row",
				"row_index", index,
				"error", err)
			continue
		}
		rows = append(rows, timesheet.StoredRow{Index: index, Row: row})
	}
	return rows, nil
}

// FindRows implements timesheet.RowStore.
func (s *Store) FindRows(ctx context.Context, date, staffID string) ([]timesheet.StoredRow, error) {
	all, err := s.allRows(ctx)
	if err != nil {
		return nil, err
	}

	var matched []timesheet.StoredRow
	for _, sr := range all {
		if sr.Row.Date == date && sr.Row.StaffID == staffID {
			matched = append(matched, sr)
		}
	}
	return matched, nil
}

// RowsBetween returns one staff member's rows with dates in [start, end],
// boundaries inclusive, both in YYYY-MM-DD form.
func (s *Store) RowsBetween(ctx context.Context, staffID, start, end string) ([]timesheet.StoredRow, error) {
	all, err := s.allRows(ctx)
	if err != nil {
		return nil, err
	}

	var matched []timesheet.StoredRow
	for _, sr := range all {
		if sr.Row.StaffID != staffID {
			continue
		}
		// Canonical YYYY-MM-DD compares correctly as a string
		if sr.Row.Date >= start && sr.Row.Date <= end {
			matched = append(matched, sr)
		}
	}
	return matched, nil
}

// UpdateRow implements timesheet.RowStore: full overwrite of one row's cells.
func (s *Store) UpdateRow(ctx context.Context, index int64, row timesheet.Row) error {
	rng := fmt.Sprintf("%s!A%d:M%d", timeLogSheet, index, index)
	vr := &sheetsapi.ValueRange{Values: [][]any{rowToValues(&row)}}

	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return s.wrapAPIError(err, "update row", rng)
	}

	s.logger.Debug("updated time log row", "row_index", index, "id", row.ID)
	return nil
}

// AppendRows implements timesheet.RowStore: single batch insert at the end.
func (s *Store) AppendRows(ctx context.Context, rows []timesheet.Row) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, 0, len(rows))
	for i := range rows {
		values = append(values, rowToValues(&rows[i]))
	}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, appendRange, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return s.wrapAPIError(err, "append rows", appendRange)
	}

	s.logger.Debug("appended time log rows", "count", len(rows))
	return nil
}

// DeleteRows implements timesheet.RowStore. The values API has no row
// deletion, so each index becomes a DeleteDimension request against the Time
// Log tab. Requests are issued one at a time in the order given; the engine
// passes indices descending so indices stay valid as rows disappear.
func (s *Store) DeleteRows(ctx context.Context, indices []int64) error {
	if len(indices) == 0 {
		return nil
	}

	sheetID, err := s.sheetID(ctx, timeLogSheet)
	if err != nil {
		return err
	}

	for _, index := range indices {
		req := &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: []*sheetsapi.Request{{
				DeleteDimension: &sheetsapi.DeleteDimensionRequest{
					Range: &sheetsapi.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: index - 1, // DimensionRange is 0-based, end exclusive
						EndIndex:   index,
					},
				},
			}},
		}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return s.wrapAPIError(err, "delete row", fmt.Sprintf("%s!%d", timeLogSheet, index))
		}
		s.logger.Debug("deleted time log row", "row_index", index)
	}
	return nil
}

// sheetID resolves a tab title to its numeric sheet id, caching results.
func (s *Store) sheetID(ctx context.Context, title string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.sheetIDs[title]; ok {
		return id, nil
	}

	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return 0, s.wrapAPIError(err, "resolve sheet id", title)
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil {
			s.sheetIDs[sheet.Properties.Title] = sheet.Properties.SheetId
		}
	}

	id, ok := s.sheetIDs[title]
	if !ok {
		return 0, errors.Newf("sheet %q not found in spreadsheet", title).
			Category(errors.CategorySheets).
			Component("sheets").
			Build()
	}
	return id, nil
}

func (s *Store) wrapAPIError(err error, operation, target string) error {
	s.logger.Error("sheets API call failed",
		"operation", operation,
		"target", target,
		"error", err)
	return errors.Newf("sheets %s failed: %w", operation, err).
		Category(errors.CategorySheets).
		Context("operation", operation).
		Context("target", target).
		Component("sheets").
		Build()
}
