// Package export pushes pasanaco cycle matrices to Google Sheets, one sheet
// per group, so non-technical members can follow the rotation.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finanzas/internal/core"
	"finanzas/internal/scheduler"
)

type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter creates an exporter backed by a service account.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewSheetsExporter(ctx context.Context, spreadsheetID, sheetName string) (*SheetsExporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Pasanaco"
	}

	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func loadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	creds, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return creds, nil
}

// ExportCycleMatrix overwrites the group's sheet region with the full
// participants-by-rounds grid.
func (e *SheetsExporter) ExportCycleMatrix(ctx context.Context, g core.Group, rows []scheduler.ParticipantRow) error {
	values := BuildMatrixValues(g, rows)

	writeRange := fmt.Sprintf("%s!A1", e.sheetName)
	clearRange := fmt.Sprintf("%s!A1:Z%d", e.sheetName, len(values)+10)

	_, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet range: %w", err)
	}

	vr := &gsheet.ValueRange{Values: values}
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write cycle matrix: %w", err)
	}
	return nil
}

// BuildMatrixValues renders the grid: a title row, a header with one column
// per round month, then one row per participant with the cell statuses.
func BuildMatrixValues(g core.Group, rows []scheduler.ParticipantRow) [][]any {
	values := make([][]any, 0, len(rows)+2)
	values = append(values, []any{g.Name, fmt.Sprintf("monthly %s", g.MonthlyAmount.String())})

	header := []any{"Participant"}
	if len(rows) > 0 {
		for _, cell := range rows[0].Cells {
			header = append(header, fmt.Sprintf("%02d/%d", cell.Scheduled.Month, cell.Scheduled.Year))
		}
	}
	values = append(values, header)

	for _, row := range rows {
		line := []any{fmt.Sprintf("%d. %s", row.Participant.AssignedNumber, row.Participant.Name)}
		for _, cell := range row.Cells {
			line = append(line, cellLabel(cell))
		}
		values = append(values, line)
	}
	return values
}

func cellLabel(cell scheduler.Cell) string {
	switch cell.Status {
	case scheduler.StatusPaid:
		return "paid"
	case scheduler.StatusPending:
		return "pending"
	case scheduler.StatusUnscheduled:
		return "-"
	default:
		return ""
	}
}
