package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dcms/internal/discipline"
	"dcms/internal/repository"
)

var (
	ErrExportNoCases      = errors.New("no cases match the filter")
	ErrExportGenerateFail = errors.New("failed to generate export file")
)

const (
	casesSheet   = "Cases"
	summarySheet = "Summary"
	calendarName = "Disciplinary cases"
)

// Fixed columns around the schema fields.
const (
	colID      = "ID"
	colCreated = "Created At"
	colUpdated = "Updated At"
)

// ExportService renders cases for download. Results are returned as bytes;
// the handler sets the response headers.
type ExportService interface {
	// ExportCases writes the filtered cases to an xlsx workbook.
	ExportCases(ctx context.Context, filter discipline.CaseFilter) (*bytes.Buffer, string, error)
	// ExportCalendar writes every dated milestone of the filtered cases as
	// all-day iCalendar events.
	ExportCalendar(ctx context.Context, filter discipline.CaseFilter) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	engine *discipline.Engine
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, engine *discipline.Engine, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, engine: engine, logger: logger, now: time.Now}
}

func (s *exportService) load(ctx context.Context, filter discipline.CaseFilter) ([]discipline.Record, error) {
	all, err := s.repo.Case.List(ctx)
	if err != nil {
		s.logger.Error("load cases for export failed", zap.Error(err))
		return nil, err
	}
	matched := discipline.Filter(all, filter)
	if len(matched) == 0 {
		return nil, ErrExportNoCases
	}
	return matched, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCases
// ═══════════════════════════════════════════════════════════
//
// Sheet "Cases": one row per case, newest first. Column headers are the
// field labels so the file can be fed back to the importer.
// Sheet "Summary": category buckets of the exported cases.

func (s *exportService) ExportCases(ctx context.Context, filter discipline.CaseFilter) (*bytes.Buffer, string, error) {
	records, err := s.load(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	fields := s.engine.Schema().Fields()
	header := make([]interface{}, 0, len(fields)+3)
	header = append(header, colID)
	for _, f := range fields {
		header = append(header, f.Label)
	}
	header = append(header, colCreated, colUpdated)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", casesSheet); err != nil {
		s.logger.Error("rename sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	f.SetSheetRow(casesSheet, "A1", &header)
	f.SetCellStyle(casesSheet, "A1", cell(colName(len(header)-1), 1), headerStyle)
	f.SetColWidth(casesSheet, "A", colName(len(header)-1), 20)
	f.SetPanes(casesSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i, rec := range records {
		out := s.engine.Present(rec)
		row := make([]interface{}, 0, len(header))
		row = append(row, out.ID())
		for _, fd := range fields {
			row = append(row, exportValue(fd, out[fd.Key]))
		}
		row = append(row, out.Text(discipline.KeyCreatedAt), out.Text(discipline.KeyUpdatedAt))
		f.SetSheetRow(casesSheet, cell("A", i+2), &row)
	}

	if err := s.writeSummary(f, records, headerStyle); err != nil {
		s.logger.Error("write summary sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("cases_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) writeSummary(f *excelize.File, records []discipline.Record, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	b := discipline.BucketCounts(records)
	rows := [][]interface{}{
		{"Category", "Total", "Active", "Retired"},
		{"Department", b.Department.Total, b.Department.Active, b.Department.Retired},
		{"ACB", b.ACB.Total, b.ACB.Active, b.ACB.Retired},
		{"Vigilance and Enforcement", b.Vigilance.Total, b.Vigilance.Active, b.Vigilance.Retired},
	}
	for i := range rows {
		if err := f.SetSheetRow(summarySheet, cell("A", i+1), &rows[i]); err != nil {
			return err
		}
	}
	f.SetColWidth(summarySheet, "A", "A", 28)
	return f.SetCellStyle(summarySheet, "A1", "D1", headerStyle)
}

func exportValue(f discipline.FieldDef, v any) interface{} {
	if f.Kind == discipline.KindBoolean {
		if b, _ := v.(bool); b {
			return "Yes"
		}
		return "No"
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar
// ═══════════════════════════════════════════════════════════
//
// One all-day VEVENT per filled date field per case. UIDs are stable
// (<case id>-<field>@dcms) so subscribed clients update events in place.

func (s *exportService) ExportCalendar(ctx context.Context, filter discipline.CaseFilter) ([]byte, string, error) {
	records, err := s.load(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	var dateFields []discipline.FieldDef
	for _, f := range s.engine.Schema().Fields() {
		if f.Kind == discipline.KindDate {
			dateFields = append(dateFields, f)
		}
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//dcms//case milestones//EN")
	cal.SetXWRCalName(calendarName)

	stamp := s.now().UTC()
	events := 0
	for _, rec := range records {
		out := s.engine.Present(rec)
		who := caseTitle(out)
		for _, f := range dateFields {
			day, err := time.Parse(discipline.DateLayout, out.Text(f.Key))
			if err != nil {
				continue
			}
			ev := cal.AddEvent(fmt.Sprintf("%s-%s@dcms", out.ID(), f.Key))
			ev.SetDtStampTime(stamp)
			ev.SetAllDayStartAt(day)
			ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
			ev.SetSummary(fmt.Sprintf("%s: %s", f.Label, who))
			ev.SetDescription(caseDescription(out))
			if ulb := out.Text(discipline.FieldULB); ulb != "" {
				ev.SetLocation(ulb)
			}
			events++
		}
	}
	s.logger.Debug("calendar exported", zap.Int("cases", len(records)), zap.Int("events", events))

	filename := fmt.Sprintf("cases_%s.ics", s.now().Format("20060102"))
	return []byte(cal.Serialize()), filename, nil
}

func caseTitle(r discipline.Record) string {
	name := r.Text(discipline.FieldEmployeeName)
	if name == "" {
		name = r.Text(discipline.FieldName)
	}
	if fn := r.Text(discipline.FieldFileNumber); fn != "" {
		return fmt.Sprintf("%s (%s)", name, fn)
	}
	return name
}

func caseDescription(r discipline.Record) string {
	parts := []string{}
	for _, k := range []string{discipline.FieldCategory, discipline.FieldSubCategory, discipline.FieldDesignation, discipline.FieldStatus} {
		if v := r.Text(k); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " / ")
}

// ── Helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
