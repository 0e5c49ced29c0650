package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dcms/internal/discipline"
)

// storedCases creates records the way the case service does.
func storedCases(engine *discipline.Engine, raws ...discipline.Record) *mockCaseRepo {
	cases := newMockCaseRepo()
	for _, raw := range raws {
		cases.records = append(cases.records, engine.CreateEntry(raw))
	}
	return cases
}

func dated(name, fileNumber, day string) discipline.Record {
	r := trapEntry(name, "")
	r[discipline.FieldFileNumber] = fileNumber
	r[discipline.FieldIncidentDate] = day
	return r
}

// ── Export ──

func TestExportCases(t *testing.T) {
	engine := newTestEngine()
	cases := storedCases(engine, dated("Ravi Kumar", "F-1", "2025-01-01"), dated("Sita Devi", "F-2", "2025-02-01"))
	svc := NewExportService(newTestRepo(cases, newMockUserRepo()), engine, nopLogger)

	buf, filename, err := svc.ExportCases(context.Background(), discipline.CaseFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(casesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, colID, rows[0][0])
	assert.Contains(t, rows[0], "Date of Incident")

	acb, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", acb)
}

func TestExportCases_NoMatch(t *testing.T) {
	engine := newTestEngine()
	cases := storedCases(engine, dated("Ravi Kumar", "F-1", "2025-01-01"))
	svc := NewExportService(newTestRepo(cases, newMockUserRepo()), engine, nopLogger)

	_, _, err := svc.ExportCases(context.Background(), discipline.CaseFilter{Category: "Department"})
	assert.ErrorIs(t, err, ErrExportNoCases)
}

func TestExportCalendar(t *testing.T) {
	engine := newTestEngine()
	cases := storedCases(engine, dated("Ravi Kumar", "F-1", "2025-01-01"), dated("Sita Devi", "F-2", "2025-02-01"))
	svc := NewExportService(newTestRepo(cases, newMockUserRepo()), engine, nopLogger)

	data, filename, err := svc.ExportCalendar(context.Background(), discipline.CaseFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".ics"))

	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)
	byID := map[string]*ics.VEvent{}
	for _, ev := range events {
		byID[ev.Id()] = ev
	}
	ev := byID["case-001-incidentDate@dcms"]
	require.NotNil(t, ev)
	assert.Equal(t, "Date of Incident: Ravi Kumar (F-1)", ev.GetProperty(ics.ComponentPropertySummary).Value)
}

// ── Import ──

func TestImportCases_RoundTrip(t *testing.T) {
	engine := newTestEngine()
	cases := storedCases(engine, dated("Ravi Kumar", "F-1", "2025-01-01"), dated("Sita Devi", "F-2", "2025-02-01"))
	export := NewExportService(newTestRepo(cases, newMockUserRepo()), engine, nopLogger)
	buf, _, err := export.ExportCases(context.Background(), discipline.CaseFilter{})
	require.NoError(t, err)

	target := newMockCaseRepo()
	svc := NewImportService(newTestRepo(target, newMockUserRepo()), newTestEngine(), nopLogger)
	resp, err := svc.ImportCases(context.Background(), "admin", buf)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Success, "errors: %+v", resp.Errors)
	require.Len(t, target.records, 2)

	names := []string{target.records[0].Text(discipline.FieldEmployeeName), target.records[1].Text(discipline.FieldEmployeeName)}
	assert.ElementsMatch(t, []string{"Ravi Kumar", "Sita Devi"}, names)
	for _, rec := range target.records {
		assert.True(t, rec.Bool(discipline.FieldCaseTypeConfirmed))
	}
}

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i := range rows {
		require.NoError(t, f.SetSheetRow("Sheet1", cell("A", i+1), &rows[i]))
	}
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func TestImportCases_RowErrors(t *testing.T) {
	target := newMockCaseRepo()
	svc := NewImportService(newTestRepo(target, newMockUserRepo()), newTestEngine(), nopLogger)

	buf := workbook(t,
		[]interface{}{"name", "Designation", "incidentDate", "unrelated"},
		[]interface{}{"A", "Commissioner", "2025-01-01", "x"},
		[]interface{}{"B", "", "", "x"},
		[]interface{}{},
		[]interface{}{"C", "Commissioner", "2099-01-01"},
	)

	resp, err := svc.ImportCases(context.Background(), "admin", buf)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Success)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, 3, resp.Errors[0].Row)
	assert.Contains(t, resp.Errors[0].Fields, discipline.FieldDesignation)
	assert.Equal(t, 5, resp.Errors[1].Row)
	assert.Contains(t, resp.Errors[1].Fields, discipline.FieldIncidentDate)
	assert.Len(t, target.records, 1)
	assert.Equal(t, "x", target.records[0].Text("unrelated"))
}

func TestImportCases_KeepsRetirementColumns(t *testing.T) {
	target := newMockCaseRepo()
	svc := NewImportService(newTestRepo(target, newMockUserRepo()), newTestEngine(), nopLogger)

	buf := workbook(t,
		[]interface{}{"name", "designation", "incidentDate", "description", "serviceStatus", " dateOfRetirement ", "ID"},
		[]interface{}{"A", "Commissioner", "2025-01-01", "late filing", "Retired", "", "old-id"},
		[]interface{}{"B", "Commissioner", "2025-01-01", "late filing", "Serving", "2024-06-30"},
		[]interface{}{"C", "Commissioner", "2025-01-01", "late filing", "Serving"},
	)

	resp, err := svc.ImportCases(context.Background(), "admin", buf)
	require.NoError(t, err)
	require.Equal(t, 3, resp.Success, "errors: %+v", resp.Errors)
	require.Len(t, target.records, 3)

	a, b, c := target.records[0], target.records[1], target.records[2]
	assert.Equal(t, "Retired", a.Text("serviceStatus"))
	assert.NotEqual(t, "old-id", a.ID(), "bookkeeping columns are not imported")
	assert.True(t, discipline.IsRetired(a))
	assert.Equal(t, "2024-06-30", b.Text("dateOfRetirement"))
	assert.True(t, discipline.IsRetired(b))
	assert.False(t, discipline.IsRetired(c))
}

func TestImportCases_BadInput(t *testing.T) {
	svc := NewImportService(newTestRepo(newMockCaseRepo(), newMockUserRepo()), newTestEngine(), nopLogger)
	ctx := context.Background()

	_, err := svc.ImportCases(ctx, "admin", strings.NewReader("not a spreadsheet"))
	assert.ErrorIs(t, err, ErrImportBadFile)

	_, err = svc.ImportCases(ctx, "admin", workbook(t, []interface{}{"name", "designation"}))
	assert.ErrorIs(t, err, ErrImportNoData)

	_, err = svc.ImportCases(ctx, "admin", workbook(t, []interface{}{"foo", "bar"}, []interface{}{"1", "2"}))
	assert.ErrorIs(t, err, ErrImportBadHeader)
}

// ── Reports ──

func TestReportSummary(t *testing.T) {
	cases := newMockCaseRepo(
		discipline.Record{discipline.FieldCategory: "ACB", "retirementDate": "2020-01-01"},
		discipline.Record{discipline.FieldCategory: "ACB"},
		discipline.Record{discipline.FieldCategory: "Department"},
	)
	svc := NewReportService(newTestRepo(cases, newMockUserRepo()), nopLogger)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Retired)

	b, err := svc.Buckets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, discipline.BucketCount{Total: 2, Active: 1, Retired: 1}, b.ACB)

	cases.listErr = errStorage
	_, err = svc.Summary(context.Background())
	assert.ErrorIs(t, err, errStorage)
}
