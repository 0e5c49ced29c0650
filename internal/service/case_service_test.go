package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcms/config"
	"dcms/internal/discipline"
	"dcms/internal/dto"
	"dcms/internal/repository"
	"dcms/pkg/filestore"
)

func setupTestCaseService(cfg *config.Config, cases *mockCaseRepo) CaseService {
	return NewCaseService(&cfg.Cases, newTestRepo(cases, newMockUserRepo()), newTestEngine(), nopLogger)
}

func trapEntry(name, employeeID string) discipline.Record {
	return discipline.Record{
		discipline.FieldEmployeeName: name,
		discipline.FieldEmployeeID:   employeeID,
		discipline.FieldDesignation:  "Commissioner",
		discipline.FieldCategory:     "ACB",
		discipline.FieldSubCategory:  "Trap Case",
	}
}

// ── Create ──

func TestCaseCreate_Success(t *testing.T) {
	cases := newMockCaseRepo()
	svc := setupTestCaseService(testConfig(), cases)

	got, err := svc.Create(context.Background(), "user-1", trapEntry("Ravi Kumar", "EMP-1"))
	require.NoError(t, err)

	assert.Equal(t, "case-001", got.Record.ID())
	assert.Equal(t, "2026-03-15T10:30:00.000Z", got.Record.Text(discipline.KeyCreatedAt))
	assert.True(t, got.Record.Bool(discipline.FieldCaseTypeConfirmed))
	assert.Contains(t, got.VisibleSections, discipline.SectionSuspension)
	assert.Equal(t, "Ravi Kumar", got.Record.Text(discipline.FieldName), "synonym key filled")
	require.Len(t, cases.records, 1)
}

func TestCaseCreate_ValidationFails(t *testing.T) {
	cases := newMockCaseRepo()
	svc := setupTestCaseService(testConfig(), cases)

	raw := trapEntry("Ravi Kumar", "EMP-1")
	delete(raw, discipline.FieldDesignation)

	_, err := svc.Create(context.Background(), "user-1", raw)
	var ve *discipline.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, discipline.FieldDesignation)
	assert.Empty(t, cases.records, "nothing persisted")
}

func TestCaseCreate_AppendErrorPropagates(t *testing.T) {
	cases := newMockCaseRepo()
	cases.failOn = 1
	svc := setupTestCaseService(testConfig(), cases)

	_, err := svc.Create(context.Background(), "user-1", trapEntry("Ravi Kumar", "EMP-1"))
	assert.ErrorIs(t, err, errStorage)
}

// ── Update ──

func TestCaseUpdate_KeepsIdentity(t *testing.T) {
	cases := newMockCaseRepo()
	svc := setupTestCaseService(testConfig(), cases)
	created, err := svc.Create(context.Background(), "user-1", trapEntry("Ravi Kumar", ""))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "user-1", "case-001", discipline.Record{
		discipline.KeyID:             "hijack",
		discipline.FieldIncidentDate: "2025-01-01",
		discipline.FieldDescription:  "accepted bribe",
	})
	require.NoError(t, err)

	assert.Equal(t, "case-001", updated.Record.ID())
	assert.Equal(t, created.Record.Text(discipline.KeyCreatedAt), updated.Record.Text(discipline.KeyCreatedAt))
	assert.Equal(t, "2025-01-01", updated.Record.Text(discipline.FieldDateOfIncident))
	assert.Equal(t, "accepted bribe", cases.records[0].Text(discipline.FieldDescription))
}

func TestCaseUpdate_EditProfiles(t *testing.T) {
	patch := discipline.Record{
		discipline.FieldIncidentDate: "2025-01-01",
		discipline.FieldDescription:  "accepted bribe",
	}

	// default: employee id optional
	svc := setupTestCaseService(testConfig(), newMockCaseRepo())
	_, err := svc.Create(context.Background(), "u", trapEntry("Ravi Kumar", ""))
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), "u", "case-001", patch)
	require.NoError(t, err)

	// strict: employee id required
	cfg := testConfig()
	cfg.Cases.StrictEditValidation = true
	strict := setupTestCaseService(cfg, newMockCaseRepo())
	_, err = strict.Create(context.Background(), "u", trapEntry("Ravi Kumar", ""))
	require.NoError(t, err)
	_, err = strict.Update(context.Background(), "u", "case-001", patch)
	var ve *discipline.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, discipline.FieldEmployeeID, ve.First)
}

func TestCaseUpdate_MissingDescription(t *testing.T) {
	svc := setupTestCaseService(testConfig(), newMockCaseRepo())
	_, err := svc.Create(context.Background(), "u", trapEntry("Ravi Kumar", "EMP-1"))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), "u", "case-001", discipline.Record{discipline.FieldIncidentDate: "2025-01-01"})
	var ve *discipline.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, discipline.FieldDescription)
}

// legacyCases is a cases.json as older clients wrote it: alias keys only
// and no confirmation flag.
const legacyCases = `[{
	"id": "legacy-1",
	"employeeName": "Ravi Kumar",
	"designation": "Commissioner",
	"categoryOfCase": "ACB",
	"caseType": "Trap Case",
	"dateOfIncident": "2023-01-01",
	"description": "accepted bribe",
	"trapDate": "2023-01-02",
	"suspended": "yes",
	"suspensionOrderNumber": "S-1",
	"chargesIssued": "yes",
	"chargeMemoNumber": "CM-9",
	"serviceStatus": "Retired"
}]`

func TestCaseUpdate_LegacyRowKeepsDetails(t *testing.T) {
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "cases.json"), []byte(legacyCases), 0o644))

	repo := repository.NewFileRepository(store, repository.NewMemoryDraftRepo(time.Hour))
	cfg := testConfig()
	svc := NewCaseService(&cfg.Cases, repo, newTestEngine(), nopLogger)

	updated, err := svc.Update(context.Background(), "u", "legacy-1", discipline.Record{"remarks": "follow up"})
	require.NoError(t, err)
	assert.True(t, updated.Record.Bool(discipline.FieldCaseTypeConfirmed))
	assert.Contains(t, updated.VisibleSections, discipline.SectionSuspension)

	stored, err := repo.Case.Get(context.Background(), "legacy-1")
	require.NoError(t, err)
	for k, want := range map[string]string{
		"trapDate":              "2023-01-02",
		"suspended":             "yes",
		"suspensionOrderNumber": "S-1",
		"chargeMemoNumber":      "CM-9",
		"remarks":               "follow up",
		"serviceStatus":         "Retired",
	} {
		assert.Equal(t, want, stored.Text(k), k)
	}
}

func TestCaseUpdate_NotFound(t *testing.T) {
	svc := setupTestCaseService(testConfig(), newMockCaseRepo())
	_, err := svc.Update(context.Background(), "u", "missing", discipline.Record{})
	assert.ErrorIs(t, err, discipline.ErrNotFound)
}

// ── Delete / Get ──

func TestCaseDelete(t *testing.T) {
	svc := setupTestCaseService(testConfig(), newMockCaseRepo())
	_, err := svc.Create(context.Background(), "u", trapEntry("Ravi Kumar", "EMP-1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "admin", "case-001"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "admin", "case-001"), discipline.ErrNotFound)
	_, err = svc.Get(context.Background(), "case-001")
	assert.ErrorIs(t, err, discipline.ErrNotFound)
}

// ── List / Search ──

func seededCases() *mockCaseRepo {
	return newMockCaseRepo(
		discipline.Record{discipline.KeyID: "a", discipline.KeyCreatedAt: "2025-01-01T00:00:00.000Z", discipline.FieldCategory: "ACB", discipline.FieldEmployeeName: "Ravi Kumar"},
		discipline.Record{discipline.KeyID: "b", discipline.KeyCreatedAt: "2025-02-01T00:00:00.000Z", discipline.FieldCategory: "Department", discipline.FieldEmployeeName: "Sita Devi"},
		discipline.Record{discipline.KeyID: "c", discipline.KeyCreatedAt: "2025-03-01T00:00:00.000Z", discipline.FieldCategory: "ACB", discipline.FieldEmployeeName: "Kumari Rao"},
	)
}

func TestCaseList_FilterAndPage(t *testing.T) {
	svc := setupTestCaseService(testConfig(), seededCases())

	req := &dto.CaseListRequest{}
	req.PageSize = 2
	items, total, err := svc.List(context.Background(), req)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].ID(), "newest first")

	req.Page = 2
	items, _, err = svc.List(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID())

	req = &dto.CaseListRequest{}
	req.Category = "acb"
	items, total, err = svc.List(context.Background(), req)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	req.Page = 9
	items, _, err = svc.List(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCaseList_PageSizeCapped(t *testing.T) {
	cfg := testConfig()
	cfg.Cases.PageSizeMax = 1
	svc := setupTestCaseService(cfg, seededCases())

	req := &dto.CaseListRequest{}
	req.PageSize = 100
	items, total, err := svc.List(context.Background(), req)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 1)
}

func TestCaseList_ReadErrorPropagates(t *testing.T) {
	cases := seededCases()
	cases.listErr = errStorage
	svc := setupTestCaseService(testConfig(), cases)

	_, _, err := svc.List(context.Background(), &dto.CaseListRequest{})
	assert.ErrorIs(t, err, errStorage)
	_, err = svc.Search(context.Background(), "ravi")
	assert.ErrorIs(t, err, errStorage)
}

func TestCaseSearch(t *testing.T) {
	svc := setupTestCaseService(testConfig(), seededCases())

	found, err := svc.Search(context.Background(), "kumar")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

// ── Resolve ──

func TestCaseResolve_EditUnconfirms(t *testing.T) {
	svc := setupTestCaseService(testConfig(), newMockCaseRepo())

	resp, err := svc.Resolve(&dto.ResolveRequest{
		Record: discipline.Record{
			discipline.FieldCategory:          "ACB",
			discipline.FieldSubCategory:       "Trap Case",
			discipline.FieldCaseTypeConfirmed: true,
			"trapDate":                        "2025-01-10",
		},
		Field: discipline.FieldCategory,
		Value: "Department",
	})
	require.NoError(t, err)
	assert.False(t, resp.DetailsUnlocked)
	assert.Equal(t, []discipline.SectionID{discipline.SectionBasic, discipline.SectionRemarks}, resp.VisibleSections)
	assert.Equal(t, "", resp.Record.Text("trapDate"), "hidden section cleared")
}

func TestCaseResolve_Confirm(t *testing.T) {
	svc := setupTestCaseService(testConfig(), newMockCaseRepo())

	resp, err := svc.Resolve(&dto.ResolveRequest{
		Record:  discipline.Record{discipline.FieldCategory: "ACB", discipline.FieldSubCategory: "Trap Case"},
		Confirm: true,
		Profile: "entry",
	})
	require.NoError(t, err)
	assert.True(t, resp.DetailsUnlocked)
	assert.Contains(t, resp.Errors, discipline.FieldName)

	_, err = svc.Resolve(&dto.ResolveRequest{
		Record:  discipline.Record{discipline.FieldCategory: "ACB", discipline.FieldSubCategory: "Misconduct"},
		Confirm: true,
	})
	var ve *discipline.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Resolve(&dto.ResolveRequest{Field: "noSuchField", Value: "x"})
	assert.ErrorIs(t, err, discipline.ErrUnknownField)
}

// ── One-shot batch ──

func TestCaseCreateBatch(t *testing.T) {
	cases := newMockCaseRepo()
	svc := setupTestCaseService(testConfig(), cases)

	res, err := svc.CreateBatch(context.Background(), "u", &dto.BatchCreateRequest{
		Header: discipline.Record{
			discipline.FieldFileNumber:  "F-77",
			discipline.FieldCategory:    "ACB",
			discipline.FieldSubCategory: "Trap Case",
		},
		Entries: []discipline.Record{
			{discipline.FieldName: "A", discipline.FieldDesignation: "Commissioner"},
			{discipline.FieldName: "B", discipline.FieldDesignation: "Commissioner"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Persisted)
	require.Len(t, cases.records, 2)
	for _, rec := range cases.records {
		assert.Equal(t, "F-77", rec.Text(discipline.FieldFileNumber))
		assert.Equal(t, "Trap Case", rec.Text(discipline.FieldSubCategory))
	}
}

func TestCaseCreateBatch_InvalidEntryPersistsNothing(t *testing.T) {
	cases := newMockCaseRepo()
	svc := setupTestCaseService(testConfig(), cases)

	_, err := svc.CreateBatch(context.Background(), "u", &dto.BatchCreateRequest{
		Header: discipline.Record{},
		Entries: []discipline.Record{
			{discipline.FieldName: "A", discipline.FieldDesignation: "Commissioner"},
			{discipline.FieldName: "B"},
		},
	})
	var ve *discipline.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "entry 2")
	assert.Empty(t, cases.records)
}

func TestCaseCreateBatch_PartialFailure(t *testing.T) {
	cases := newMockCaseRepo()
	cases.failOn = 2
	svc := setupTestCaseService(testConfig(), cases)

	res, err := svc.CreateBatch(context.Background(), "u", &dto.BatchCreateRequest{
		Header: discipline.Record{},
		Entries: []discipline.Record{
			{discipline.FieldName: "A", discipline.FieldDesignation: "X"},
			{discipline.FieldName: "B", discipline.FieldDesignation: "X"},
			{discipline.FieldName: "C", discipline.FieldDesignation: "X"},
		},
	})
	var be *discipline.BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 1, be.Persisted)
	assert.Equal(t, 2, be.Remaining())
	assert.True(t, errors.Is(err, errStorage))
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Persisted)
	assert.Len(t, cases.records, 1)
}
