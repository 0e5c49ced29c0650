package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dcms/internal/discipline"
	"dcms/internal/model"
)

// CaseRepository stores case records. Replace and Get return
// discipline.ErrNotFound for an unknown id. Read errors are returned, never
// turned into empty results.
type CaseRepository interface {
	List(ctx context.Context) ([]discipline.Record, error)
	Get(ctx context.Context, id string) (discipline.Record, error)
	Append(ctx context.Context, rec discipline.Record) error
	Replace(ctx context.Context, id string, rec discipline.Record) (discipline.Record, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// caseRepo is the gorm implementation.
type caseRepo struct {
	db *gorm.DB
}

// NewCaseRepo creates a gorm CaseRepository.
func NewCaseRepo(db *gorm.DB) CaseRepository {
	return &caseRepo{db: db}
}

func (r *caseRepo) List(ctx context.Context) ([]discipline.Record, error) {
	var rows []model.CaseRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]discipline.Record, 0, len(rows))
	for i := range rows {
		rec, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *caseRepo) Get(ctx context.Context, id string) (discipline.Record, error) {
	var row model.CaseRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &discipline.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return fromRow(&row)
}

func (r *caseRepo) Append(ctx context.Context, rec discipline.Record) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *caseRepo) Replace(ctx context.Context, id string, rec discipline.Record) (discipline.Record, error) {
	rec = rec.Clone()
	rec[discipline.KeyID] = id
	row, err := toRow(rec)
	if err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).
		Model(&model.CaseRecord{}).
		Where("id = ?", id).
		Select("*").
		Updates(row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &discipline.NotFoundError{ID: id}
	}
	return rec, nil
}

func (r *caseRepo) Remove(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CaseRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ── Row mapping ──

func toRow(rec discipline.Record) (*model.CaseRecord, error) {
	id := rec.ID()
	if id == "" {
		return nil, fmt.Errorf("case record without id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal case %s: %w", id, err)
	}
	name := rec.Text(discipline.FieldEmployeeName)
	if name == "" {
		name = rec.Text(discipline.FieldName)
	}
	sub := rec.Text(discipline.FieldSubCategory)
	if sub == "" {
		sub = rec.Text(discipline.FieldCaseType)
	}
	return &model.CaseRecord{
		ID:           id,
		FileNumber:   rec.Text(discipline.FieldFileNumber),
		EmployeeID:   rec.Text(discipline.FieldEmployeeID),
		EmployeeName: name,
		Category:     rec.Text(discipline.FieldCategory),
		SubCategory:  sub,
		Status:       rec.Text(discipline.FieldStatus),
		Severity:     rec.Text(discipline.FieldSeverity),
		Created:      rec.Text(discipline.KeyCreatedAt),
		Updated:      rec.Text(discipline.KeyUpdatedAt),
		Data:         datatypes.JSON(data),
	}, nil
}

func fromRow(row *model.CaseRecord) (discipline.Record, error) {
	var rec discipline.Record
	if err := json.Unmarshal(row.Data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal case %s: %w", row.ID, err)
	}
	if rec == nil {
		rec = discipline.Record{}
	}
	rec[discipline.KeyID] = row.ID
	return rec, nil
}
