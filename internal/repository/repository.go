package repository

import (
	"gorm.io/gorm"

	"dcms/pkg/filestore"
)

// Repository aggregates the persistence collaborators.
type Repository struct {
	Case  CaseRepository
	User  UserRepository
	Draft BatchDraftRepository
}

// NewRepository builds the gorm-backed repositories.
func NewRepository(db *gorm.DB, drafts BatchDraftRepository) *Repository {
	return &Repository{
		Case:  NewCaseRepo(db),
		User:  NewUserRepo(db),
		Draft: drafts,
	}
}

// NewFileRepository builds the flat JSON file repositories.
func NewFileRepository(store *filestore.Store, drafts BatchDraftRepository) *Repository {
	return &Repository{
		Case:  NewFileCaseRepo(store),
		User:  NewFileUserRepo(store),
		Draft: drafts,
	}
}
