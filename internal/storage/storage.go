package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ihadi/timetrack-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// EntryFilter is the set of independently optional predicates a report query
// may impose. Nil/empty fields impose no constraint; present fields combine
// with AND.
type EntryFilter struct {
	StartDate *time.Time // entries whose start date is on or after
	EndDate   *time.Time // entries whose end date is on or before
	WorkType  *string    // exact match on the stored work type name

	TechnicianID *int64 // exact match on the owning technician

	// Case-sensitive substring matches on the free-text fields.
	SupportedPerson string
	Country         string
	Language        string
}

// UserStore captures technician persistence operations needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, tech models.Technician) (models.Technician, error)
	FindByEmail(ctx context.Context, email string) (models.Technician, error)
	FindByID(ctx context.Context, id int64) (models.Technician, error)
	UpdateUser(ctx context.Context, tech models.Technician) (models.Technician, error)
}

// EntryStore captures time-entry persistence operations needed by handlers.
type EntryStore interface {
	CreateEntry(ctx context.Context, entry models.TimeEntry) (models.TimeEntry, error)
	ListEntries(ctx context.Context) ([]models.TimeEntry, error)
	GetEntry(ctx context.Context, id int64) (models.TimeEntry, error)
	UpdateEntry(ctx context.Context, entry models.TimeEntry) (models.TimeEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	FilterEntries(ctx context.Context, f EntryFilter) ([]models.EntryWithTechnician, error)
}
