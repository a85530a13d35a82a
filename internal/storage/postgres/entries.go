package postgres

import (
	"context"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ihadi/timetrack-be/internal/models"
	"github.com/ihadi/timetrack-be/internal/storage"
)

var entryColumns = []string{
	"id", "user_id", "supported_person", "supported_person_country",
	"working_language", "start_date", "end_date", "start_time", "end_time",
	"work_type", "description", "created_at",
}

// CreateEntry inserts a time entry. The creation timestamp is assigned by
// the database and never touched afterwards.
func (s *Store) CreateEntry(ctx context.Context, entry models.TimeEntry) (models.TimeEntry, error) {
	query, args, err := s.sb.Insert("time_entries").
		Columns("user_id", "supported_person", "supported_person_country",
			"working_language", "start_date", "end_date", "start_time", "end_time",
			"work_type", "description").
		Values(entry.UserID, entry.SupportedPerson, entry.SupportedPersonCountry,
			entry.WorkingLanguage, entry.StartDate, entry.EndDate, entry.StartTime,
			entry.EndTime, entry.WorkType.String(), entry.Description).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return models.TimeEntry{}, err
	}
	return scanEntry(s.db.QueryRow(ctx, query, args...))
}

// ListEntries returns every entry, most recently created first.
func (s *Store) ListEntries(ctx context.Context) ([]models.TimeEntry, error) {
	query, args, err := s.sb.Select(entryColumns...).
		From("time_entries").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TimeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// GetEntry fetches an entry by id.
func (s *Store) GetEntry(ctx context.Context, id int64) (models.TimeEntry, error) {
	query, args, err := s.sb.Select(entryColumns...).
		From("time_entries").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.TimeEntry{}, err
	}
	return scanEntry(s.db.QueryRow(ctx, query, args...))
}

// UpdateEntry replaces every mutable field of an entry. Id, owner, and
// creation timestamp stay as inserted.
func (s *Store) UpdateEntry(ctx context.Context, entry models.TimeEntry) (models.TimeEntry, error) {
	query, args, err := s.sb.Update("time_entries").
		Set("supported_person", entry.SupportedPerson).
		Set("supported_person_country", entry.SupportedPersonCountry).
		Set("working_language", entry.WorkingLanguage).
		Set("start_date", entry.StartDate).
		Set("end_date", entry.EndDate).
		Set("start_time", entry.StartTime).
		Set("end_time", entry.EndTime).
		Set("work_type", entry.WorkType.String()).
		Set("description", entry.Description).
		Where(sq.Eq{"id": entry.ID}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return models.TimeEntry{}, err
	}
	return scanEntry(s.db.QueryRow(ctx, query, args...))
}

// DeleteEntry removes an entry by id.
func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	query, args, err := s.sb.Delete("time_entries").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// FilterEntries composes the optional predicates into one query joined with
// the owning technician. Absent fields impose no constraint; present fields
// AND together. Ordering by creation time, newest first, is part of the
// contract.
func (s *Store) FilterEntries(ctx context.Context, f storage.EntryFilter) ([]models.EntryWithTechnician, error) {
	builder := s.sb.Select(
		"t.id", "t.user_id", "t.supported_person", "t.supported_person_country",
		"t.working_language", "t.start_date", "t.end_date", "t.start_time",
		"t.end_time", "t.work_type", "t.description", "t.created_at", "u.name").
		From("time_entries t").
		Join("users u ON u.id = t.user_id").
		OrderBy("t.created_at DESC")

	if f.StartDate != nil {
		builder = builder.Where(sq.GtOrEq{"t.start_date": *f.StartDate})
	}
	if f.EndDate != nil {
		builder = builder.Where(sq.LtOrEq{"t.end_date": *f.EndDate})
	}
	if f.WorkType != nil {
		builder = builder.Where(sq.Eq{"t.work_type": *f.WorkType})
	}
	if f.TechnicianID != nil {
		builder = builder.Where(sq.Eq{"t.user_id": *f.TechnicianID})
	}
	// LIKE keeps the substring matches case-sensitive.
	if f.SupportedPerson != "" {
		builder = builder.Where(sq.Like{"t.supported_person": likePattern(f.SupportedPerson)})
	}
	if f.Country != "" {
		builder = builder.Where(sq.Like{"t.supported_person_country": likePattern(f.Country)})
	}
	if f.Language != "" {
		builder = builder.Where(sq.Like{"t.working_language": likePattern(f.Language)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EntryWithTechnician
	for rows.Next() {
		var item models.EntryWithTechnician
		var workType string
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.SupportedPerson, &item.SupportedPersonCountry,
			&item.WorkingLanguage, &item.StartDate, &item.EndDate, &item.StartTime,
			&item.EndTime, &workType, &item.Description, &item.CreatedAt,
			&item.TechnicianName,
		); err != nil {
			return nil, err
		}
		if item.WorkType, err = models.ParseWorkType(workType); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func joinColumns() string {
	return strings.Join(entryColumns, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps the input in wildcards after quoting LIKE
// metacharacters, so filter text matches literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func scanEntry(row pgx.Row) (models.TimeEntry, error) {
	var entry models.TimeEntry
	var workType string
	err := row.Scan(
		&entry.ID, &entry.UserID, &entry.SupportedPerson, &entry.SupportedPersonCountry,
		&entry.WorkingLanguage, &entry.StartDate, &entry.EndDate, &entry.StartTime,
		&entry.EndTime, &workType, &entry.Description, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TimeEntry{}, storage.ErrNotFound
		}
		return models.TimeEntry{}, err
	}
	entry.WorkType, err = models.ParseWorkType(workType)
	if err != nil {
		return models.TimeEntry{}, err
	}
	return entry, nil
}
