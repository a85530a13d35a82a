package dto

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ihadi/timetrack-be/internal/models"
	"github.com/ihadi/timetrack-be/internal/storage"
	"github.com/ihadi/timetrack-be/internal/timecalc"
)

const dateLayout = "2006-01-02"

// TimeEntryRequest is the create/update payload. Dates arrive as
// "YYYY-MM-DD" strings and clock times as "h:mm AM/PM".
type TimeEntryRequest struct {
	SupportedPerson        string `json:"supportedPerson"`
	SupportedPersonCountry string `json:"supportedPersonCountry"`
	WorkingLanguage        string `json:"workingLanguage"`
	StartDate              string `json:"startDate"`
	EndDate                string `json:"endDate"`
	StartTime              string `json:"startTime"`
	EndTime                string `json:"endTime"`
	WorkType               string `json:"workType"`
	Description            string `json:"description"`
}

// ToEntry validates the payload and converts it into a TimeEntry. Nothing is
// persisted on a validation failure.
func (r TimeEntryRequest) ToEntry() (models.TimeEntry, error) {
	var entry models.TimeEntry

	required := map[string]string{
		"supportedPerson":        r.SupportedPerson,
		"supportedPersonCountry": r.SupportedPersonCountry,
		"workingLanguage":        r.WorkingLanguage,
		"startDate":              r.StartDate,
		"endDate":                r.EndDate,
		"startTime":              r.StartTime,
		"endTime":                r.EndTime,
		"workType":               r.WorkType,
		"description":            r.Description,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return entry, fmt.Errorf("%s is required", field)
		}
	}
	if len(r.Description) > 500 {
		return entry, errors.New("description cannot exceed 500 characters")
	}

	startDate, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return entry, errors.New("startDate must use the YYYY-MM-DD format")
	}
	endDate, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return entry, errors.New("endDate must use the YYYY-MM-DD format")
	}

	if _, err := timecalc.ParseClock(r.StartTime); err != nil {
		return entry, err
	}
	if _, err := timecalc.ParseClock(r.EndTime); err != nil {
		return entry, err
	}

	workType, err := models.ParseWorkType(r.WorkType)
	if err != nil {
		return entry, err
	}

	entry = models.TimeEntry{
		SupportedPerson:        r.SupportedPerson,
		SupportedPersonCountry: r.SupportedPersonCountry,
		WorkingLanguage:        r.WorkingLanguage,
		StartDate:              startDate,
		EndDate:                endDate,
		StartTime:              r.StartTime,
		EndTime:                r.EndTime,
		WorkType:               workType,
		Description:            r.Description,
	}
	return entry, nil
}

// FilteredEntry is one report row: the entry, its owner's name, and the
// computed worked hours. Dates are rendered as YYYY-MM-DD.
type FilteredEntry struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	TechnicianName  string          `json:"technicianName"`
	SupportedPerson string          `json:"supportedPerson"`
	Country         string          `json:"supportedPersonCountry"`
	WorkingLanguage string          `json:"workingLanguage"`
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	StartTime       string          `json:"startTime"`
	EndTime         string          `json:"endTime"`
	WorkType        models.WorkType `json:"workType"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"createdAt"`
	HoursWorked     float64         `json:"hoursWorked"`
}

// NewFilteredEntry enriches a matched entry with its worked hours. The clock
// strings were validated at write time; rows that fail to parse anyway
// surface the error to the caller.
func NewFilteredEntry(item models.EntryWithTechnician) (FilteredEntry, error) {
	start, err := timecalc.ParseClock(item.StartTime)
	if err != nil {
		return FilteredEntry{}, err
	}
	end, err := timecalc.ParseClock(item.EndTime)
	if err != nil {
		return FilteredEntry{}, err
	}

	return FilteredEntry{
		ID:              item.ID,
		UserID:          item.UserID,
		TechnicianName:  item.TechnicianName,
		SupportedPerson: item.SupportedPerson,
		Country:         item.SupportedPersonCountry,
		WorkingLanguage: item.WorkingLanguage,
		StartDate:       item.StartDate.Format(dateLayout),
		EndDate:         item.EndDate.Format(dateLayout),
		StartTime:       item.StartTime,
		EndTime:         item.EndTime,
		WorkType:        item.WorkType,
		Description:     item.Description,
		CreatedAt:       item.CreatedAt,
		HoursWorked:     timecalc.ComputeHours(item.StartDate, start, item.EndDate, end),
	}, nil
}

// ParseEntryFilter reads the optional filter query parameters. A present but
// unparsable technicianId is skipped rather than rejected; malformed dates
// are an error.
func ParseEntryFilter(values url.Values) (storage.EntryFilter, error) {
	var f storage.EntryFilter

	if raw := values.Get("startDate"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, errors.New("startDate must use the YYYY-MM-DD format")
		}
		f.StartDate = &parsed
	}
	if raw := values.Get("endDate"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, errors.New("endDate must use the YYYY-MM-DD format")
		}
		f.EndDate = &parsed
	}
	if raw := values.Get("workType"); raw != "" {
		f.WorkType = &raw
	}
	if raw := values.Get("technicianId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.TechnicianID = &id
		}
	}
	f.SupportedPerson = values.Get("supportedPerson")
	f.Country = values.Get("country")
	f.Language = values.Get("language")

	return f, nil
}
