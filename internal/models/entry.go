package models

import "time"

// TimeEntry is a single recorded work session. Start/end times are kept as
// the 12-hour clock strings the technician typed; only the calendar dates
// are real timestamps.
type TimeEntry struct {
	ID                     int64     `json:"id"`
	UserID                 int64     `json:"userId"`
	SupportedPerson        string    `json:"supportedPerson"`
	SupportedPersonCountry string    `json:"supportedPersonCountry"`
	WorkingLanguage        string    `json:"workingLanguage"`
	StartDate              time.Time `json:"startDate"`
	EndDate                time.Time `json:"endDate"`
	StartTime              string    `json:"startTime"`
	EndTime                string    `json:"endTime"`
	WorkType               WorkType  `json:"workType"`
	Description            string    `json:"description"`
	CreatedAt              time.Time `json:"createdAt"`
}

// EntryWithTechnician pairs an entry with its owner's display name, as
// returned by the filter query.
type EntryWithTechnician struct {
	TimeEntry
	TechnicianName string
}
