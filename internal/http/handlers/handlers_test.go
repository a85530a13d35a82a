package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihadi/timetrack-be/internal/auth"
	"github.com/ihadi/timetrack-be/internal/middleware"
	"github.com/ihadi/timetrack-be/internal/models"
	"github.com/ihadi/timetrack-be/internal/storage"
)

// fakeStore is an in-memory stand-in for the Postgres store with the same
// filter semantics the SQL applies.
type fakeStore struct {
	users   map[int64]models.Technician
	entries map[int64]models.TimeEntry
	nextUID int64
	nextEID int64
	now     time.Time
}

var (
	_ storage.UserStore  = (*fakeStore)(nil)
	_ storage.EntryStore = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[int64]models.Technician),
		entries: make(map[int64]models.TimeEntry),
		now:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock so creation timestamps stay distinct.
func (s *fakeStore) tick() time.Time {
	s.now = s.now.Add(time.Minute)
	return s.now
}

func (s *fakeStore) CreateUser(_ context.Context, tech models.Technician) (models.Technician, error) {
	for _, u := range s.users {
		if u.Email == tech.Email {
			return models.Technician{}, storage.ErrAlreadyExists
		}
	}
	s.nextUID++
	tech.ID = s.nextUID
	tech.CreatedAt = s.tick()
	s.users[tech.ID] = tech
	return tech, nil
}

func (s *fakeStore) FindByEmail(_ context.Context, email string) (models.Technician, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.Technician{}, storage.ErrNotFound
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (models.Technician, error) {
	u, ok := s.users[id]
	if !ok {
		return models.Technician{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) UpdateUser(_ context.Context, tech models.Technician) (models.Technician, error) {
	for id, u := range s.users {
		if id != tech.ID && u.Email == tech.Email {
			return models.Technician{}, storage.ErrAlreadyExists
		}
	}
	if _, ok := s.users[tech.ID]; !ok {
		return models.Technician{}, storage.ErrNotFound
	}
	s.users[tech.ID] = tech
	return tech, nil
}

func (s *fakeStore) CreateEntry(_ context.Context, entry models.TimeEntry) (models.TimeEntry, error) {
	s.nextEID++
	entry.ID = s.nextEID
	entry.CreatedAt = s.tick()
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *fakeStore) ListEntries(_ context.Context) ([]models.TimeEntry, error) {
	out := make([]models.TimeEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) GetEntry(_ context.Context, id int64) (models.TimeEntry, error) {
	e, ok := s.entries[id]
	if !ok {
		return models.TimeEntry{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *fakeStore) UpdateEntry(_ context.Context, entry models.TimeEntry) (models.TimeEntry, error) {
	existing, ok := s.entries[entry.ID]
	if !ok {
		return models.TimeEntry{}, storage.ErrNotFound
	}
	entry.CreatedAt = existing.CreatedAt
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *fakeStore) DeleteEntry(_ context.Context, id int64) error {
	if _, ok := s.entries[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *fakeStore) FilterEntries(_ context.Context, f storage.EntryFilter) ([]models.EntryWithTechnician, error) {
	var out []models.EntryWithTechnician
	for _, e := range s.entries {
		if f.StartDate != nil && e.StartDate.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && e.EndDate.After(*f.EndDate) {
			continue
		}
		if f.WorkType != nil && e.WorkType.String() != *f.WorkType {
			continue
		}
		if f.TechnicianID != nil && e.UserID != *f.TechnicianID {
			continue
		}
		if f.SupportedPerson != "" && !strings.Contains(e.SupportedPerson, f.SupportedPerson) {
			continue
		}
		if f.Country != "" && !strings.Contains(e.SupportedPersonCountry, f.Country) {
			continue
		}
		if f.Language != "" && !strings.Contains(e.WorkingLanguage, f.Language) {
			continue
		}
		out = append(out, models.EntryWithTechnician{
			TimeEntry:      e,
			TechnicianName: s.users[e.UserID].Name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ----- harness -----

const testDomain = "wycliffeassociates.org"

func newTestServer(t *testing.T) (*httptest.Server, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	tokens := auth.NewTokenManager("test-secret", "timetrack-test", 8*time.Hour)
	policy := auth.NewDomainPolicy(testDomain)
	limiter := middleware.NewRateLimiter(1000, 1000)
	t.Cleanup(limiter.Stop)

	mux := http.NewServeMux()
	NewHealthHandler(time.Now()).Register(mux)
	NewAuthHandler(store, tokens, policy, limiter).Register(mux)
	NewEntryHandler(store, tokens).Register(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, store
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, method, url, token string, payload any) (int, envelope) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func registerTech(t *testing.T, ts *httptest.Server, email string) (token string, id int64) {
	t.Helper()
	status, env := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"email": email, "password": "secret123", "name": "Tech " + email,
	})
	require.Equal(t, http.StatusCreated, status)

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token, data.User.ID
}

func entryPayload() map[string]string {
	return map[string]string{
		"supportedPerson":        "Ana Quispe",
		"supportedPersonCountry": "Peru",
		"workingLanguage":        "Spanish",
		"startDate":              "2024-03-04",
		"endDate":                "2024-03-04",
		"startTime":              "9:00 AM",
		"endTime":                "5:00 PM",
		"workType":               "Training",
		"description":            "Onboarding session",
	}
}

// ----- auth -----

func TestRegisterRejectsForeignDomain(t *testing.T) {
	ts, _ := newTestServer(t)

	status, env := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"email": "tech@example.com", "password": "secret123", "name": "Outsider",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, testDomain)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts, _ := newTestServer(t)
	registerTech(t, ts, "dup@wycliffeassociates.org")

	status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"email": "dup@wycliffeassociates.org", "password": "secret123", "name": "Dup",
	})
	assert.Equal(t, http.StatusConflict, status)
}

func TestLogin(t *testing.T) {
	ts, _ := newTestServer(t)
	registerTech(t, ts, "login@wycliffeassociates.org")

	status, env := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "login@wycliffeassociates.org", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Token)

	status, _ = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "login@wycliffeassociates.org", "password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	// domain policy fires before any credential check
	status, _ = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "login@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProfileUpdate(t *testing.T) {
	ts, _ := newTestServer(t)
	token, _ := registerTech(t, ts, "profile@wycliffeassociates.org")

	status, env := doJSON(t, http.MethodGet, ts.URL+"/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	var profile struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "profile@wycliffeassociates.org", profile.Email)

	status, _ = doJSON(t, http.MethodPut, ts.URL+"/api/auth/profile", token, map[string]string{
		"name": "Renamed",
	})
	require.Equal(t, http.StatusOK, status)

	// an email change outside the org domain is refused
	status, _ = doJSON(t, http.MethodPut, ts.URL+"/api/auth/profile", token, map[string]string{
		"email": "profile@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuthRequired(t *testing.T) {
	ts, _ := newTestServer(t)

	status, _ := doJSON(t, http.MethodGet, ts.URL+"/api/timeentries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, http.MethodGet, ts.URL+"/api/timeentries", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

// ----- entries -----

func TestEntryCreateAndGet(t *testing.T) {
	ts, _ := newTestServer(t)
	token, uid := registerTech(t, ts, "entries@wycliffeassociates.org")

	status, env := doJSON(t, http.MethodPost, ts.URL+"/api/timeentries", token, entryPayload())
	require.Equal(t, http.StatusCreated, status)

	var created models.TimeEntry
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, uid, created.UserID, "owner comes from the token, not the payload")
	assert.False(t, created.CreatedAt.IsZero())

	status, env = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/timeentries/%d", ts.URL, created.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	var got models.TimeEntry
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, models.WorkTypeTraining, got.WorkType)
}

func TestEntryCreateValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	token, _ := registerTech(t, ts, "validate@wycliffeassociates.org")

	payload := entryPayload()
	payload["startTime"] = "14:00"
	status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/timeentries", token, payload)
	assert.Equal(t, http.StatusBadRequest, status)

	payload = entryPayload()
	payload["workType"] = "NotAThing"
	status, _ = doJSON(t, http.MethodPost, ts.URL+"/api/timeentries", token, payload)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestEntryUpdatePreservesOwnerAndCreation(t *testing.T) {
	ts, store := newTestServer(t)
	token, uid := registerTech(t, ts, "update@wycliffeassociates.org")

	status, env := doJSON(t, http.MethodPost, ts.URL+"/api/timeentries", token, entryPayload())
	require.Equal(t, http.StatusCreated, status)
	var created models.TimeEntry
	require.NoError(t, json.Unmarshal(env.Data, &created))

	payload := entryPayload()
	payload["supportedPerson"] = "Maria Lopez"
	status, env = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/timeentries/%d", ts.URL, created.ID), token, payload)
	require.Equal(t, http.StatusOK, status)

	var updated models.TimeEntry
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Maria Lopez", updated.SupportedPerson)
	assert.Equal(t, uid, updated.UserID)

	stored := store.entries[created.ID]
	assert.True(t, stored.CreatedAt.Equal(created.CreatedAt), "creation timestamp is immutable")
}

func TestEntryOwnership(t *testing.T) {
	ts, _ := newTestServer(t)
	token1, _ := registerTech(t, ts, "owner@wycliffeassociates.org")
	token2, _ := registerTech(t, ts, "other@wycliffeassociates.org")

	status, env := doJSON(t, http.MethodPost, ts.URL+"/api/timeentries", token1, entryPayload())
	require.Equal(t, http.StatusCreated, status)
	var created models.TimeEntry
	require.NoError(t, json.Unmarshal(env.Data, &created))
	url := fmt.Sprintf("%s/api/timeentries/%d", ts.URL, created.ID)

	// another technician can read it but cannot change or delete it
	status, _ = doJSON(t, http.MethodGet, url, token2, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, http.MethodPut, url, token2, entryPayload())
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, http.MethodDelete, url, token2, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, http.MethodDelete, url, token1, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, http.MethodGet, url, token1, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// ----- filter -----

func seedEntries(t *testing.T, ts *httptest.Server, token string) {
	t.Helper()
	seeds := []map[string]string{
		entryPayload(), // Training / Peru / Spanish, 2024-03-04
		{
			"supportedPerson":        "Joao Silva",
			"supportedPersonCountry": "Brazil",
			"workingLanguage":        "Portuguese",
			"startDate":              "2024-04-10",
			"endDate":                "2024-04-12",
			"startTime":              "8:00 AM",
			"endTime":                "8:00 AM",
			"workType":               "MAST",
			"description":            "Checking session",
		},
		{
			"supportedPerson":        "Ana Souza",
			"supportedPersonCountry": "Brazil",
			"workingLanguage":        "Portuguese",
			"startDate":              "2024-05-01",
			"endDate":                "2024-05-01",
			"startTime":              "11:00 PM",
			"endTime":                "1:00 AM",
			"workType":               "Training",
			"description":            "Late training",
		},
	}
	for _, payload := range seeds {
		status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/timeentries", token, payload)
		require.Equal(t, http.StatusCreated, status)
	}
}

type filteredItem struct {
	ID              int64   `json:"id"`
	TechnicianName  string  `json:"technicianName"`
	SupportedPerson string  `json:"supportedPerson"`
	Country         string  `json:"supportedPersonCountry"`
	StartDate       string  `json:"startDate"`
	WorkType        string  `json:"workType"`
	CreatedAt       string  `json:"createdAt"`
	HoursWorked     float64 `json:"hoursWorked"`
}

func fetchFiltered(t *testing.T, ts *httptest.Server, token, query string) []filteredItem {
	t.Helper()
	status, env := doJSON(t, http.MethodGet, ts.URL+"/api/timeentries/filter"+query, token, nil)
	require.Equal(t, http.StatusOK, status)
	var items []filteredItem
	require.NoError(t, json.Unmarshal(env.Data, &items))
	return items
}

func TestFilterNoCriteriaReturnsAllNewestFirst(t *testing.T) {
	ts, _ := newTestServer(t)
	token, _ := registerTech(t, ts, "filter@wycliffeassociates.org")
	seedEntries(t, ts, token)

	items := fetchFiltered(t, ts, token, "")
	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].CreatedAt >= items[i].CreatedAt,
			"results must be ordered newest first")
	}
	assert.Equal(t, "Ana Souza", items[0].SupportedPerson)
}

func TestFilterAndSemantics(t *testing.T) {
	ts, _ := newTestServer(t)
	token, _ := registerTech(t, ts, "and@wycliffeassociates.org")
	seedEntries(t, ts, token)

	// workType and country must both hold
	items := fetchFiltered(t, ts, token, "?workType=Training&country=Braz")
	require.Len(t, items, 1)
	assert.Equal(t, "Ana Souza", items[0].SupportedPerson)
	assert.Equal(t, 2.0, items[0].HoursWorked)

	// substring matching is case-sensitive
	items = fetchFiltered(t, ts, token, "?country=braz")
	assert.Empty(t, items)

	// date range narrows to the multi-day MAST entry
	items = fetchFiltered(t, ts, token, "?startDate=2024-04-01&endDate=2024-04-30")
	require.Len(t, items, 1)
	assert.Equal(t, "MAST", items[0].WorkType)
	assert.Equal(t, 48.0, items[0].HoursWorked)
}

func TestFilterLenientTechnicianID(t *testing.T) {
	ts, _ := newTestServer(t)
	token, uid := registerTech(t, ts, "lenient@wycliffeassociates.org")
	seedEntries(t, ts, token)

	// unparsable technicianId excludes nothing
	items := fetchFiltered(t, ts, token, "?technicianId=abc")
	assert.Len(t, items, 3)

	// a parseable one narrows to that owner
	items = fetchFiltered(t, ts, token, fmt.Sprintf("?technicianId=%d", uid))
	assert.Len(t, items, 3)

	items = fetchFiltered(t, ts, token, "?technicianId=9999")
	assert.Empty(t, items)
}

func TestFilterEnrichesTechnicianName(t *testing.T) {
	ts, _ := newTestServer(t)
	token, _ := registerTech(t, ts, "named@wycliffeassociates.org")
	seedEntries(t, ts, token)

	items := fetchFiltered(t, ts, token, "?workType=MAST")
	require.Len(t, items, 1)
	assert.Equal(t, "Tech named@wycliffeassociates.org", items[0].TechnicianName)
	assert.Equal(t, "2024-04-10", items[0].StartDate)
}
