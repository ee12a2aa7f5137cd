package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LocationPreference mirrors the location_preference column values.
type LocationPreference string

const (
	LocationRemote LocationPreference = "remote"
	LocationHybrid LocationPreference = "hybrid"
	LocationOnsite LocationPreference = "onsite"
	LocationAny    LocationPreference = "any"
)

// ExperienceLevel mirrors the experience_level column values.
type ExperienceLevel string

const (
	ExperienceEntry  ExperienceLevel = "entry"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
	ExperienceLead   ExperienceLevel = "lead"
)

// Profile is the candidate profile every pipeline stage reads. List fields
// are matched case-insensitively by the filter stage regardless of how they
// were entered.
type Profile struct {
	UserID                uuid.UUID          `json:"user_id"`
	TargetTitles          []string           `json:"target_titles"`
	TargetLocations       []string           `json:"target_locations"`
	Industries            []string           `json:"industries"`
	Skills                []string           `json:"skills"`
	ExcludedCompanies     []string           `json:"excluded_companies"`
	KeywordBlacklist      []string           `json:"keyword_blacklist"`
	LocationPreference    LocationPreference `json:"location_preference"`
	ExperienceLevel       ExperienceLevel    `json:"experience_level"`
	MinSalary             *int               `json:"min_salary,omitempty"`
	MaxApplicationsPerRun int                `json:"max_applications_per_run"`
	Notes                 string             `json:"notes"`
	ResumeText            string             `json:"resume_text"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// ApplyLogEntry is one timestamped event in a listing's append-only audit log.
type ApplyLogEntry struct {
	Step      string    `json:"step"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// JobListing is a discovered posting owned by a single user.
type JobListing struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             uuid.UUID       `json:"user_id"`
	Company            string          `json:"company"`
	Title              string          `json:"title"`
	URL                string          `json:"url,omitempty"`
	Description        string          `json:"description,omitempty"`
	Location           string          `json:"location,omitempty"`
	SalaryInfo         string          `json:"salary_info,omitempty"`
	CompanySummary     string          `json:"company_summary,omitempty"`
	Score              int             `json:"score"`
	Status             Status          `json:"status"`
	Source             string          `json:"source"`
	DuplicateHash      string          `json:"duplicate_hash"`
	TailoredResumeText string          `json:"tailored_resume_text,omitempty"`
	CoverLetterText    string          `json:"cover_letter_text,omitempty"`
	ApplyLog           []ApplyLogEntry `json:"apply_log"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// RawSearchResult is one record returned by the web-search provider. Never
// persisted; consumed by the extraction stage.
type RawSearchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Markdown    string `json:"markdown"`
}

func (r RawSearchResult) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}

func (r *RawSearchResult) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, r)
}

// SearchResultSet exists so a whole provider response can round-trip through
// the binary cache.
type SearchResultSet []RawSearchResult

func (s SearchResultSet) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

func (s *SearchResultSet) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, s)
}

// ExtractedListing is the intermediate shape between extraction and
// filter/scoring: a JobListing minus identity, status and score.
type ExtractedListing struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	SalaryInfo  string `json:"salary_info,omitempty"`
}

// RunStatus tracks a background scan run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// ScanCounters reports how many items each pipeline stage handled. Every
// stage reports its count even when nothing was saved, so callers can tell
// "nothing found" from "something failed silently".
type ScanCounters struct {
	QueriesRun    int `json:"queries_run"`
	RawResults    int `json:"raw_results"`
	JobsExtracted int `json:"jobs_extracted"`
	JobsFiltered  int `json:"jobs_filtered"`
	JobsScored    int `json:"jobs_scored"`
	JobsSaved     int `json:"jobs_saved"`
}

// ScanRun is the polled state of a backgrounded scan.
type ScanRun struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"user_id"`
	Status     RunStatus    `json:"status"`
	Counters   ScanCounters `json:"counters"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}
