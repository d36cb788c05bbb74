package meeting

import (
	"time"
)

// NamedEntityResponse is an entity span in the transcript
type NamedEntityResponse struct {
	Text      string `json:"text"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
	Label     string `json:"label"`
}

// MeetingResponse represents a meeting and every enrichment stored so far
type MeetingResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Language    string     `json:"language"`
	FileID      string     `json:"file_id,omitempty"`
	Planned     bool       `json:"planned"`
	PlannedDate *time.Time `json:"planned_date,omitempty"`

	TranscribedText  string `json:"transcribed_text,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty"`
	Summary          string `json:"summary,omitempty"`

	KeyPhrases          []string              `json:"key_phrases,omitempty"`
	NamedEntities       []NamedEntityResponse `json:"named_entities,omitempty"`
	FrequentExpressions []string              `json:"frequent_expressions,omitempty"`
	MostPositivePhrases []string              `json:"most_positive_phrases,omitempty"`
	MostNegativePhrases []string              `json:"most_negative_phrases,omitempty"`

	TranscriptionTranslations map[string]string `json:"transcription_translations,omitempty"`
	SummaryTranslations       map[string]string `json:"summary_translations,omitempty"`

	IndexedAt *time.Time `json:"indexed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ScheduleResponse is returned when a run has been queued
type ScheduleResponse struct {
	MeetingID   string     `json:"meeting_id"`
	Planned     bool       `json:"planned"`
	PlannedDate *time.Time `json:"planned_date,omitempty"`
}

// StageTimingResponse is one stage of a run
type StageTimingResponse struct {
	Stage      string `json:"stage"`
	Attempts   int    `json:"attempts"`
	DurationMs int64  `json:"duration_ms"`
	Succeeded  bool   `json:"succeeded"`
}

// RunResponse represents a recorded pipeline run
type RunResponse struct {
	ID          string                `json:"id"`
	Status      string                `json:"status"`
	FailedStage *string               `json:"failed_stage,omitempty"`
	ErrorKind   *string               `json:"error_kind,omitempty"`
	LastError   *string               `json:"last_error,omitempty"`
	Attempts    int                   `json:"attempts"`
	Stages      []StageTimingResponse `json:"stages"`
	StartedAt   *time.Time            `json:"started_at,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// SearchHitResponse is one search result
type SearchHitResponse struct {
	Score   float64          `json:"score"`
	Meeting *MeetingResponse `json:"meeting"`
}

// SearchResponse wraps search results
type SearchResponse struct {
	Query string              `json:"query"`
	Hits  []SearchHitResponse `json:"hits"`
}
