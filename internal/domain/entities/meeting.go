package entities

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document field names as stored in the meetings collection
const (
	FieldID                        = "_id"
	FieldTitle                     = "title"
	FieldDescription               = "description"
	FieldLanguage                  = "language"
	FieldFileID                    = "file_id"
	FieldVideoID                   = "video_id"
	FieldPlanned                   = "planned"
	FieldPlannedDate               = "planned_date"
	FieldTranscribedText           = "transcribed_text"
	FieldDetectedLanguage          = "detected_language"
	FieldSummary                   = "summary"
	FieldKeyPhrases                = "key_phrases"
	FieldNamedEntities             = "named_entities"
	FieldFrequentExpressions       = "frequent_expressions"
	FieldMostPositivePhrases       = "most_positive_phrases"
	FieldMostNegativePhrases       = "most_negative_phrases"
	FieldTranscriptionTranslations = "transcription_translations"
	FieldSummaryTranslations       = "summary_translations"
	FieldIndexedAt                 = "indexed_at"
	FieldCreatedAt                 = "created_at"
	FieldUpdatedAt                 = "updated_at"
)

// Meeting is the single mutable record a pipeline run enriches.
// Stages only add or overwrite the fields they own.
type Meeting struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Language    string             `json:"language" bson:"language"`
	FileID      string             `json:"file_id,omitempty" bson:"file_id,omitempty"`
	VideoID     string             `json:"video_id,omitempty" bson:"video_id,omitempty"`
	Planned     bool               `json:"planned" bson:"planned"`
	PlannedDate *time.Time         `json:"planned_date,omitempty" bson:"planned_date,omitempty"`

	TranscribedText  string `json:"transcribed_text,omitempty" bson:"transcribed_text,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty" bson:"detected_language,omitempty"`
	Summary          string `json:"summary,omitempty" bson:"summary,omitempty"`

	KeyPhrases          []string      `json:"key_phrases,omitempty" bson:"key_phrases,omitempty"`
	NamedEntities       []NamedEntity `json:"named_entities,omitempty" bson:"named_entities,omitempty"`
	FrequentExpressions []string      `json:"frequent_expressions,omitempty" bson:"frequent_expressions,omitempty"`
	MostPositivePhrases []string      `json:"most_positive_phrases,omitempty" bson:"most_positive_phrases,omitempty"`
	MostNegativePhrases []string      `json:"most_negative_phrases,omitempty" bson:"most_negative_phrases,omitempty"`

	TranscriptionTranslations map[string]string `json:"transcription_translations,omitempty" bson:"transcription_translations,omitempty"`
	SummaryTranslations       map[string]string `json:"summary_translations,omitempty" bson:"summary_translations,omitempty"`

	IndexedAt *time.Time `json:"indexed_at,omitempty" bson:"indexed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// NamedEntity is a recognized entity span inside the transcript
type NamedEntity struct {
	Text      string `json:"text" bson:"text"`
	StartChar int    `json:"start_char" bson:"start_char"`
	EndChar   int    `json:"end_char" bson:"end_char"`
	Label     string `json:"label" bson:"label"`
}

// NewMeeting creates an unscheduled meeting pointing at an uploaded media object
func NewMeeting(title, description, language, fileID string) *Meeting {
	now := time.Now().UTC()
	return &Meeting{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		Language:    language,
		FileID:      fileID,
		Planned:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HexID returns the 24-hex identifier used across stores and logs
func (m *Meeting) HexID() string {
	return m.ID.Hex()
}

// MediaObject returns the blob reference to transcribe, preferring file_id
func (m *Meeting) MediaObject() string {
	if strings.TrimSpace(m.FileID) != "" {
		return m.FileID
	}
	return m.VideoID
}

// StringField returns the value of a text field by its document name.
// Unknown names return an empty string.
func (m *Meeting) StringField(name string) string {
	switch name {
	case FieldTitle:
		return m.Title
	case FieldDescription:
		return m.Description
	case FieldLanguage:
		return m.Language
	case FieldFileID:
		return m.MediaObject()
	case FieldVideoID:
		return m.VideoID
	case FieldTranscribedText:
		return m.TranscribedText
	case FieldDetectedLanguage:
		return m.DetectedLanguage
	case FieldSummary:
		return m.Summary
	}
	return ""
}

// HasField reports whether a required field is present and non-empty
func (m *Meeting) HasField(name string) bool {
	return m.StringField(name) != ""
}

// IsIndexed reports whether the final stage has completed
func (m *Meeting) IsIndexed() bool {
	return m.IndexedAt != nil
}
