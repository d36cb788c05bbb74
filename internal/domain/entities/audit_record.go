package entities

import "time"

// AuditLevel is the severity of an audit record
type AuditLevel string

const (
	AuditLevelInfo    AuditLevel = "INFO"
	AuditLevelWarning AuditLevel = "WARNING"
	AuditLevelError   AuditLevel = "ERROR"
)

// AuditTimeLayout is the timestamp layout stored with every audit record
const AuditTimeLayout = "2006-01-02 15:04:05"

// AuditRecord is one line of the per-stage execution log
type AuditRecord struct {
	TaskInstanceID string     `json:"task_instance_id" bson:"task_instance_id"`
	MeetingID      string     `json:"meeting_id" bson:"meeting_id"`
	RunID          string     `json:"run_id,omitempty" bson:"run_id,omitempty"`
	Level          AuditLevel `json:"log_level" bson:"log_level"`
	Timestamp      string     `json:"timestamp" bson:"timestamp"`
	Message        string     `json:"log_message" bson:"log_message"`
}

// NewAuditRecord builds a record stamped with the given time
func NewAuditRecord(stage, meetingID, runID string, level AuditLevel, message string, at time.Time) AuditRecord {
	return AuditRecord{
		TaskInstanceID: "talk_tracer." + stage,
		MeetingID:      meetingID,
		RunID:          runID,
		Level:          level,
		Timestamp:      at.Format(AuditTimeLayout),
		Message:        message,
	}
}
