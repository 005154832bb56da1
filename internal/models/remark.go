package models

import "time"

type RemarkType string

const (
	RemarkText  RemarkType = "text"
	RemarkAudio RemarkType = "audio"
)

type Remark struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	Author     string     `json:"author,omitempty"`
	AuthorName string     `json:"authorName,omitempty"`
	Type       RemarkType `json:"type,omitempty"`
}

type AudioRemarkInput struct {
	AudioURL         string `json:"audioUrl"`
	AudioDurationSec int    `json:"audioDurationSec"`
	AudioMimeType    string `json:"audioMimeType"`
}

// AuditLog is a read-only history entry for an entity.
type AuditLog struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entityType"`
	EntityID    string         `json:"entityId"`
	PerformedBy string         `json:"performedBy"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}
