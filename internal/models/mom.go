package models

import "time"

type MomAttachment struct {
	FileURL    string     `json:"fileUrl"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

// Mom is a minutes-of-meeting record.
type Mom struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	MeetingDate   *time.Time      `json:"meetingDate,omitempty"`
	Attendees     []string        `json:"attendees"`
	RawNotes      string          `json:"rawNotes"`
	Attachments   []MomAttachment `json:"attachments"`
	AISummary     string          `json:"aiSummary,omitempty"`
	AIExtractedAt *time.Time      `json:"aiExtractedAt,omitempty"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	CreatedAt     *time.Time      `json:"createdAt,omitempty"`
}

type MomInput struct {
	Title       string          `json:"title"`
	MeetingDate string          `json:"meetingDate"`
	Attendees   []string        `json:"attendees"`
	RawNotes    string          `json:"rawNotes"`
	Attachments []MomAttachment `json:"attachments"`
	AISummary   string          `json:"aiSummary,omitempty"`
}
