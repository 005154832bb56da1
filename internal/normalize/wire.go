package normalize

// Wire records mirror the upstream JSON. The API keys records by either "id" or "_id", so both are decoded and
// resolved once here; nothing downstream sees the alternate field.

type WireTask struct {
	ID             string   `json:"id"`
	AltID          string   `json:"_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	AssignedTo     string   `json:"assignedTo"`
	AssignedToName string   `json:"assignedToName"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	StartDate      string   `json:"startDate"`
	DueDate        string   `json:"dueDate"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
	LastRemark     string   `json:"lastRemark"`
	LastRemarkAt   string   `json:"lastRemarkAt"`
	Attachments    []string `json:"attachments"`
}

type WireTeamMember struct {
	ID           string `json:"id"`
	AltID        string `json:"_id"`
	Name         string `json:"name"`
	Designation  string `json:"designation"`
	Department   string `json:"department"`
	Email        string `json:"email"`
	IsActive     *bool  `json:"isActive"`
	OpenTasks    *int   `json:"openTasks"`
	OverdueTasks *int   `json:"overdueTasks"`
}

type WireRemark struct {
	ID         string `json:"id"`
	AltID      string `json:"_id"`
	Text       string `json:"text"`
	CreatedAt  string `json:"createdAt"`
	CreatedBy  string `json:"createdBy"`
	Author     string `json:"author"`
	AuthorName string `json:"authorName"`
	Type       string `json:"type"`
}

type WireMomAttachment struct {
	FileURL    string `json:"fileUrl"`
	UploadedAt string `json:"uploadedAt"`
}

type WireMom struct {
	ID            string              `json:"id"`
	AltID         string              `json:"_id"`
	Title         string              `json:"title"`
	MeetingDate   string              `json:"meetingDate"`
	Attendees     []string            `json:"attendees"`
	RawNotes      string              `json:"rawNotes"`
	Attachments   []WireMomAttachment `json:"attachments"`
	AISummary     string              `json:"aiSummary"`
	AIExtractedAt string              `json:"aiExtractedAt"`
	CreatedBy     string              `json:"createdBy"`
	CreatedAt     string              `json:"createdAt"`
}

type WireAuditLog struct {
	ID          string         `json:"id"`
	AltID       string         `json:"_id"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entityType"`
	EntityID    string         `json:"entityId"`
	PerformedBy string         `json:"performedBy"`
	CreatedAt   string         `json:"createdAt"`
	Details     map[string]any `json:"details"`
}

type WireUser struct {
	ID        string `json:"id"`
	AltID     string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"isActive"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type WireLoginUser struct {
	ID    string `json:"id"`
	AltID string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type WireLoginResponse struct {
	Token     string         `json:"token"`
	ExpiresIn string         `json:"expiresIn"`
	User      *WireLoginUser `json:"user"`
}
