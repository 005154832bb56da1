package models

// TeamMember is the canonical team member record. OpenTasks and OverdueTasks are nil when the API omitted them.
type TeamMember struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Designation  string `json:"designation,omitempty"`
	Department   string `json:"department,omitempty"`
	Email        string `json:"email,omitempty"`
	IsActive     *bool  `json:"isActive,omitempty"`
	OpenTasks    *int   `json:"openTasks,omitempty"`
	OverdueTasks *int   `json:"overdueTasks,omitempty"`
}

type TeamMemberInput struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Department  string `json:"department,omitempty"`
	Email       string `json:"email"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// User is a console operator account.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	IsActive  *bool  `json:"isActive,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type UserInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Password string `json:"password,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}
