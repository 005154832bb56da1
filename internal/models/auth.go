package models

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the normalized answer of POST /auth/login.
type LoginResult struct {
	Token     string
	ExpiresIn string
	UserID    string
	UserName  string
	UserEmail string
	UserRole  string
}
