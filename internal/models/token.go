package models

import "time"

// Access Token Response
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	TokenID     string    `json:"token_id"`
	IssuedAt    time.Time `json:"issued_at"`
	User        *User     `json:"user"`
}

// Tenant export artifact stored in object storage
type ExportResult struct {
	ObjectKey   string    `json:"object_key"`
	Bucket      string    `json:"bucket"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	TaskCount   int       `json:"task_count"`
	UserCount   int       `json:"user_count"`
	GeneratedAt time.Time `json:"generated_at"`
}
