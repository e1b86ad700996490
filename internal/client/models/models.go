// Package models defines client-side data models mirroring the CyberMorph
// backend's JSON payloads.
package models

// User is a backend account record.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

// TokenResponse is the payload of a successful POST /auth/login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      int64  `json:"user_id"`
	Role        string `json:"role"`
}

// Stats is returned by /user/my-stats and /admin/stats. The user-count
// fields only appear on the admin variant.
type Stats struct {
	TotalScans int64  `json:"total_scans"`
	Threats    int64  `json:"threats"`
	TotalUsers *int64 `json:"total_users,omitempty"`
	Users      *int64 `json:"users,omitempty"`
}

// ScanResponse is the raw engine output of a scan upload. Different backend
// revisions disagree on field names (verdict vs Verdicts, score vs
// malware_probability); the verdict classifier reconciles them.
type ScanResponse struct {
	ID                 int64    `json:"id,omitempty"`
	Filename           string   `json:"filename"`
	Verdict            string   `json:"verdict,omitempty"`
	Verdicts           []string `json:"Verdicts,omitempty"`
	Score              *float64 `json:"score,omitempty"`
	MalwareProbability *float64 `json:"malware_probability,omitempty"`
	Details            string   `json:"details,omitempty"`
	Status             string   `json:"status,omitempty"`
	Timestamp          string   `json:"timestamp,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
}
