package models

// Role names form a closed set backed by the user_role table; handlers
// compare against these constants rather than free-form strings.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)
