package models

// WebSocket event types for the admin live feed
const (
	EventAdminAction  = "admin_action.new"
	EventLogsRecent   = "logs.recent"
	EventLogsSnapshot = "logs.snapshot"
	EventError        = "error"
)

type WSMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type WSLogsRecentPayload struct {
	Limit int `json:"limit"`
}

type WSErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
