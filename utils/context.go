package utils

type contextKey string

// Context keys for request-scoped metadata
const (
	RequestIDKey contextKey = "request_id"
	IPAddressKey contextKey = "ip_address"
	UserAgentKey contextKey = "user_agent"
	EndpointKey  contextKey = "endpoint"
)
