package contextkeys

// contextKey is a private type to avoid collisions with context keys defined
// in other packages.
type contextKey string

// Context keys used across the application
const (
	RefCodeKey      contextKey = "refCode"
	RequestIDKey    contextKey = "requestID"
	SubscriberIDKey contextKey = "subscriberID"
	ComponentKey    contextKey = "component"
	OperationKey    contextKey = "operation"
)
