package domain

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single persisted conversation message. Turns are immutable once
// written; Timestamp is the sort key "{UTC time, fixed-width microseconds}#{1|2}#{role}",
// where the ordinal puts the user turn before the assistant turn of one exchange.
type Turn struct {
	SessionID string `dynamodbav:"session_id"`
	Timestamp string `dynamodbav:"timestamp"`
	UserID    string `dynamodbav:"user_id"`
	Role      string `dynamodbav:"role"`
	Content   string `dynamodbav:"content"`
	TTL       int64  `dynamodbav:"ttl"`
}
