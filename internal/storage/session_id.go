package storage

import "github.com/google/uuid"

// NewSessionID 生成新的会话 ID / Generates a new session ID
func NewSessionID() string {
	return uuid.NewString()
}

// NewMessageID 生成按时间排序的消息 ID (UUIDv7)
// NewMessageID generates a time-ordered message ID (UUIDv7)
func NewMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
