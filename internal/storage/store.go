package storage

import "errors"

// Keys used by the console. The names match the browser build so exported histories
// line up with what is stored here.
const (
	HistoryKey       = "chatHistory"
	ActiveSessionKey = "activeChatSessionId"
)

// ErrSlotClosed 存储已关闭 / the slot has been closed
var ErrSlotClosed = errors.New("storage slot closed")

// Slot 键值存储接口：持久槽 (SQLite) 与易失槽 (进程/终端生命周期)
// Slot is a key-value slot: durable (SQLite) or volatile (process or shell lifetime)
type Slot interface {
	// Get 读取键值；不存在时 ok=false
	// Get reads a key; ok is false when the key is absent
	Get(key string) (value string, ok bool, err error)

	// Set 写入键值（覆盖）
	// Set writes a key, replacing any previous value
	Set(key, value string) error

	// Delete 删除键；键不存在不是错误
	// Delete removes a key; a missing key is not an error
	Delete(key string) error
}
