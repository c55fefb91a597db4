package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"deckchat/internal/chat"
)

// ImportHistory 将浏览器导出的 chatHistory JSON 合并进持久槽，已存在的会话 ID 跳过
// ImportHistory merges a browser-exported chatHistory JSON file into the durable slot.
// Sessions whose id is already stored are skipped. It returns the number imported.
func ImportHistory(path string, slot Slot) (int, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, fmt.Errorf("import path is empty")
	}

	incoming := map[string]chat.Session{}
	if err := readJSON(path, &incoming); err != nil {
		return 0, fmt.Errorf("read export %s: %w", path, err)
	}

	existing := map[string]json.RawMessage{}
	raw, ok, err := slot.Get(HistoryKey)
	if err != nil {
		return 0, err
	}
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			// 损坏的历史按空处理 / A corrupt history is treated as empty
			existing = map[string]json.RawMessage{}
		}
	}

	imported := 0
	for id, sess := range incoming {
		if strings.TrimSpace(id) == "" {
			continue
		}
		// 检查是否已存在 / Check if already present
		if _, dup := existing[id]; dup {
			continue
		}
		if sess.Title == "" {
			sess.Title = chat.DefaultTitle
		}
		if sess.Messages == nil {
			sess.Messages = []chat.Message{}
		}
		data, err := json.Marshal(sess)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip import %s: %v\n", id, err)
			continue
		}
		existing[id] = data
		imported++
	}
	if imported == 0 {
		return 0, nil
	}

	merged, err := json.Marshal(existing)
	if err != nil {
		return 0, fmt.Errorf("marshal history: %w", err)
	}
	if err := slot.Set(HistoryKey, string(merged)); err != nil {
		return 0, err
	}
	return imported, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
