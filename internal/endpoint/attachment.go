package endpoint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedType = errors.New("unsupported attachment type")
	ErrTooLarge        = errors.New("attachment too large")
)

// allowedExtensions mirrors the document types the webhook accepts.
var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"txt":  {},
}

// Attachment is a file sent alongside a turn.
type Attachment struct {
	Name string
	Data []byte
}

// Extension is the lowercase extension without the dot, or "" when there is none.
func (a Attachment) Extension() string {
	ext := strings.TrimPrefix(filepath.Ext(a.Name), ".")
	return strings.ToLower(ext)
}

// LoadAttachment reads path after checking its type and size.
func LoadAttachment(path string, maxMB int) (*Attachment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("attachment path is empty")
	}
	a := Attachment{Name: filepath.Base(path)}
	if _, ok := allowedExtensions[a.Extension()]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, a.Name)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attachment is a directory: %s", path)
	}
	if maxMB > 0 && info.Size() > int64(maxMB)<<20 {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, a.Name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	a.Data = data
	return &a, nil
}
