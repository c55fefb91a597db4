package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

// Catalog 某个 locale 的消息表，英文作为缺失键的回退
// Catalog is the message table for one locale, with English as the fallback for missing keys
type Catalog struct {
	locale   string
	messages map[string]string
}

var current atomic.Pointer[Catalog]

// Default 返回进程级默认目录；未设置时按环境变量检测
// Default returns the process-wide catalog, detecting the locale from the environment when
// none was set.
func Default() *Catalog {
	if c := current.Load(); c != nil {
		return c
	}
	c := New("")
	if current.CompareAndSwap(nil, c) {
		return c
	}
	return current.Load()
}

// SetDefault 按配置的 locale 替换默认目录 / SetDefault replaces the default catalog
func SetDefault(locale string) *Catalog {
	c := New(locale)
	current.Store(c)
	return c
}

// T 使用默认目录翻译 / T translates with the default catalog
func T(key string, args ...any) string {
	return Default().T(key, args...)
}

// New 创建目录；空 locale 读取 DECKCHAT_LANG、LANG 等环境变量
// New builds a catalog; an empty locale is read from DECKCHAT_LANG, LANG and friends.
func New(locale string) *Catalog {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = detectLocale()
	}
	locale = normalizeLocale(locale)

	messages := make(map[string]string, len(EnMessages))
	for k, v := range EnMessages {
		messages[k] = v
	}
	if locale == "zh-CN" {
		for k, v := range ZhCNMessages {
			messages[k] = v
		}
	}
	return &Catalog{locale: locale, messages: messages}
}

// T formats the message for key; an unknown key is returned as-is.
func (c *Catalog) T(key string, args ...any) string {
	tmpl, ok := c.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

func (c *Catalog) Locale() string {
	return c.locale
}

func detectLocale() string {
	for _, env := range []string{"DECKCHAT_LANG", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return "en"
}

// normalizeLocale 归一为 "en"、"zh-CN" 或去掉编码后缀的原值
// normalizeLocale maps to "en", "zh-CN", or the input without its encoding suffix
func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "C" || s == "POSIX" {
		return "en"
	}
	if idx := strings.IndexAny(s, ".@"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, "_", "-")
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "zh"):
		return "zh-CN"
	case strings.HasPrefix(lower, "en"):
		return "en"
	}
	return s
}
