package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EndpointConfig 外部处理端点 / the external processing endpoint
type EndpointConfig struct {
	// URL 为空是合法配置：发送消息时会直接回复“未配置”提示。
	// An empty URL is legal: sends short-circuit with the "not configured" reply.
	URL         string `json:"url"`
	TimeoutMS   int    `json:"timeout_ms"`
	MaxUploadMB int    `json:"max_upload_mb"`
}

type ProviderConfig struct {
	BaseURL    string   `json:"base_url"`
	Model      string   `json:"model"`
	Models     []string `json:"models"`
	APIKey     string   `json:"api_key"`
	TimeoutMS  int      `json:"timeout_ms"`
	MaxRetries int      `json:"max_retries"`
}

// GenerationConfig 文档格式化与幻灯片内容生成参数
// GenerationConfig tunes document formatting and slide-content generation
type GenerationConfig struct {
	SourceTokenLimit   int     `json:"source_token_limit"`
	ContentTemperature float64 `json:"content_temperature"`
	FormatTemperature  float64 `json:"format_temperature"`
}

// NarrationConfig 逐页语音旁白 / per-slide narration
type NarrationConfig struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model"`
	Voice   string `json:"voice"`
	// Player 为空时按 ffplay/mpv/afplay/mpg123 顺序探测
	// Player is the audio command line; empty tries ffplay then mpv, afplay or mpg123
	Player []string `json:"player"`
}

type PlaybackConfig struct {
	FallbackMS int `json:"fallback_ms"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir"`
}

type LogConfig struct {
	Level string `json:"level"`
	// File 为空时写入 <base_dir>/deckchat.log；"-" 表示 stderr
	// File defaults to <base_dir>/deckchat.log; "-" means stderr
	File string `json:"file"`
}

type Config struct {
	Endpoint   EndpointConfig   `json:"endpoint"`
	Provider   ProviderConfig   `json:"provider"`
	Generation GenerationConfig `json:"generation"`
	Narration  NarrationConfig  `json:"narration"`
	Playback   PlaybackConfig   `json:"playback"`
	Storage    StorageConfig    `json:"storage"`
	Log        LogConfig        `json:"log"`
	Locale     string           `json:"locale"`
}

type fileGenerationConfig struct {
	SourceTokenLimit   *int     `json:"source_token_limit"`
	ContentTemperature *float64 `json:"content_temperature"`
	FormatTemperature  *float64 `json:"format_temperature"`
}

type fileNarrationConfig struct {
	Enabled *bool     `json:"enabled"`
	Model   *string   `json:"model"`
	Voice   *string   `json:"voice"`
	Player  *[]string `json:"player"`
}

type fileConfig struct {
	Endpoint   *EndpointConfig       `json:"endpoint"`
	Provider   *ProviderConfig       `json:"provider"`
	Generation *fileGenerationConfig `json:"generation"`
	Narration  *fileNarrationConfig  `json:"narration"`
	Playback   *PlaybackConfig       `json:"playback"`
	Storage    *StorageConfig        `json:"storage"`
	Log        *LogConfig            `json:"log"`
	Locale     *string               `json:"locale"`
}

func Default() Config {
	return Config{
		Endpoint: EndpointConfig{
			TimeoutMS:   DefaultEndpointTimeoutMS,
			MaxUploadMB: DefaultMaxUploadMB,
		},
		Provider: ProviderConfig{
			BaseURL:    "https://api.openai.com/v1",
			Model:      "gpt-4o-mini",
			Models:     []string{"gpt-4o-mini"},
			TimeoutMS:  120000,
			MaxRetries: DefaultProviderMaxRetries,
		},
		Generation: GenerationConfig{
			SourceTokenLimit:   DefaultSourceTokenLimit,
			ContentTemperature: 0.7,
			FormatTemperature:  0.2,
		},
		Narration: NarrationConfig{
			Enabled: false,
			Model:   "tts-1",
			Voice:   "alloy",
		},
		Playback: PlaybackConfig{FallbackMS: DefaultPlaybackFallbackMS},
		Storage:  StorageConfig{BaseDir: "~/.deckchat"},
		Log:      LogConfig{Level: "info"},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("DECKCHAT_CONFIG_PATH")); envPath != "" && resolvedPath == "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".deckchat", "config.json"),
		filepath.Join(home, ".deckchat", "config.jsonc"),
	}
}

func findProjectConfigPath() string {
	candidates := []string{
		"deckchat.config.json",
		"deckchat.config.jsonc",
		".deckchat/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Endpoint != nil {
		cfg.Endpoint = mergeEndpoint(cfg.Endpoint, *fc.Endpoint)
	}
	if fc.Provider != nil {
		cfg.Provider = mergeProvider(cfg.Provider, *fc.Provider)
	}
	if fc.Generation != nil {
		if fc.Generation.SourceTokenLimit != nil {
			cfg.Generation.SourceTokenLimit = *fc.Generation.SourceTokenLimit
		}
		if fc.Generation.ContentTemperature != nil {
			cfg.Generation.ContentTemperature = *fc.Generation.ContentTemperature
		}
		if fc.Generation.FormatTemperature != nil {
			cfg.Generation.FormatTemperature = *fc.Generation.FormatTemperature
		}
	}
	if fc.Narration != nil {
		if fc.Narration.Enabled != nil {
			cfg.Narration.Enabled = *fc.Narration.Enabled
		}
		if fc.Narration.Model != nil {
			cfg.Narration.Model = *fc.Narration.Model
		}
		if fc.Narration.Voice != nil {
			cfg.Narration.Voice = *fc.Narration.Voice
		}
		if fc.Narration.Player != nil {
			cfg.Narration.Player = append([]string(nil), (*fc.Narration.Player)...)
		}
	}
	if fc.Playback != nil && fc.Playback.FallbackMS > 0 {
		cfg.Playback.FallbackMS = fc.Playback.FallbackMS
	}
	if fc.Storage != nil && strings.TrimSpace(fc.Storage.BaseDir) != "" {
		cfg.Storage.BaseDir = fc.Storage.BaseDir
	}
	if fc.Log != nil {
		if strings.TrimSpace(fc.Log.Level) != "" {
			cfg.Log.Level = fc.Log.Level
		}
		if strings.TrimSpace(fc.Log.File) != "" {
			cfg.Log.File = fc.Log.File
		}
	}
	if fc.Locale != nil {
		cfg.Locale = *fc.Locale
	}
}

func mergeEndpoint(base EndpointConfig, override EndpointConfig) EndpointConfig {
	if strings.TrimSpace(override.URL) != "" {
		base.URL = override.URL
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	if override.MaxUploadMB > 0 {
		base.MaxUploadMB = override.MaxUploadMB
	}
	return base
}

func mergeProvider(base ProviderConfig, override ProviderConfig) ProviderConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if len(override.Models) > 0 {
		base.Models = append([]string(nil), override.Models...)
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	if override.MaxRetries > 0 {
		base.MaxRetries = override.MaxRetries
	}
	return base
}

func normalize(cfg *Config) error {
	def := Default()

	cfg.Endpoint.URL = strings.TrimSpace(cfg.Endpoint.URL)
	if cfg.Endpoint.TimeoutMS <= 0 {
		cfg.Endpoint.TimeoutMS = def.Endpoint.TimeoutMS
	}
	if cfg.Endpoint.MaxUploadMB <= 0 {
		cfg.Endpoint.MaxUploadMB = def.Endpoint.MaxUploadMB
	}

	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = def.Provider.BaseURL
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = def.Provider.Model
	}
	if cfg.Provider.TimeoutMS <= 0 {
		cfg.Provider.TimeoutMS = def.Provider.TimeoutMS
	}
	if cfg.Provider.MaxRetries <= 0 {
		cfg.Provider.MaxRetries = def.Provider.MaxRetries
	}
	cfg.Provider.Models = normalizeModelList(cfg.Provider.Models)
	if len(cfg.Provider.Models) == 0 {
		cfg.Provider.Models = append(cfg.Provider.Models, cfg.Provider.Model)
	}
	if !containsString(cfg.Provider.Models, cfg.Provider.Model) {
		cfg.Provider.Models = append([]string{cfg.Provider.Model}, cfg.Provider.Models...)
		cfg.Provider.Models = normalizeModelList(cfg.Provider.Models)
	}

	if cfg.Generation.SourceTokenLimit <= 0 {
		cfg.Generation.SourceTokenLimit = def.Generation.SourceTokenLimit
	}
	if cfg.Generation.ContentTemperature < 0 || cfg.Generation.ContentTemperature > 2 {
		cfg.Generation.ContentTemperature = def.Generation.ContentTemperature
	}
	if cfg.Generation.FormatTemperature < 0 || cfg.Generation.FormatTemperature > 2 {
		cfg.Generation.FormatTemperature = def.Generation.FormatTemperature
	}

	if strings.TrimSpace(cfg.Narration.Model) == "" {
		cfg.Narration.Model = def.Narration.Model
	}
	if strings.TrimSpace(cfg.Narration.Voice) == "" {
		cfg.Narration.Voice = def.Narration.Voice
	}
	cfg.Narration.Player = normalizeCommandList(cfg.Narration.Player)

	if cfg.Playback.FallbackMS <= 0 {
		cfg.Playback.FallbackMS = def.Playback.FallbackMS
	}

	if strings.TrimSpace(cfg.Storage.BaseDir) == "" {
		cfg.Storage.BaseDir = def.Storage.BaseDir
	}
	storageDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	cfg.Storage.BaseDir = storageDir

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	switch strings.TrimSpace(cfg.Log.File) {
	case "":
		cfg.Log.File = filepath.Join(cfg.Storage.BaseDir, "deckchat.log")
	case "-":
	default:
		logPath, err := expandPath(cfg.Log.File)
		if err != nil {
			return err
		}
		cfg.Log.File = logPath
	}
	cfg.Locale = strings.TrimSpace(cfg.Locale)
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("DECKCHAT_WEBHOOK_URL")); v != "" {
		cfg.Endpoint.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("DECKCHAT_BASE_URL")); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DECKCHAT_MODEL")); v != "" {
		cfg.Provider.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("DECKCHAT_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	} else if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("DECKCHAT_DATA_DIR")); v != "" {
		// 默认日志文件跟随数据目录 / the default log file follows the data dir
		if cfg.Log.File == filepath.Join(cfg.Storage.BaseDir, "deckchat.log") {
			cfg.Log.File = ""
		}
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DECKCHAT_LOG_FILE")); v != "" {
		cfg.Log.File = v
	}
	if v := strings.TrimSpace(os.Getenv("DECKCHAT_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("DECKCHAT_NARRATION")); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DECKCHAT_NARRATION: %q", v)
		}
		cfg.Narration.Enabled = enabled
	}
	if v := strings.TrimSpace(os.Getenv("DECKCHAT_FALLBACK_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid DECKCHAT_FALLBACK_MS: %q", v)
		}
		cfg.Playback.FallbackMS = n
	}

	return cfg, normalize(&cfg)
}

// DatabasePath 持久会话库路径 / DatabasePath is the durable session database
func (c Config) DatabasePath() string {
	return filepath.Join(c.Storage.BaseDir, "deckchat.db")
}

// AudioDir 旁白音频目录 / AudioDir holds generated narration files
func (c Config) AudioDir() string {
	return filepath.Join(c.Storage.BaseDir, "audio")
}

// HistoryFile REPL 行编辑历史 / HistoryFile is the REPL line-editor history
func (c Config) HistoryFile() string {
	return filepath.Join(c.Storage.BaseDir, "repl_history")
}

func normalizeCommandList(commands []string) []string {
	out := make([]string, 0, len(commands))
	for _, c := range commands {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func normalizeModelList(models []string) []string {
	out := make([]string, 0, len(models))
	seen := map[string]struct{}{}
	for _, m := range models {
		trimmed := strings.TrimSpace(m)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func containsString(items []string, needle string) bool {
	for _, item := range items {
		if item == needle {
			return true
		}
	}
	return false
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
