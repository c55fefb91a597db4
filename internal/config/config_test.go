package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"DECKCHAT_CONFIG_PATH", "DECKCHAT_WEBHOOK_URL", "DECKCHAT_BASE_URL", "DECKCHAT_MODEL",
		"DECKCHAT_API_KEY", "OPENAI_API_KEY", "DECKCHAT_DATA_DIR", "DECKCHAT_LOG_LEVEL",
		"DECKCHAT_LOG_FILE", "DECKCHAT_NARRATION", "DECKCHAT_FALLBACK_MS",
	} {
		t.Setenv(k, "")
	}
	work = t.TempDir()
	oldwd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return home, work
}

func TestLoadDefaults(t *testing.T) {
	home, _ := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Endpoint.URL != "" {
		t.Fatalf("endpoint.url=%q, want empty", cfg.Endpoint.URL)
	}
	if cfg.Playback.FallbackMS != 5000 {
		t.Fatalf("fallback_ms=%d, want 5000", cfg.Playback.FallbackMS)
	}
	wantBase := filepath.Join(home, ".deckchat")
	if cfg.Storage.BaseDir != wantBase {
		t.Fatalf("base_dir=%q, want %q", cfg.Storage.BaseDir, wantBase)
	}
	if cfg.Log.File != filepath.Join(wantBase, "deckchat.log") {
		t.Fatalf("log.file=%q", cfg.Log.File)
	}
	if cfg.DatabasePath() != filepath.Join(wantBase, "deckchat.db") {
		t.Fatalf("DatabasePath=%q", cfg.DatabasePath())
	}
}

func TestLoadJSONCAndPrecedence(t *testing.T) {
	home, _ := isolate(t)

	globalDir := filepath.Join(home, ".deckchat")
	if err := os.MkdirAll(globalDir, 0o755); err != nil {
		t.Fatal(err)
	}
	globalCfg := `{
  // global
  "provider": {"model": "global-model"},
  "endpoint": {"url": "https://global.example/hook"},
  "narration": {"enabled": true}
}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	projectCfg := `{
  /* project */
  "provider": {"model": "project-model"},
  "narration": {"enabled": false, "voice": "nova"},
  "playback": {"fallback_ms": 1500}
}`
	if err := os.WriteFile("deckchat.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider.Model != "project-model" {
		t.Fatalf("model=%q", cfg.Provider.Model)
	}
	if cfg.Endpoint.URL != "https://global.example/hook" {
		t.Fatalf("endpoint.url=%q", cfg.Endpoint.URL)
	}
	if cfg.Narration.Enabled {
		t.Fatalf("narration.enabled expected false")
	}
	if cfg.Narration.Voice != "nova" || cfg.Narration.Model != "tts-1" {
		t.Fatalf("narration=%+v", cfg.Narration)
	}
	if cfg.Playback.FallbackMS != 1500 {
		t.Fatalf("fallback_ms=%d", cfg.Playback.FallbackMS)
	}
}

func TestExplicitPathWinsOverProjectFile(t *testing.T) {
	_, work := isolate(t)
	if err := os.WriteFile("deckchat.config.json", []byte(`{"provider":{"model":"project"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	explicit := filepath.Join(work, "custom.jsonc")
	if err := os.WriteFile(explicit, []byte(`{"provider":{"model":"explicit"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(explicit)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider.Model != "explicit" {
		t.Fatalf("model=%q", cfg.Provider.Model)
	}
}

func TestEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("DECKCHAT_MODEL", "env-model")
	t.Setenv("DECKCHAT_WEBHOOK_URL", "https://hook.example")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")
	t.Setenv("DECKCHAT_NARRATION", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider.Model != "env-model" {
		t.Fatalf("model=%q", cfg.Provider.Model)
	}
	if cfg.Endpoint.URL != "https://hook.example" {
		t.Fatalf("endpoint.url=%q", cfg.Endpoint.URL)
	}
	if cfg.Provider.APIKey != "sk-fallback" {
		t.Fatalf("api_key=%q", cfg.Provider.APIKey)
	}
	if !cfg.Narration.Enabled {
		t.Fatalf("narration should be enabled by env")
	}
}

func TestEnvDataDirMovesDefaultLog(t *testing.T) {
	isolate(t)
	data := t.TempDir()
	t.Setenv("DECKCHAT_DATA_DIR", data)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.BaseDir != data {
		t.Fatalf("base_dir=%q, want %q", cfg.Storage.BaseDir, data)
	}
	if cfg.Log.File != filepath.Join(data, "deckchat.log") {
		t.Fatalf("log.file=%q", cfg.Log.File)
	}
}

func TestEnvInvalidNarration(t *testing.T) {
	isolate(t)
	t.Setenv("DECKCHAT_NARRATION", "maybe")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid DECKCHAT_NARRATION")
	}
}

func TestProviderModelsNormalization(t *testing.T) {
	isolate(t)

	projectCfg := `{
  "provider": {
    "model": "m2",
    "models": ["m1", "m2", "m1", "  ", "m3"]
  }
}`
	if err := os.WriteFile("deckchat.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Provider.Models) != 3 {
		t.Fatalf("unexpected models: %#v", cfg.Provider.Models)
	}
	if cfg.Provider.Models[0] != "m1" || cfg.Provider.Models[1] != "m2" || cfg.Provider.Models[2] != "m3" {
		t.Fatalf("unexpected models order: %#v", cfg.Provider.Models)
	}
}

func TestParseErrorIsReported(t *testing.T) {
	isolate(t)
	if err := os.WriteFile("deckchat.config.json", []byte(`{"provider": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestStripJSONCommentsKeepsStrings(t *testing.T) {
	in := []byte(`{"url": "https://a.example//not-a-comment", /* c */ "x": 1 // tail
}`)
	var out map[string]any
	if err := json.Unmarshal(stripJSONComments(in), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["url"] != "https://a.example//not-a-comment" {
		t.Fatalf("url=%v", out["url"])
	}
}

func TestWriteProviderModelAndEndpoint(t *testing.T) {
	_, work := isolate(t)
	if err := WriteProviderModel(work, "gpt-x"); err != nil {
		t.Fatal(err)
	}
	if err := WriteEndpointURL(work, "https://hook.example"); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider.Model != "gpt-x" {
		t.Fatalf("model=%q", cfg.Provider.Model)
	}
	if cfg.Endpoint.URL != "https://hook.example" {
		t.Fatalf("endpoint.url=%q", cfg.Endpoint.URL)
	}
}

func TestInitProjectConfigScaffold(t *testing.T) {
	isolate(t)
	path, err := InitProjectConfigScaffold()
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("scaffold is not valid JSON: %v", err)
	}
	if cfg.Playback.FallbackMS != DefaultPlaybackFallbackMS {
		t.Fatalf("scaffold fallback_ms=%d", cfg.Playback.FallbackMS)
	}
}
