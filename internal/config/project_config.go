package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InitProjectConfigScaffold 在当前工作目录下初始化项目级配置模板（./.deckchat/config.json）。
// InitProjectConfigScaffold writes a project-level config scaffold (./.deckchat/config.json)
// in the current working directory. An existing file is left alone. Returns the path.
func InitProjectConfigScaffold() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	dir := filepath.Join(cwd, ".deckchat")
	path := filepath.Join(dir, "config.json")

	// 若项目已经有配置，则尊重用户现有配置。
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("project config path is a directory: %s", path)
		}
		return path, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat project config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir .deckchat: %w", err)
	}

	cfg := Default()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write project config: %w", err)
	}
	return path, nil
}

// WriteProviderModel 将 provider.model 写入项目配置（./.deckchat/config.json）；目录不存在则创建
// WriteProviderModel writes provider.model to project config (./.deckchat/config.json); creates dir if needed
func WriteProviderModel(projectDir, model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return errors.New("model is empty")
	}
	return updateProjectSection(projectDir, "provider", func(section map[string]any) {
		section["model"] = model
	})
}

// WriteEndpointURL 将 endpoint.url 写入项目配置
// WriteEndpointURL writes endpoint.url to project config
func WriteEndpointURL(projectDir, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("endpoint url is empty")
	}
	return updateProjectSection(projectDir, "endpoint", func(section map[string]any) {
		section["url"] = url
	})
}

func updateProjectSection(projectDir, name string, mutate func(map[string]any)) error {
	dir := filepath.Join(strings.TrimSpace(projectDir), ".deckchat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir .deckchat: %w", err)
	}
	path := filepath.Join(dir, "config.json")
	var out map[string]any
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(stripJSONComments(data), &out); err != nil {
			out = nil
		}
	}
	if out == nil {
		out = make(map[string]any)
	}
	section, _ := out[name].(map[string]any)
	if section == nil {
		section = make(map[string]any)
	}
	mutate(section)
	out[name] = section
	data, err = json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
