package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCompletion 模型返回空内容 / the model returned no content
var ErrEmptyCompletion = errors.New("empty completion")

// CompleteJSON 以 JSON 模式请求并解码到 v；容忍 ```json 代码块包裹
// CompleteJSON runs req in JSON mode and decodes the reply into v. Replies wrapped in a
// markdown code fence are accepted.
func CompleteJSON(ctx context.Context, p Provider, req CompletionRequest, v any) error {
	req.JSON = true
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return err
	}
	body := stripCodeFence(resp.Content)
	if body == "" {
		return ErrEmptyCompletion
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
