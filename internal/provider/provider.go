package provider

import (
	"context"
)

// Message 一条提示消息 / Message is one prompt turn
type Message struct {
	Role    string
	Content string
}

// CompletionRequest 封装一次模型请求
// CompletionRequest wraps a single model call
type CompletionRequest struct {
	Model       string
	System      string
	Messages    []Message
	Temperature *float64
	MaxTokens   int
	// JSON 要求模型返回 JSON 对象 / JSON asks for a JSON object response
	JSON bool
}

// Usage token 用量统计
// Usage reports token consumption
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse 完整响应
// CompletionResponse is the complete response
type CompletionResponse struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// SpeechRequest 语音合成请求 / SpeechRequest asks for synthesized narration
type SpeechRequest struct {
	Model string
	Voice string
	Input string
}

// ModelInfo 模型基本信息
// ModelInfo describes a model
type ModelInfo struct {
	ID      string
	OwnedBy string
}

// Provider 模型提供方接口
// Provider is the model backend used by document formatting, slide generation and narration
type Provider interface {
	// Complete 发送一次非流式请求
	// Complete sends one non-streaming request
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Speak 合成语音，返回 mp3 数据
	// Speak synthesizes speech and returns mp3 bytes
	Speak(ctx context.Context, req SpeechRequest) ([]byte, error)

	// ListModels 列出可用模型
	// ListModels lists available models
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// Name 返回 provider 名称
	// Name returns the provider name
	Name() string

	// CurrentModel 返回当前活跃模型
	// CurrentModel returns the current active model
	CurrentModel() string

	// SetModel 切换活跃模型
	// SetModel switches the active model
	SetModel(model string) error
}
