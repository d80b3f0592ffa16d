package ai

import "context"

// EmbeddingProvider binds the client to one embedding model so callers only
// deal with text in, vector out.
type EmbeddingProvider struct {
	client *OpenAICompatibleClient
	cfg    EmbeddingConfig
}

func NewEmbeddingProvider(client *OpenAICompatibleClient, cfg EmbeddingConfig) *EmbeddingProvider {
	return &EmbeddingProvider{client: client, cfg: cfg}
}

func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.client.Embed(ctx, p.cfg, text)
}

func (p *EmbeddingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return p.client.EmbedBatch(ctx, p.cfg, texts)
}

// Model returns the configured embedding model name.
func (p *EmbeddingProvider) Model() string {
	return p.cfg.Model
}

// ChatProvider binds the client to one chat model.
type ChatProvider struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
}

func NewChatProvider(client *OpenAICompatibleClient, cfg ChatConfig) *ChatProvider {
	return &ChatProvider{client: client, cfg: cfg}
}

func (p *ChatProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}
	return p.client.Complete(ctx, p.cfg, messages)
}
