package provider

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/yudhap/policyrag/helper"
)

// OpenAIProvider implements Embedder, BatchEmbedder and Completer against an
// OpenAI-compatible API (api.openai.com or an OpenRouter-style endpoint).
// Every call acquires a permit from the shared gate first.
type OpenAIProvider struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
	dimension      int
	gate           *Gate
}

// NewOpenAIProvider creates a provider from the configuration. The gate is
// shared so that embedding and completion calls count against one cap.
func NewOpenAIProvider(config *helper.Configuration, gate *Gate) (*OpenAIProvider, error) {
	if config.OpenAIAPIKey == "" {
		return nil, helper.NewError("create provider", fmt.Errorf("API key is empty"))
	}

	clientConfig := openai.DefaultConfig(config.OpenAIAPIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}

	dimension := 1536 // text-embedding-3-small
	if config.EmbeddingModel == "text-embedding-3-large" {
		dimension = 3072
	}

	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(clientConfig),
		chatModel:      config.ChatModel,
		embeddingModel: config.EmbeddingModel,
		dimension:      dimension,
		gate:           gate,
	}, nil
}

// Embed generates an embedding for a single text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) == 0 {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	if err := p.gate.Acquire(ctx); err != nil {
		return nil, err
	}
	defer p.gate.Release()

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.embeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, helper.NewError("create embedding", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	raw := resp.Data[0].Embedding
	embedding := make([]float32, len(raw))
	for i := range raw {
		embedding[i] = float32(raw[i])
	}

	return embedding, nil
}

// EmbedBatch embeds all texts, parallelized within the gate's permit cap.
// Results are attributed by index, not arrival order.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	group, groupCtx := errgroup.WithContext(ctx)
	for i := range texts {
		group.Go(func() error {
			embedding, err := p.Embed(groupCtx, texts[i])
			if err != nil {
				return fmt.Errorf("embedding text %d: %w", i, err)
			}
			embeddings[i] = embedding
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// Complete issues one chat completion and returns the trimmed content.
// Empty-content responses are returned as an empty string, not an error.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message, temperature float32) (string, error) {
	if err := p.gate.Acquire(ctx); err != nil {
		return "", err
	}
	defer p.gate.Release()

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.chatModel,
		Temperature: temperature,
		Messages:    chatMessages,
	})
	if err != nil {
		return "", helper.NewError("create chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Dimension returns the embedding dimension
func (p *OpenAIProvider) Dimension() int {
	return p.dimension
}

// ModelInfo returns model information
func (p *OpenAIProvider) ModelInfo() string {
	return "openai-" + p.embeddingModel
}
