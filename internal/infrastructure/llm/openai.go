package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"StockResearch/internal/config"
	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
)

const webSearchTool = "web_search_preview"

// ResearchClient implements ports.ResearchDispatcher on the OpenAI Responses API.
type ResearchClient struct {
	client     openai.Client
	model      string
	checkModel string
	background bool
	webSearch  bool
	apiKey     string
}

var _ ports.ResearchDispatcher = (*ResearchClient)(nil)

// NewResearchClient builds a client from configuration. Extra options are
// appended after the configured ones.
func NewResearchClient(cfg config.OpenAIConfig, opts ...option.RequestOption) *ResearchClient {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// background requests are accepted once; a retry would start a second run
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		base = append(base, option.WithRequestTimeout(cfg.Timeout))
	}

	return &ResearchClient{
		client:     openai.NewClient(append(base, opts...)...),
		model:      cfg.Model,
		checkModel: cfg.CheckModel,
		background: !cfg.DisableBackground,
		webSearch:  !cfg.DisableWebSearch,
		apiKey:     cfg.APIKey,
	}
}

type responseTool struct {
	Type string `json:"type"`
}

type responseRequest struct {
	Model      string         `json:"model"`
	Input      string         `json:"input"`
	Background bool           `json:"background,omitempty"`
	Tools      []responseTool `json:"tools,omitempty"`
}

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Type    string            `json:"type"`
	Content []responseContent `json:"content"`
}

type responseBody struct {
	ID     string           `json:"id"`
	Status string           `json:"status"`
	Output []responseOutput `json:"output"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Dispatch sends the prompt as a (by default background) deep-research response.
func (c *ResearchClient) Dispatch(ctx context.Context, prompt string) (domain.Dispatch, error) {
	if err := c.validate(); err != nil {
		return domain.Dispatch{}, err
	}
	if strings.TrimSpace(prompt) == "" {
		return domain.Dispatch{}, fmt.Errorf("research prompt is empty")
	}

	req := responseRequest{
		Model:      c.model,
		Input:      prompt,
		Background: c.background,
	}
	if c.webSearch {
		req.Tools = []responseTool{{Type: webSearchTool}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return domain.Dispatch{}, fmt.Errorf("marshal research request: %w", err)
	}

	var resp responseBody
	if err := c.client.Post(ctx, "responses", json.RawMessage(body), &resp); err != nil {
		return domain.Dispatch{}, fmt.Errorf("dispatch research: %w", err)
	}
	if resp.ID == "" {
		return domain.Dispatch{}, fmt.Errorf("dispatch research: response id missing")
	}

	return domain.Dispatch{ResponseID: resp.ID, Status: resp.Status}, nil
}

// Retrieve fetches a response and concatenates its output text parts.
func (c *ResearchClient) Retrieve(ctx context.Context, responseID string) (domain.ResearchResult, error) {
	if err := c.validate(); err != nil {
		return domain.ResearchResult{}, err
	}
	if responseID == "" {
		return domain.ResearchResult{}, fmt.Errorf("response id is empty")
	}

	var resp responseBody
	if err := c.client.Get(ctx, "responses/"+responseID, nil, &resp); err != nil {
		return domain.ResearchResult{}, fmt.Errorf("retrieve response %s: %w", responseID, err)
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return domain.ResearchResult{}, fmt.Errorf("response %s failed: %s", responseID, resp.Error.Message)
	}

	return domain.ResearchResult{
		ResponseID: resp.ID,
		Status:     resp.Status,
		Text:       outputText(resp.Output),
	}, nil
}

// CheckKey runs a tiny chat completion to confirm the API key works.
func (c *ResearchClient) CheckKey(ctx context.Context) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.checkModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Hello! Please respond with just 'API test successful' to confirm this is working."),
		},
		MaxTokens:   openai.Int(50),
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *ResearchClient) validate() error {
	if c == nil {
		return fmt.Errorf("research client is nil")
	}
	if c.apiKey == "" || c.model == "" {
		return fmt.Errorf("research client misconfigured")
	}
	return nil
}

func outputText(items []responseOutput) string {
	var parts []string
	for _, item := range items {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" && content.Text != "" {
				parts = append(parts, content.Text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}
