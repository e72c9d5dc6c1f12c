// internal/workers/extraction/extract-requirements/service.go
package extractrequirements

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"rfp-workers/internal/common/logger"
)

const systemPrompt = `You are an RFP analyst for a cable manufacturer. Extract the RFP header and the full scope of supply from the document. Respond with a single JSON object:
{"rfp_info": {"rfp_name": ..., "client_name": ..., "due_date": "YYYY-MM-DD"},
 "products": [{"product_name": ..., "category": ..., "quantity": ..., "specifications": {...}}],
 "test_requirements": [...]}
Keep specification values exactly as written in the document. Omit fields the document does not state.`

// LLMService calls chat-completion providers and returns the raw extracted
// document. The fallback provider is tried only after the primary fails.
type LLMService struct {
	primary  ProviderConfig
	fallback ProviderConfig
	maxChars int
	client   *http.Client
	logger   logger.Logger
}

func NewLLMService(cfg *Config, log logger.Logger) *LLMService {
	return &LLMService{
		primary:  cfg.Primary,
		fallback: cfg.Fallback,
		maxChars: cfg.MaxDocumentChars,
		client:   &http.Client{},
		logger:   log,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractSummary runs the extraction prompt against the primary provider and
// falls back to the secondary on any error. Returns the raw JSON document and
// the name of the provider that produced it.
func (s *LLMService) ExtractSummary(ctx context.Context, document string) ([]byte, string, error) {
	if s.maxChars > 0 && len(document) > s.maxChars {
		s.logger.Warn("truncating document before extraction", map[string]interface{}{
			"documentChars": len(document),
			"maxChars":      s.maxChars,
		})
		document = document[:s.maxChars]
	}

	raw, err := s.complete(ctx, s.primary, document)
	if err == nil {
		return raw, s.primary.Name, nil
	}

	s.logger.Warn("primary extraction provider failed, trying fallback", map[string]interface{}{
		"primary":  s.primary.Name,
		"fallback": s.fallback.Name,
		"error":    err.Error(),
	})

	if s.fallback.BaseURL == "" {
		return nil, s.primary.Name, err
	}

	raw, fbErr := s.complete(ctx, s.fallback, document)
	if fbErr != nil {
		return nil, s.fallback.Name, fmt.Errorf("primary: %v, fallback: %w", err, fbErr)
	}
	return raw, s.fallback.Name, nil
}

func (s *LLMService) complete(ctx context.Context, provider ProviderConfig, document string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, provider.Timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: provider.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: document},
		},
		Temperature:    0,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, provider.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if provider.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+provider.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			return nil, fmt.Errorf("provider %s timed out", provider.Name)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider %s returned status %d", provider.Name, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", provider.Name, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("provider %s returned no choices", provider.Name)
	}

	content := []byte(chat.Choices[0].Message.Content)
	if !json.Valid(content) {
		return nil, fmt.Errorf("provider %s returned non-JSON content", provider.Name)
	}
	return content, nil
}
