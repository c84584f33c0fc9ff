package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"brandvoice-chat/internal/integrations/anthropic"
)

const (
	DefaultModel            = "claude-sonnet-4-6"
	MaxTokens               = 2048
	DefaultMaxContentLen    = 100000
	upstreamErrorSnippetLen = 200
)

type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

type LLMClient interface {
	StreamMessages(ctx context.Context, apiKey string, in anthropic.MessagesRequest) (io.ReadCloser, error)
}

type ChatService struct {
	keys          KeySource
	llm           LLMClient
	model         string
	maxContentLen int
}

type ChatInput struct {
	Body io.Reader
}

func NewChatService(keys KeySource, llm LLMClient, model string, maxContentLen int) (*ChatService, error) {
	if keys == nil {
		return nil, errors.New("usecase: key source must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if maxContentLen < 0 {
		maxContentLen = DefaultMaxContentLen
	}
	return &ChatService{
		keys:          keys,
		llm:           llm,
		model:         model,
		maxContentLen: maxContentLen,
	}, nil
}

// Chat validates the request and opens the upstream event stream. The
// credential is checked before the body is read. The upstream is called at
// most once; the returned stream must be closed by the caller.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (io.ReadCloser, error) {
	apiKey, err := s.keys.APIKey(ctx)
	if err != nil {
		reason := "api_key_lookup_error"
		if errors.Is(err, anthropic.ErrAPIKeyNotConfigured) {
			reason = "api_key_missing"
		}
		return nil, newError(ErrorNotConfigured, reason, MsgNotConfigured, err)
	}

	if in.Body == nil {
		return nil, invalidInput("empty_body", MsgInvalidJSON)
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, newError(ErrorInvalidInput, "body_read_error", MsgInvalidJSON, err)
	}

	req, err := ParseChatRequest(body, s.maxContentLen)
	if err != nil {
		return nil, err
	}

	stream, err := s.llm.StreamMessages(ctx, apiKey, anthropic.MessagesRequest{
		Model:     s.model,
		MaxTokens: MaxTokens,
		System:    req.System,
		Messages:  req.Messages,
		Stream:    true,
	})
	if err != nil {
		var statusErr *anthropic.HTTPStatusError
		if errors.As(err, &statusErr) {
			return nil, newError(ErrorUpstream, "anthropic_status", upstreamMessage(statusErr.StatusCode, statusErr.Body), err)
		}
		return nil, newError(ErrorInternal, "anthropic_request_error", MsgInternal, err)
	}
	return stream, nil
}

func upstreamMessage(status int, body string) string {
	return fmt.Sprintf("Anthropic %d: %s", status, truncate(body, upstreamErrorSnippetLen))
}

// truncate keeps at most n characters of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
