package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"brandvoice-chat/internal/domain"
	"brandvoice-chat/internal/prompts"
)

const (
	MinMessages = 1
	MaxMessages = 20
)

// ChatRequest is a fully validated inbound request.
type ChatRequest struct {
	PromptKey domain.PromptKey
	System    string
	Messages  []domain.ChatMessage
}

// rawObject keeps JSON members under their exact names; struct decoding
// would also match "PromptKey" or "ROLE".
type rawObject map[string]json.RawMessage

// stringField returns obj[name] when it is present and a JSON string.
func (obj rawObject) stringField(name string) (string, bool) {
	raw, ok := obj[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	return s, true
}

// ParseChatRequest decodes and validates body, stopping at the first
// violation. body may be a JSON object or a JSON string holding one.
// maxContentLen bounds each message in characters; zero disables the bound.
func ParseChatRequest(body []byte, maxContentLen int) (ChatRequest, error) {
	raw, err := decodeBody(body)
	if err != nil {
		return ChatRequest{}, err
	}

	key, ok := raw.stringField("promptKey")
	if !ok {
		return ChatRequest{}, invalidInput("invalid_prompt_key", MsgInvalidPromptKey)
	}
	system, ok := prompts.Lookup(domain.PromptKey(key))
	if !ok {
		return ChatRequest{}, invalidInput("unknown_prompt_key", MsgInvalidPromptKey)
	}

	var items []json.RawMessage
	rawItems, ok := raw["messages"]
	if !ok || bytes.Equal(rawItems, []byte("null")) || json.Unmarshal(rawItems, &items) != nil {
		return ChatRequest{}, invalidInput("messages_not_array", MsgInvalidMessages)
	}
	if len(items) < MinMessages || len(items) > MaxMessages {
		return ChatRequest{}, invalidInput("messages_count", MsgInvalidMessages)
	}

	messages := make([]domain.ChatMessage, 0, len(items))
	for _, item := range items {
		var obj rawObject
		if err := json.Unmarshal(item, &obj); err != nil {
			return ChatRequest{}, invalidInput("message_shape", MsgInvalidMessage)
		}
		role, _ := obj.stringField("role")
		content, _ := obj.stringField("content")
		if !domain.ValidRole(role) || content == "" {
			return ChatRequest{}, invalidInput("message_shape", MsgInvalidMessage)
		}
		if maxContentLen > 0 && utf8.RuneCountInString(content) > maxContentLen {
			return ChatRequest{}, invalidInput("message_too_long",
				fmt.Sprintf("Each message content must be at most %d characters", maxContentLen))
		}
		messages = append(messages, domain.ChatMessage{Role: role, Content: content})
	}

	return ChatRequest{
		PromptKey: domain.PromptKey(key),
		System:    system,
		Messages:  messages,
	}, nil
}

func decodeBody(body []byte) (rawObject, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, invalidInput("invalid_json", MsgInvalidJSON)
		}
		body = bytes.TrimSpace([]byte(inner))
	}
	if len(body) == 0 || body[0] != '{' {
		return nil, invalidInput("invalid_json", MsgInvalidJSON)
	}

	var raw rawObject
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, invalidInput("invalid_json", MsgInvalidJSON)
	}
	return raw, nil
}
