package optimizer

import (
	"context"
	"encoding/json"
	"strings"

	"ecomai/internal/ai"
)

// Edit types carried in the bulk edit payload.
const (
	EditTypeTemplate = "dynamic_template"
	EditTypeAI       = "ai_edit"
)

// EditDescriptor describes how a single product field gets its new value:
// either a static template resolved locally, or a completion request whose
// message texts are template-resolved before the call.
type EditDescriptor struct {
	EditType string       `json:"edit_type"`
	Settings EditSettings `json:"settings"`
}

type EditSettings struct {
	Template            string          `json:"template,omitempty"`
	Model               string          `json:"model,omitempty"`
	Messages            []ai.Message    `json:"messages,omitempty"`
	Temperature         *float64        `json:"temperature,omitempty"`
	TopP                *float64        `json:"top_p,omitempty"`
	MaxCompletionTokens *int            `json:"max_completion_tokens,omitempty"`
	FrequencyPenalty    *float64        `json:"frequency_penalty,omitempty"`
	PresencePenalty     *float64        `json:"presence_penalty,omitempty"`
	ResponseFormat      json.RawMessage `json:"response_format,omitempty"`
}

// ApplyEdit resolves an edit descriptor to a field value. A nil descriptor
// and an unknown edit type both resolve to "", which callers treat as "leave
// the field unchanged". Completion failures are returned as-is; retry and
// skip decisions belong to the batch layer.
func ApplyEdit(ctx context.Context, edit *EditDescriptor, tctx Context, svc ai.CompletionService) (string, error) {
	if edit == nil {
		return "", nil
	}

	switch edit.EditType {
	case EditTypeTemplate:
		return ResolveTemplate(edit.Settings.Template, tctx), nil

	case EditTypeAI:
		req := ai.CompletionRequest{
			Model:            edit.Settings.Model,
			Messages:         resolveMessages(edit.Settings.Messages, tctx),
			Temperature:      edit.Settings.Temperature,
			TopP:             edit.Settings.TopP,
			MaxTokens:        edit.Settings.MaxCompletionTokens,
			FrequencyPenalty: edit.Settings.FrequencyPenalty,
			PresencePenalty:  edit.Settings.PresencePenalty,
			ResponseFormat:   edit.Settings.ResponseFormat,
		}
		text, err := svc.Complete(ctx, req)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	}

	return "", nil
}

// resolveMessages template-resolves the text segments of each message,
// leaving non-text parts untouched.
func resolveMessages(messages []ai.Message, tctx Context) []ai.Message {
	resolved := make([]ai.Message, len(messages))
	for i, msg := range messages {
		parts := make([]ai.ContentPart, len(msg.Content))
		for j, part := range msg.Content {
			if part.Type == "text" {
				part.Text = ResolveTemplate(part.Text, tctx)
			}
			parts[j] = part
		}
		resolved[i] = ai.Message{Role: msg.Role, Content: parts}
	}
	return resolved
}
