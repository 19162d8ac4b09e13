package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomai/internal/ai"
)

// fakeCompletion returns a canned answer and records the last request.
type fakeCompletion struct {
	reply string
	err   error
	last  ai.CompletionRequest
}

func (f *fakeCompletion) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	f.last = req
	return f.reply, f.err
}

func TestApplyEditNil(t *testing.T) {
	got, err := ApplyEdit(context.Background(), nil, Context{}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyEditUnknownType(t *testing.T) {
	edit := &EditDescriptor{EditType: "something_else"}
	got, err := ApplyEdit(context.Background(), edit, Context{}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyEditTemplate(t *testing.T) {
	edit := &EditDescriptor{
		EditType: EditTypeTemplate,
		Settings: EditSettings{Template: "{{vendor}} sale"},
	}
	got, err := ApplyEdit(context.Background(), edit, Context{"vendor": "Acme"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme sale", got)
}

func TestApplyEditAI(t *testing.T) {
	svc := &fakeCompletion{reply: "  A catchy title  "}
	temp := 0.7
	edit := &EditDescriptor{
		EditType: EditTypeAI,
		Settings: EditSettings{
			Model:       "gpt-4o-mini",
			Temperature: &temp,
			Messages: []ai.Message{
				ai.UserMessage("system", "You write product copy."),
				ai.UserMessage("user", "Rewrite the title of {{title}}."),
			},
		},
	}

	got, err := ApplyEdit(context.Background(), edit, Context{"title": "Red Mug"}, svc)
	require.NoError(t, err)
	assert.Equal(t, "A catchy title", got)

	// The message text reaching the completion service is already resolved.
	require.Len(t, svc.last.Messages, 2)
	assert.Equal(t, "Rewrite the title of Red Mug.", svc.last.Messages[1].Content[0].Text)
	assert.Equal(t, "gpt-4o-mini", svc.last.Model)
	require.NotNil(t, svc.last.Temperature)
	assert.Equal(t, 0.7, *svc.last.Temperature)
}

func TestApplyEditAIError(t *testing.T) {
	svc := &fakeCompletion{err: errors.New("rate limited")}
	edit := &EditDescriptor{
		EditType: EditTypeAI,
		Settings: EditSettings{Messages: []ai.Message{ai.UserMessage("user", "hi")}},
	}

	got, err := ApplyEdit(context.Background(), edit, Context{}, svc)
	assert.Error(t, err)
	assert.Empty(t, got)
}
