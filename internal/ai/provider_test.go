package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestPrompt(t *testing.T) {
	req := Request{
		Trigger:     "keyword",
		ChannelName: "general",
		Author:      "ana",
		Message:     "<b>bisbal</b> & co",
		History:     "ana: hola",
	}

	got, err := req.Prompt()
	require.NoError(t, err)

	want := "{\n" +
		"  \"trigger\": \"keyword\",\n" +
		"  \"channel_name\": \"general\",\n" +
		"  \"author\": \"ana\",\n" +
		"  \"message\": \"<b>bisbal</b> & co\",\n" +
		"  \"history\": \"ana: hola\"\n" +
		"}"
	assert.Equal(t, want, got)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantReply *string
		wantNote  *string
		wantErr   bool
	}{
		{
			name:      "reply and note",
			raw:       `{"response": "hola", "context": "ana likes flamenco"}`,
			wantReply: strPtr("hola"),
			wantNote:  strPtr("ana likes flamenco"),
		},
		{
			name: "both null",
			raw:  `{"response": null, "context": null}`,
		},
		{
			name:      "missing context",
			raw:       `{"response": "hey"}`,
			wantReply: strPtr("hey"),
		},
		{
			name:      "fenced with think block",
			raw:       "<think>should I?</think>\n```json\n{\"response\": \"sí\", \"context\": null}\n```",
			wantReply: strPtr("sí"),
		},
		{
			name:    "plain text",
			raw:     "I would say hello",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformed))
				assert.Nil(t, got.Reply)
				assert.Nil(t, got.Note)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReply, got.Reply)
			assert.Equal(t, tt.wantNote, got.Note)
		})
	}
}

func TestEchoGenerator(t *testing.T) {
	req := Request{Trigger: "mention", ChannelName: "general", Author: "ana", Message: "hola"}

	resp, err := EchoGenerator{}.Generate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Reply)

	prompt, err := req.Prompt()
	require.NoError(t, err)
	assert.Equal(t, prompt, *resp.Reply)
	assert.Nil(t, resp.Note)
}

func TestNew(t *testing.T) {
	gen, err := New(Options{}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, EchoGenerator{}, gen)

	_, err = New(Options{UseLLM: true, Memory: NewMemory("", 0, nil)}, zerolog.Nop())
	assert.Error(t, err)

	gen, err = New(Options{
		UseLLM: true,
		OpenAI: OpenAIConfig{APIKey: "sk-test"},
		Memory: NewMemory("persona", 0, nil),
		RPS:    2,
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Limited{}, gen)
}

func TestCleanReply(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanReply("  ```json\n{\"a\":1}\n```  "))
	assert.Equal(t, "ok", cleanReply("<think>\nmulti\nline\n</think>ok"))
	assert.Equal(t, "plain", cleanReply("plain"))
}

func strPtr(s string) *string { return &s }
