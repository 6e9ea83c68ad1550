package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babelfeed/internal/config"
)

func openAIServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Contains(t, req.Messages[1].Content, "translate it into en-US")

		json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{
				{Message: chatMessage{Role: "assistant", Content: reply}},
			},
		})
	}))
}

func newTestOpenAI(baseURL string) *OpenAI {
	return NewOpenAI(config.OpenAIEngineConfig{
		APIKey:  "test-key",
		APIBase: baseURL,
		Model:   "gpt-4o-mini",
	})
}

func TestOpenAITranslate(t *testing.T) {
	server := openAIServer(t, "Hello")
	defer server.Close()

	o := newTestOpenAI(server.URL)

	got, err := o.Translate(context.Background(), "こんにちは", "", "en-US")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
}

func TestOpenAITranslateSanitizesReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "think block stripped",
			reply: "<think>the user wants a translation</think>\nHello",
			want:  "Hello",
		},
		{
			name:  "label prefix stripped",
			reply: "Translation: Hello",
			want:  "Hello",
		},
		{
			name:  "wrapper quotes removed",
			reply: `"Hello"`,
			want:  "Hello",
		},
		{
			name:  "interior quotes preserved",
			reply: `"Hello" is what they said, "really"`,
			want:  `"Hello" is what they said, "really"`,
		},
		{
			name:  "surrounding whitespace trimmed",
			reply: "  Hello  \n",
			want:  "Hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := openAIServer(t, tt.reply)
			defer server.Close()

			got, err := newTestOpenAI(server.URL).Translate(context.Background(), "こんにちは", "", "en-US")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenAITranslateRefusal(t *testing.T) {
	server := openAIServer(t, "I'm sorry, but I can't help with that.")
	defer server.Close()

	_, err := newTestOpenAI(server.URL).Translate(context.Background(), "こんにちは", "", "en-US")
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
}

func TestOpenAITranslateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	_, err := newTestOpenAI(server.URL).Translate(context.Background(), "こんにちは", "", "en-US")
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
}

func TestOpenAITranslateAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestOpenAI(server.URL).Translate(context.Background(), "こんにちは", "", "en-US")
	require.Error(t, err)

	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindAuthFailure, engErr.Kind)
	assert.False(t, engErr.IsRetryable())
	assert.True(t, engErr.IsFatal())
}

func TestOpenAITranslateRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestOpenAI(server.URL).Translate(context.Background(), "こんにちは", "", "en-US")
	require.Error(t, err)

	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindRateLimited, engErr.Kind)
	assert.True(t, engErr.IsRetryable())
}

func TestOpenAIClientDeadlineComesFromContext(t *testing.T) {
	o := newTestOpenAI("http://127.0.0.1:0")

	// The caller's context is the only deadline on an attempt.
	assert.Zero(t, o.client.Timeout)
}
