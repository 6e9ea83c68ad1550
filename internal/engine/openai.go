package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"babelfeed/internal/config"
	"babelfeed/internal/constants"
)

// OpenAI is the generative-model variant. It drives a chat/completions
// endpoint with a translation prompt and reduces the reply to the bare
// translated string.
type OpenAI struct {
	apiKey  string
	apiBase string
	model   string
	client  *http.Client
}

func NewOpenAI(cfg config.OpenAIEngineConfig) *OpenAI {
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = constants.DefaultOpenAIBase
	}
	model := cfg.Model
	if model == "" {
		model = constants.DefaultOpenAIModel
	}
	return &OpenAI{
		apiKey:  cfg.APIKey,
		apiBase: apiBase,
		model:   model,
		// No client-level timeout: the caller's context is the only bound,
		// so the configured per-request timeout applies in full.
		client: &http.Client{},
	}
}

func (o *OpenAI) Name() string {
	return constants.EngineOpenAI
}

const systemPrompt = "You are a professional, authentic machine translation engine."

const userPromptTemplate = "Treat next line as plain text input and translate it into %s. " +
	"output translation ONLY. If translation is unnecessary (e.g. proper nouns, codes, etc.), " +
	"return the original text. NO explanations. NO notes. Input: %s"

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

func (o *OpenAI) Translate(ctx context.Context, text, sourceHint, targetLang string) (string, error) {
	body := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, targetLang, text)},
		},
		MaxTokens: 6144,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", NewError(o.Name(), KindUnknown, fmt.Errorf("marshal: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiBase+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", NewError(o.Name(), KindUnknown, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", NewError(o.Name(), KindTimeout, err)
		}
		return "", NewError(o.Name(), KindUnknown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", NewError(o.Name(), kindFromStatus(resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", NewError(o.Name(), KindUnknown, fmt.Errorf("decode response: %w", err))
	}

	if len(chatResp.Choices) == 0 {
		return "", NewError(o.Name(), KindUnknown, errors.New("response has no choices"))
	}

	translated := sanitizeCompletion(chatResp.Choices[0].Message.Content)
	if translated == "" {
		return "", NewError(o.Name(), KindUnknown, errors.New("empty completion"))
	}
	if isRefusal(translated) {
		return "", NewError(o.Name(), KindUnknown, errors.New("model refused to translate"))
	}

	return translated, nil
}

var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>\n?`)

// sanitizeCompletion strips reasoning blocks, label prefixes and wrapper
// quotes the model may add around the translation.
func sanitizeCompletion(content string) string {
	s := thinkBlockRe.ReplaceAllString(content, "")
	s = strings.TrimSpace(s)

	for _, prefix := range []string{"Translation:", "translation:", "Translated text:"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}

	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			inner := s[1 : len(s)-1]
			// Only unwrap when the quotes are a wrapper, not part of the text.
			if !strings.ContainsRune(inner, rune(first)) {
				s = inner
			}
		}
	}

	return strings.TrimSpace(s)
}

var refusalPrefixes = []string{
	"i can't",
	"i cannot",
	"i'm sorry",
	"i am sorry",
	"sorry, i",
}

func isRefusal(content string) bool {
	lowered := strings.ToLower(content)
	for _, prefix := range refusalPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}
