package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"babelfeed/internal/config"
	"babelfeed/internal/constants"
)

// Google is the lookup-engine variant. It calls the gtx single-translate
// endpoint and lets the service detect the source language when no hint is
// supplied.
type Google struct {
	endpoint string
	client   *http.Client
}

func NewGoogle(cfg config.GoogleEngineConfig) *Google {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = constants.DefaultGoogleEndpoint
	}
	return &Google{
		endpoint: endpoint,
		// No client-level timeout: the caller's context is the only bound,
		// so the configured per-request timeout applies in full.
		client: &http.Client{},
	}
}

func (g *Google) Name() string {
	return constants.EngineGoogle
}

func (g *Google) Translate(ctx context.Context, text, sourceHint, targetLang string) (string, error) {
	sl := sourceHint
	if sl == "" {
		sl = "auto"
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sl)
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", NewError(g.Name(), KindUnknown, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", NewError(g.Name(), KindTimeout, err)
		}
		return "", NewError(g.Name(), KindUnknown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", NewError(g.Name(), kindFromStatus(resp.StatusCode),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	// The gtx response is a nested array; the first element holds the
	// translated segments: [[["segment", "source", ...], ...], ...]
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", NewError(g.Name(), KindUnknown, fmt.Errorf("decode response: %w", err))
	}
	if len(payload) == 0 {
		return "", NewError(g.Name(), KindUnknown, errors.New("empty response"))
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", NewError(g.Name(), KindUnknown, fmt.Errorf("decode segments: %w", err))
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	translated := sb.String()
	if translated == "" {
		return "", NewError(g.Name(), KindUnknown, errors.New("no translated segments"))
	}
	return translated, nil
}
