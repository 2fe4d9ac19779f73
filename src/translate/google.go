package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const googleBaseURL = "https://translate.googleapis.com"

// Google calls the public gtx endpoint used by browser extensions.
type Google struct {
	BaseURL string
	Client  *http.Client
}

// NewGoogle returns a Google backend. An empty baseURL uses the public endpoint.
func NewGoogle(baseURL string) *Google {
	if baseURL == "" {
		baseURL = googleBaseURL
	}
	return &Google{BaseURL: strings.TrimRight(baseURL, "/"), Client: newHTTPClient()}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Translate(ctx context.Context, text, targetLang string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/translate_a/single?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse joins the translated segments of a gtx response:
// [[["Hello","你好",null,null,10], ...], null, "zh-CN", ...]
func parseGoogleResponse(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", fmt.Errorf("malformed response: %w", err)
	}
	if len(top) == 0 {
		return "", fmt.Errorf("malformed response: empty")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(top[0], &segments); err != nil {
		return "", fmt.Errorf("malformed response segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part *string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			return "", fmt.Errorf("malformed response segment: %w", err)
		}
		if part != nil {
			b.WriteString(*part)
		}
	}
	return b.String(), nil
}
