package parsetext

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"unicode/utf8"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// MaxTextLen is the character budget for raw page text handed to the
// text-completion collaborator.
const MaxTextLen = 25000

const promptTemplate = `You are a product data extractor. I will give you raw text copied from a Shopee product page (Ctrl+A, Ctrl+C).
Your job is to extract the following fields in JSON format:

1. title: The full product title. It is usually at the very beginning or near the top.
2. price: The price. Look for "Rp" followed by numbers (e.g., "Rp10.000", "Rp 50.000", "Rp1.200.000"). If there is a range, take the lowest price. Return it as a string like "Rp 50.000".
3. description: The product description. Look for keywords like "Deskripsi Produk", "Spesifikasi", or long blocks of text after the title/price. Summarize it to 1-2 sentences if it's very long.

Note: Image URLs are usually not present in raw text copies, so leave image as null.

Here is the text:
%s

Return ONLY valid JSON.`

// Completer is the opaque text-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Partial is the best-effort record recovered from pasted page text. Image is
// normally absent in raw text copies.
type Partial struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

type Service struct {
	completer Completer
	logger    *zap.SugaredLogger
}

type NewServiceParams struct {
	fx.In

	Completer Completer
	Logger    *zap.SugaredLogger
}

func NewService(p NewServiceParams) *Service {
	return &Service{completer: p.Completer, logger: p.Logger}
}

// Parse truncates the pasted text to the character budget, asks the completion
// collaborator for structured fields, and extracts the first JSON object from
// its answer.
func (s *Service) Parse(ctx context.Context, text string) (Partial, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Partial{}, fmt.Errorf("missing text")
	}
	if len(text) > MaxTextLen {
		// Back off to a rune boundary so the tail stays valid UTF-8.
		cut := MaxTextLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	answer, err := s.completer.Complete(ctx, fmt.Sprintf(promptTemplate, text))
	if err != nil {
		return Partial{}, fmt.Errorf("completion call: %w", err)
	}

	obj, err := extractFirstJSONObject(answer)
	if err != nil {
		s.logger.Warnw("parse_text_no_json", "err", err)
		return Partial{}, fmt.Errorf("completion returned no JSON object: %w", err)
	}

	var out Partial
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return Partial{}, fmt.Errorf("decode extracted object: %w", err)
	}
	if out.Title == "" {
		return Partial{}, fmt.Errorf("completion produced no title")
	}
	return out, nil
}

func extractFirstJSONObject(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty response")
	}

	// Handle markdown fences like ```json ... ```
	if strings.HasPrefix(raw, "```") {
		if fenced := extractFirstMarkdownFence(raw); fenced != "" {
			raw = strings.TrimSpace(fenced)
		}
	}

	// Scan for a syntactically valid JSON object starting at each '{'.
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(raw[i:]))
		dec.UseNumber()

		var v any
		if err := dec.Decode(&v); err != nil {
			continue
		}

		if _, ok := v.(map[string]any); !ok {
			continue
		}

		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	return "", fmt.Errorf("no valid JSON object found")
}

func extractFirstMarkdownFence(s string) string {
	const fence = "```"
	start := strings.Index(s, fence)
	if start < 0 {
		return ""
	}
	s = s[start+len(fence):]

	// Optional language tag (e.g. "json") until first newline.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}

	end := strings.Index(s, fence)
	if end < 0 {
		return ""
	}
	return s[:end]
}
