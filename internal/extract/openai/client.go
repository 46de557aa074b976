// Package openai implements extract.FieldExtractor against an
// OpenAI-compatible chat/completions endpoint using vision input.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"splitbook/internal/extract"
)

// ExtractFields sends the receipt image to the model and validates the JSON
// that comes back against the receipt schema before returning it.
func (c *Client) ExtractFields(ctx context.Context, req extract.Request) (extract.ReceiptFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"image_url", req.ImageURL,
		"default_currency", req.DefaultCurrency,
	)

	schema := extract.BuildReceiptJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt(req.DefaultCurrency)},
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": "Extract the total, date, and line items from this receipt. Return ONLY JSON that matches the provided schema."},
					{"type": "image_url", "image_url": map[string]any{"url": req.ImageURL}},
				},
			},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return extract.ReceiptFields{}, nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds())
		return extract.ReceiptFields{}, raw, fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return extract.ReceiptFields{}, raw, fmt.Errorf("no choices in completion response")
	}

	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))
	if err := extract.ValidateJSONAgainstSchema(schema, content); err != nil {
		c.log.Warn("extract.schema_mismatch",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return extract.ReceiptFields{}, content, fmt.Errorf("model output failed schema validation: %w", err)
	}

	var fields extract.ReceiptFields
	if err := json.Unmarshal(content, &fields); err != nil {
		return extract.ReceiptFields{}, content, fmt.Errorf("decode receipt fields: %w", err)
	}

	c.log.Info("extract.done",
		"req_id", rid,
		"has_total", fields.Total != "",
		"has_date", fields.Date != "",
		"items", len(fields.Items),
		"confidence", fields.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds())
	return fields, content, nil
}

func (c *Client) post(ctx context.Context, url string, body any) ([]byte, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return raw, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, nil
}

func systemPrompt(defaultCurrency string) string {
	return "You read retail receipts. Report amounts as plain decimal strings " +
		"with at most two fractional digits, assuming " + defaultCurrency +
		" when the receipt shows no currency. Omit any field you cannot read " +
		"confidently rather than guessing."
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
