package ai

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"
)

// GoogleTranslator translates text with the Cloud Translation v2 API
type GoogleTranslator struct {
	svc *translate.Service
}

// NewGoogleTranslator creates a translator authenticated with an API key.
// Extra options (endpoint, HTTP client) are appended after the key.
func NewGoogleTranslator(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GoogleTranslator, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := translate.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate service: %w", err)
	}
	return &GoogleTranslator{svc: svc}, nil
}

// Translate converts text from source into target. Both are base language
// codes such as "en" or "es"; an empty source lets the provider detect it.
func (t *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	// POST keeps long transcripts out of the URL
	resp, err := t.svc.Translations.Translate(&translate.TranslateTextRequest{
		Q:      []string{text},
		Target: target,
		Source: source,
		Format: "text",
	}).Context(ctx).Do()
	if err != nil {
		status := 0
		if gerr, ok := err.(*googleapi.Error); ok {
			status = gerr.Code
		}
		return "", &UpstreamError{Service: "google-translate", StatusCode: status, Err: err}
	}
	if len(resp.Translations) == 0 {
		return "", &UpstreamError{Service: "google-translate", StatusCode: http.StatusOK, Err: fmt.Errorf("no translation returned")}
	}
	return resp.Translations[0].TranslatedText, nil
}
