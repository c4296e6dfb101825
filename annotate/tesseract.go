//go:build ocr

// Package annotate derives text descriptions for document figures so the
// markdown output can carry a comment describing each image.
//
// This implementation wraps the Tesseract OCR engine via gosseract and is
// compiled in with the "ocr" build tag:
//
//	go build -tags ocr
//
// It requires Tesseract to be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package annotate

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/pagemd/content"
)

// Tesseract annotates figures by running OCR over their pixel data.
type Tesseract struct {
	client *gosseract.Client
}

// NewTesseract creates a Tesseract annotator.
// The annotator should be closed when no longer needed to release resources.
func NewTesseract() (*Tesseract, error) {
	return &Tesseract{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources.
func (t *Tesseract) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// SetLanguage sets the language(s) for recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
// Default is "eng" (English).
func (t *Tesseract) SetLanguage(lang string) error {
	return t.client.SetLanguage(lang)
}

// Annotate runs OCR over the image bytes and returns the recognized text
// with surrounding whitespace trimmed. Images without data yield an empty
// annotation.
func (t *Tesseract) Annotate(img *content.Image) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", nil
	}
	if err := t.client.SetImageFromBytes(img.Data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
