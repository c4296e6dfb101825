//go:build !ocr

// Package annotate derives text descriptions for document figures so the
// markdown output can carry a comment describing each image.
//
// This is the stub implementation used when the "ocr" build tag is not set.
// All functions return ErrOCRNotEnabled.
//
// To enable OCR annotation, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package annotate

import (
	"errors"

	"github.com/tsawler/pagemd/content"
)

// ErrOCRNotEnabled is returned when annotation is requested but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Tesseract is the stub annotator. Its methods fail with ErrOCRNotEnabled.
type Tesseract struct{}

// NewTesseract returns ErrOCRNotEnabled. Rebuild with -tags ocr.
func NewTesseract() (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op on the stub.
func (t *Tesseract) Close() error {
	return nil
}

// SetLanguage returns ErrOCRNotEnabled.
func (t *Tesseract) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// Annotate returns ErrOCRNotEnabled.
func (t *Tesseract) Annotate(img *content.Image) (string, error) {
	return "", ErrOCRNotEnabled
}
