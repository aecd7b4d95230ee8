//go:build !cgo

package ocr

import "image"

// Tesseract is unavailable without cgo; NewTesseract always fails.
type Tesseract struct{}

// NewTesseract returns ErrUnavailable.
func NewTesseract(opts Options) (*Tesseract, error) {
	return nil, ErrUnavailable
}

// Recognize returns ErrUnavailable.
func (t *Tesseract) Recognize(patch *image.Gray) (string, error) {
	return "", ErrUnavailable
}

// Version returns an empty string.
func (t *Tesseract) Version() string { return "" }

// Close does nothing.
func (t *Tesseract) Close() error { return nil }
