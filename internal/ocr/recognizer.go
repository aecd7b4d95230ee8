package ocr

import (
	"errors"
	"image"
	"strings"
)

// ErrUnavailable is returned when the binary was built without Tesseract
// support.
var ErrUnavailable = errors.New("tesseract OCR is not available in this build")

// Recognizer turns one rectified text patch into a string.
//
// The patch holds white strokes on a black background. An empty result with
// a nil error means nothing was recognized.
type Recognizer interface {
	Recognize(patch *image.Gray) (string, error)
}

// RecognizerFunc adapts an ordinary function to the Recognizer interface.
type RecognizerFunc func(patch *image.Gray) (string, error)

// Recognize calls f(patch).
func (f RecognizerFunc) Recognize(patch *image.Gray) (string, error) {
	return f(patch)
}

// AcceptText validates raw OCR output for a line of n characters. The trimmed
// text is accepted only when it is non-empty, exactly n characters long and
// made of decimal digits.
func AcceptText(raw string, n int) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" || len(text) != n {
		return "", false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return text, true
}
