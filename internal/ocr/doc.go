// Package ocr reads the digits of rectified bib number patches.
//
// The detection pipeline hands every accepted text line to a Recognizer as a
// binary patch with white strokes on black. Tesseract implements Recognizer
// on top of gosseract/v2; tests and callers without Tesseract can supply a
// RecognizerFunc instead.
//
// # Prerequisites
//
// Tesseract must be installed on the system and the binary built with cgo:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Without cgo, NewTesseract returns ErrUnavailable.
//
// # Engine Settings
//
// The client runs in single-word page segmentation mode with every
// dictionary disabled, so arbitrary digit runs are not corrected into words.
// The dictionary switches are only honoured at engine initialization, so they
// are written to a temporary config file that lives as long as the client.
//
// # Accepting Text
//
// AcceptText keeps a result only when it is exactly as long as the line has
// characters and contains nothing but decimal digits. Rejected text is not an
// error.
package ocr
