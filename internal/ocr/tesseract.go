//go:build cgo

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes single-word patches with a gosseract client.
//
// A Tesseract is not safe for concurrent use. Create one per goroutine.
type Tesseract struct {
	client     *gosseract.Client
	configPath string
}

// NewTesseract starts a Tesseract client in single-word mode with its
// dictionaries disabled.
func NewTesseract(opts Options) (*Tesseract, error) {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}

	cfg, err := os.CreateTemp("", "bibnumber-tess-*.cfg")
	if err != nil {
		return nil, fmt.Errorf("failed to create tesseract config: %w", err)
	}
	configPath := cfg.Name()
	_, err = cfg.WriteString(dictionaryConfig)
	if cerr := cfg.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(configPath)
		return nil, fmt.Errorf("failed to write tesseract config: %w", err)
	}

	client := gosseract.NewClient()
	t := &Tesseract{client: client, configPath: configPath}

	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			t.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(opts.Language); err != nil {
		t.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetConfigFile(configPath); err != nil {
		t.Close()
		return nil, fmt.Errorf("failed to set config file: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_WORD); err != nil {
		t.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			t.Close()
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	return t, nil
}

// Recognize runs OCR on one patch.
func (t *Tesseract) Recognize(patch *image.Gray) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, patch); err != nil {
		return "", fmt.Errorf("failed to encode patch: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Version reports the linked Tesseract version.
func (t *Tesseract) Version() string {
	return t.client.Version()
}

// Close releases the client and removes its config file.
func (t *Tesseract) Close() error {
	err := t.client.Close()
	os.Remove(t.configPath)
	return err
}
