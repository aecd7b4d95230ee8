package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"

	"github.com/ironsheep/bibnumber/internal/detection"
)

// writeConfig writes body to config.toml in a fresh temp dir.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// clearEnv unsets the overrides for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvWorkers, EnvTessdataPrefix, EnvLanguage} {
		t.Setenv(name, "")
	}
}

func TestNewDefaultConfig(t *testing.T) {
	c := NewDefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.Detection != detection.DefaultParams() {
		t.Errorf("Detection = %+v, want defaults", c.Detection)
	}
	if c.Batch.OutputName != "out.csv" {
		t.Errorf("OutputName = %q, want out.csv", c.Batch.OutputName)
	}
	if c.OCR.Language != "eng" {
		t.Errorf("Language = %q, want eng", c.OCR.Language)
	}
}

func TestLoadConfigFromFile_Missing(t *testing.T) {
	c, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfigFromFile failed: %v", err)
	}
	if *c != *NewDefaultConfig() {
		t.Errorf("missing file should yield defaults, got %+v", c)
	}
}

func TestLoadConfigFromFile_Partial(t *testing.T) {
	path := writeConfig(t, `
[detection]
dark_on_light = false
max_angle = 12.5
top_border = 40

[edges]
canny_high = 400.0

[ocr]
whitelist = "0123456789"

[batch]
workers = 3
`)

	c, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFromFile failed: %v", err)
	}

	want := NewDefaultConfig()
	want.Detection.DarkOnLight = false
	want.Detection.MaxAngle = 12.5
	want.Detection.TopBorder = 40
	want.Edges.High = 400
	want.OCR.Whitelist = "0123456789"
	want.Batch.Workers = 3

	if *c != *want {
		t.Errorf("config = %+v\nwant %+v", c, want)
	}
}

func TestLoadConfigFromFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed", "[detection\nmax_angle = 1", "failed to decode"},
		{"wrong type", "[detection]\nmax_angle = \"steep\"", "failed to decode"},
		{"unknown key", "[detection]\nmax_tilt = 10", "detection.max_tilt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromFile(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"detection", func(c *Config) { c.Detection.MaxStrokeLength = 0 }, "max_stroke_length"},
		{"edge thresholds", func(c *Config) { c.Edges.Low = 500 }, "canny_low"},
		{"language", func(c *Config) { c.OCR.Language = "" }, "language"},
		{"workers", func(c *Config) { c.Batch.Workers = -2 }, "workers"},
		{"output path", func(c *Config) { c.Batch.OutputName = "../out.csv" }, "output_name"},
		{"empty output", func(c *Config) { c.Batch.OutputName = "" }, "output_name"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	c := NewDefaultConfig()
	c.Batch.Workers = -1
	c.OCR.Language = ""
	err := c.Validate()
	for _, want := range []string{"workers", "language"} {
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %v, want mention of %q", err, want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkers, "6")
	t.Setenv(EnvTessdataPrefix, "/opt/tessdata")
	t.Setenv(EnvLanguage, "deu")

	c := NewDefaultConfig()
	if err := c.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if c.Batch.Workers != 6 || c.OCR.TessdataPrefix != "/opt/tessdata" || c.OCR.Language != "deu" {
		t.Errorf("overrides not applied: %+v", c)
	}

	t.Setenv(EnvWorkers, "many")
	if err := NewDefaultConfig().ApplyEnv(); err == nil {
		t.Error("non-numeric worker count should fail")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkers, "2")
	path := writeConfig(t, "[batch]\nworkers = 8\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Batch.Workers != 2 {
		t.Errorf("Workers = %d, want the environment to win", c.Batch.Workers)
	}

	bad := writeConfig(t, "[detection]\nmax_angle = 120.0\n")
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "max_angle") {
		t.Errorf("Load(invalid) = %v, want a validation error", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Cleanup(xdg.Reload)
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(dir, "none"))
	xdg.Reload()

	want := filepath.Join(dir, "bibnumber", "config.toml")
	if got := DefaultPath(); got != want {
		t.Errorf("DefaultPath = %q, want %q", got, want)
	}

	if err := os.MkdirAll(filepath.Dir(want), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(want, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Log.Level != "debug" {
		t.Errorf("Level = %q, want the file under XDG_CONFIG_HOME to be read", c.Log.Level)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("BIBNUMBER_TEST_VALUE=from-file\nBIBNUMBER_TEST_KEEP=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BIBNUMBER_TEST_VALUE", "")
	os.Unsetenv("BIBNUMBER_TEST_VALUE")
	t.Setenv("BIBNUMBER_TEST_KEEP", "preset")

	if err := LoadEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := os.Getenv("BIBNUMBER_TEST_VALUE"); got != "from-file" {
		t.Errorf("BIBNUMBER_TEST_VALUE = %q, want from-file", got)
	}
	if got := os.Getenv("BIBNUMBER_TEST_KEEP"); got != "preset" {
		t.Errorf("existing variable overridden: %q", got)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	c := NewDefaultConfig()
	c.Detection.MaxColorDistance = 0.25

	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	path := writeConfig(t, buf.String())
	got, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("reloading encoded config failed: %v\n%s", err, buf.String())
	}
	if *got != *c {
		t.Errorf("round trip changed the config:\n%s", buf.String())
	}
}
