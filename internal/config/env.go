package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// PathsConfig defines where source material lives and where output goes.
type PathsConfig struct {
	BaseDir   string // root of the study-material tree
	OutDir    string // split unit PDFs
	DataDir   string // run reports + corpus db
	RulesFile string // optional YAML overriding heuristic thresholds
}

// OCRConfig defines Tesseract invocation parameters.
type OCRConfig struct {
	Enabled   bool
	Languages string // tesseract language string, e.g. "kor+eng"
	RenderDPI int
	Timeout   time.Duration // per-document budget
}

// WorkerConfig defines worker-pool behavior.
type WorkerConfig struct {
	Concurrency int
}

// MetricsConfig defines the optional /metrics listener.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// Config is the top-level configuration.
type Config struct {
	Logging LoggingConfig
	Axiom   AxiomConfig
	Paths   PathsConfig
	OCR     OCRConfig
	Worker  WorkerConfig
	Metrics MetricsConfig
	Rules   Rules
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/topicsplitter.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_topicsplitter",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Paths = PathsConfig{
		BaseDir:   getEnv("SPLIT_BASE_DIR", "."),
		OutDir:    getEnv("SPLIT_OUT_DIR", "split_pdfs"),
		DataDir:   getEnv("SPLIT_DATA_DIR", "data"),
		RulesFile: getEnv("SPLIT_RULES_FILE", ""),
	}

	cfg.OCR = OCRConfig{
		Enabled:   parseBool(getEnv("OCR_ENABLED", "0")),
		Languages: getEnv("OCR_LANGUAGES", "kor+eng"),
		RenderDPI: parseInt(getEnv("OCR_RENDER_DPI", "200"), 200),
		Timeout:   parseDuration(getEnv("OCR_DOC_TIMEOUT", "180s"), 180*time.Second),
	}

	cfg.Worker = WorkerConfig{
		Concurrency: parseInt(getEnv("WORKER_CONCURRENCY", "4"), 4),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: parseBool(getEnv("METRICS_ENABLED", "0")),
		Addr:    getEnv("METRICS_ADDR", ":9090"),
	}

	cfg.Rules = DefaultRules()

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" { return def }
	if n, err := strconv.Atoi(s); err == nil { return n }
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" { return def }
	if d, err := time.ParseDuration(s); err == nil { return d }
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" { return "true" }
	return "false"
}
