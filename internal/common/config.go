package common

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	API       APIConfig
	OCR       OCRConfig
	Rasterize RasterizeConfig
	Pipeline  PipelineConfig
	Paths     PathsConfig
}

// APIConfig holds the VLM backend configuration
type APIConfig struct {
	Key       string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Language    string
	TessdataDir string
	PSM         int
}

// RasterizeConfig holds document-to-image conversion configuration
type RasterizeConfig struct {
	DPI           int
	OnlyFirstPage bool
	Pdftoppm      string
	Soffice       string
}

// PipelineConfig holds batching and pacing configuration for the VLM stages
type PipelineConfig struct {
	BatchSize int
	Interval  time.Duration
	Visualize bool
}

// PathsConfig holds the on-disk stage directories, all rooted at DataDir.
type PathsConfig struct {
	DataDir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		API: APIConfig{
			Key:       getEnv("OPENAI_API_KEY", ""),
			BaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:     getEnv("MODEL_NAME", "gpt-4o"),
			Timeout:   getEnvAsDuration("OPENAI_TIMEOUT", 120*time.Second),
			MaxTokens: getEnvAsInt("OPENAI_MAX_TOKENS", 4096),
		},
		OCR: OCRConfig{
			Language:    getEnv("OCR_LANG", "eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			PSM:         getEnvAsInt("OCR_PSM", 0),
		},
		Rasterize: RasterizeConfig{
			DPI:           getEnvAsInt("IMAGE_DPI", 300),
			OnlyFirstPage: getEnvAsBool("ONLY_FIRST_PAGE", true),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Soffice:       getEnv("SOFFICE_BIN", "soffice"),
		},
		Pipeline: PipelineConfig{
			BatchSize: getEnvAsInt("BATCH_SIZE", 5),
			Interval:  getEnvAsDuration("BATCH_INTERVAL", 15*time.Second),
			Visualize: getEnvAsBool("VISUALIZE", false),
		},
		Paths: PathsConfig{
			DataDir: getEnv("DATA_DIR", "./data"),
		},
	}
}

// Stage directories under DataDir, numbered in pipeline order.
func (p PathsConfig) InputDocuments() string { return filepath.Join(p.DataDir, "01_raw_documents") }
func (p PathsConfig) Images() string         { return filepath.Join(p.DataDir, "02_images") }
func (p PathsConfig) OCRResults() string     { return filepath.Join(p.DataDir, "03_ocr_results") }
func (p PathsConfig) Grouping() string       { return filepath.Join(p.DataDir, "04_vlm_grouping") }
func (p PathsConfig) Classification() string {
	return filepath.Join(p.DataDir, "05_vlm_classification")
}
func (p PathsConfig) FUNSDOutput() string    { return filepath.Join(p.DataDir, "06_funsd_output") }
func (p PathsConfig) Visualizations() string { return filepath.Join(p.DataDir, "visualizations") }
func (p PathsConfig) JobStore() string       { return filepath.Join(p.DataDir, "jobs.db") }

// EnsureDirectories creates every stage directory.
func (p PathsConfig) EnsureDirectories() error {
	dirs := []string{
		p.InputDocuments(), p.Images(), p.OCRResults(),
		p.Grouping(), p.Classification(), p.FUNSDOutput(), p.Visualizations(),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks configuration needed before the VLM stages can run.
// A missing API key is a configuration problem, not a per-page data
// problem, so the run should abort early.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Pipeline.BatchSize <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
