package tts

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/lectio-app/lectio/internal/cache"
)

// Paragraph fallback modes.
const (
	FallbackSentences = "sentences"
	FallbackWhole     = "whole"
)

// Config contains all playback configuration options.
type Config struct {
	Enabled bool   `yaml:"enabled" env:"LECTIO_TTS_ENABLED" envDefault:"true"`
	Engine  string `yaml:"engine" env:"LECTIO_TTS_ENGINE" envDefault:"auto"`

	// Audio settings
	SampleRate int     `yaml:"sample_rate" env:"LECTIO_TTS_SAMPLE_RATE" envDefault:"44100"`
	Volume     float64 `yaml:"volume" env:"LECTIO_TTS_VOLUME" envDefault:"1.0"`

	// Recorded clips
	AudioBase   string        `yaml:"audio_base" env:"LECTIO_AUDIO_BASE"`
	ClipTimeout time.Duration `yaml:"clip_timeout" env:"LECTIO_CLIP_TIMEOUT" envDefault:"15s"`

	// Fallback settings
	ParagraphFallback string  `yaml:"paragraph_fallback" env:"LECTIO_TTS_PARAGRAPH_FALLBACK" envDefault:"sentences"`
	MaxEngineFailures int     `yaml:"max_engine_failures" env:"LECTIO_TTS_MAX_ENGINE_FAILURES" envDefault:"3"`
	SynthesisRate     float64 `yaml:"synthesis_rate" env:"LECTIO_TTS_SYNTHESIS_RATE" envDefault:"4"`
	SynthesisBurst    int     `yaml:"synthesis_burst" env:"LECTIO_TTS_SYNTHESIS_BURST" envDefault:"2"`

	// Preloading
	Preload            bool    `yaml:"preload" env:"LECTIO_PRELOAD" envDefault:"true"`
	PreloadConcurrency int     `yaml:"preload_concurrency" env:"LECTIO_PRELOAD_CONCURRENCY" envDefault:"3"`
	PreloadRate        float64 `yaml:"preload_rate" env:"LECTIO_PRELOAD_RATE" envDefault:"8"`

	Cache  CacheConfig  `yaml:"cache"`
	Piper  PiperConfig  `yaml:"piper"`
	Espeak EspeakConfig `yaml:"espeak"`
	Mock   MockConfig   `yaml:"mock"`
}

// CacheConfig sizes the clip and speech cache.
type CacheConfig struct {
	Enabled          bool          `yaml:"enabled" env:"LECTIO_CACHE_ENABLED" envDefault:"true"`
	MemoryMB         int           `yaml:"memory_mb" env:"LECTIO_CACHE_MEMORY_MB" envDefault:"64"`
	DiskMB           int           `yaml:"disk_mb" env:"LECTIO_CACHE_DISK_MB" envDefault:"512"`
	Dir              string        `yaml:"dir" env:"LECTIO_CACHE_DIR"`
	CompressionLevel int           `yaml:"compression_level" env:"LECTIO_CACHE_COMPRESSION_LEVEL" envDefault:"3"`
	TTL              time.Duration `yaml:"ttl" env:"LECTIO_CACHE_TTL" envDefault:"720h"`
}

// PiperConfig contains Piper engine settings.
type PiperConfig struct {
	Binary          string        `yaml:"binary" env:"LECTIO_PIPER_BINARY" envDefault:"piper"`
	Model           string        `yaml:"model" env:"LECTIO_PIPER_MODEL" envDefault:"en_GB-alba-medium"`
	ModelPath       string        `yaml:"model_path" env:"LECTIO_PIPER_MODEL_PATH"`
	DataDir         string        `yaml:"data_dir" env:"LECTIO_PIPER_DATA_DIR"`
	SpeakerID       int           `yaml:"speaker_id" env:"LECTIO_PIPER_SPEAKER_ID" envDefault:"0"`
	NoiseScale      float64       `yaml:"noise_scale" env:"LECTIO_PIPER_NOISE_SCALE" envDefault:"0.667"`
	NoiseW          float64       `yaml:"noise_w" env:"LECTIO_PIPER_NOISE_W" envDefault:"0.8"`
	SentenceSilence time.Duration `yaml:"sentence_silence" env:"LECTIO_PIPER_SENTENCE_SILENCE" envDefault:"200ms"`
	Timeout         time.Duration `yaml:"timeout" env:"LECTIO_PIPER_TIMEOUT" envDefault:"30s"`
}

// EspeakConfig contains espeak-ng engine settings.
type EspeakConfig struct {
	Binary         string        `yaml:"binary" env:"LECTIO_ESPEAK_BINARY" envDefault:"espeak-ng"`
	Voice          string        `yaml:"voice" env:"LECTIO_ESPEAK_VOICE" envDefault:"en-gb"`
	WordsPerMinute int           `yaml:"words_per_minute" env:"LECTIO_ESPEAK_WPM" envDefault:"175"`
	Timeout        time.Duration `yaml:"timeout" env:"LECTIO_ESPEAK_TIMEOUT" envDefault:"15s"`
}

// MockConfig contains mock engine settings for testing.
type MockConfig struct {
	GenerationDelay time.Duration `yaml:"generation_delay" env:"LECTIO_MOCK_GENERATION_DELAY" envDefault:"0s"`
	WordsPerMinute  int           `yaml:"words_per_minute" env:"LECTIO_MOCK_WORDS_PER_MINUTE" envDefault:"150"`
	FailureRate     float64       `yaml:"failure_rate" env:"LECTIO_MOCK_FAILURE_RATE" envDefault:"0.0"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		Engine:     "auto",
		SampleRate: 44100,
		Volume:     1.0,

		ClipTimeout: 15 * time.Second,

		ParagraphFallback: FallbackSentences,
		MaxEngineFailures: 3,
		SynthesisRate:     4,
		SynthesisBurst:    2,

		Preload:            true,
		PreloadConcurrency: 3,
		PreloadRate:        8,

		Cache:  DefaultCacheConfig(),
		Piper:  DefaultPiperConfig(),
		Espeak: DefaultEspeakConfig(),
		Mock:   DefaultMockConfig(),
	}
}

// DefaultCacheConfig returns default cache sizes.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:          true,
		MemoryMB:         64,
		DiskMB:           512,
		CompressionLevel: 3,
		TTL:              30 * 24 * time.Hour,
	}
}

// DefaultPiperConfig returns default Piper configuration.
func DefaultPiperConfig() PiperConfig {
	cfg := PiperConfig{
		Binary:          "piper",
		Model:           "en_GB-alba-medium",
		NoiseScale:      0.667,
		NoiseW:          0.8,
		SentenceSilence: 200 * time.Millisecond,
		Timeout:         30 * time.Second,
	}

	switch runtime.GOOS {
	case "linux":
		cfg.DataDir = filepath.Join("/usr", "share", "piper")
	case "darwin":
		cfg.DataDir = filepath.Join("/usr", "local", "share", "piper")
	}
	return cfg
}

// DefaultEspeakConfig returns default espeak-ng configuration.
func DefaultEspeakConfig() EspeakConfig {
	return EspeakConfig{
		Binary:         "espeak-ng",
		Voice:          "en-gb",
		WordsPerMinute: 175,
		Timeout:        15 * time.Second,
	}
}

// DefaultMockConfig returns default mock configuration.
func DefaultMockConfig() MockConfig {
	return MockConfig{WordsPerMinute: 150}
}

// Validate checks the configuration and normalizes case.
func (c *Config) Validate() error {
	validEngines := []string{"auto", "piper", "espeak", "mock"}
	c.Engine = strings.ToLower(c.Engine)
	if !contains(validEngines, c.Engine) {
		return fmt.Errorf("%w: engine %q must be one of %v", ErrInvalidConfig, c.Engine, validEngines)
	}

	if c.Volume < 0.0 || c.Volume > 1.0 {
		return fmt.Errorf("%w: volume must be between 0.0 and 1.0, got %f", ErrInvalidConfig, c.Volume)
	}

	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		return fmt.Errorf("%w: sample rate must be 44100 or 48000, got %d", ErrInvalidConfig, c.SampleRate)
	}

	c.ParagraphFallback = strings.ToLower(c.ParagraphFallback)
	if c.ParagraphFallback != FallbackSentences && c.ParagraphFallback != FallbackWhole {
		return fmt.Errorf("%w: paragraph_fallback must be %q or %q, got %q",
			ErrInvalidConfig, FallbackSentences, FallbackWhole, c.ParagraphFallback)
	}

	if c.ClipTimeout < time.Second {
		return fmt.Errorf("%w: clip_timeout must be at least 1s, got %v", ErrInvalidConfig, c.ClipTimeout)
	}
	if c.MaxEngineFailures < 1 {
		return fmt.Errorf("%w: max_engine_failures must be positive, got %d", ErrInvalidConfig, c.MaxEngineFailures)
	}
	if c.SynthesisRate <= 0 || c.SynthesisBurst < 1 {
		return fmt.Errorf("%w: synthesis rate and burst must be positive", ErrInvalidConfig)
	}
	if c.PreloadConcurrency < 1 || c.PreloadConcurrency > 16 {
		return fmt.Errorf("%w: preload_concurrency must be between 1 and 16, got %d", ErrInvalidConfig, c.PreloadConcurrency)
	}
	if c.PreloadRate <= 0 {
		return fmt.Errorf("%w: preload_rate must be positive, got %f", ErrInvalidConfig, c.PreloadRate)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	switch c.Engine {
	case "piper":
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
	case "espeak":
		if err := c.Espeak.Validate(); err != nil {
			return fmt.Errorf("espeak config: %w", err)
		}
	case "auto":
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
		if err := c.Espeak.Validate(); err != nil {
			return fmt.Errorf("espeak config: %w", err)
		}
	case "mock":
		if err := c.Mock.Validate(); err != nil {
			return fmt.Errorf("mock config: %w", err)
		}
	}
	return nil
}

// Validate checks cache sizes.
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MemoryMB < 1 {
		return fmt.Errorf("%w: memory_mb must be positive, got %d", ErrInvalidConfig, c.MemoryMB)
	}
	if c.DiskMB < 0 {
		return fmt.Errorf("%w: disk_mb cannot be negative, got %d", ErrInvalidConfig, c.DiskMB)
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 22 {
		return fmt.Errorf("%w: compression_level must be between 0 and 22, got %d", ErrInvalidConfig, c.CompressionLevel)
	}
	return nil
}

// Validate checks if the Piper configuration is valid.
func (c *PiperConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("%w: piper binary path cannot be empty", ErrInvalidConfig)
	}
	if c.Model == "" && c.ModelPath == "" {
		return fmt.Errorf("%w: piper model cannot be empty", ErrInvalidConfig)
	}
	if c.NoiseScale < 0 || c.NoiseScale > 2.0 {
		return fmt.Errorf("%w: noise_scale must be between 0.0 and 2.0, got %f", ErrInvalidConfig, c.NoiseScale)
	}
	if c.NoiseW < 0 || c.NoiseW > 2.0 {
		return fmt.Errorf("%w: noise_w must be between 0.0 and 2.0, got %f", ErrInvalidConfig, c.NoiseW)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("%w: timeout must be at least 1 second, got %v", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// Validate checks if the espeak configuration is valid.
func (c *EspeakConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("%w: espeak binary path cannot be empty", ErrInvalidConfig)
	}
	if c.WordsPerMinute < 80 || c.WordsPerMinute > 450 {
		return fmt.Errorf("%w: words_per_minute must be between 80 and 450, got %d", ErrInvalidConfig, c.WordsPerMinute)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("%w: timeout must be at least 1 second, got %v", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// Validate checks if the mock configuration is valid.
func (c *MockConfig) Validate() error {
	if c.WordsPerMinute < 50 || c.WordsPerMinute > 500 {
		return fmt.Errorf("%w: words_per_minute must be between 50 and 500, got %d", ErrInvalidConfig, c.WordsPerMinute)
	}
	if c.FailureRate < 0.0 || c.FailureRate > 1.0 {
		return fmt.Errorf("%w: failure_rate must be between 0.0 and 1.0, got %f", ErrInvalidConfig, c.FailureRate)
	}
	return nil
}

// ToCacheConfig converts cache settings for the cache manager. dir is used
// when no cache directory is configured; an empty result dir keeps the cache
// in memory only.
func (c CacheConfig) ToCacheConfig(dir string) cache.Config {
	cfg := cache.DefaultConfig()
	cfg.MemoryCapacity = int64(c.MemoryMB) << 20
	cfg.DiskCapacity = int64(c.DiskMB) << 20
	cfg.CompressionLevel = c.CompressionLevel
	cfg.TTL = c.TTL
	cfg.DiskPath = c.Dir
	if cfg.DiskPath == "" {
		cfg.DiskPath = dir
	}
	return cfg
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
