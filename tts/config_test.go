package tts

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if cfg.Engine != "auto" {
		t.Errorf("Default engine should be auto, got %s", cfg.Engine)
	}
	if cfg.ParagraphFallback != FallbackSentences {
		t.Errorf("Default paragraph fallback should be sentences, got %s", cfg.ParagraphFallback)
	}
	if !cfg.Enabled {
		t.Error("Playback should be enabled by default")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"engine is case insensitive", func(c *Config) { c.Engine = "PIPER" }, ""},
		{"invalid engine", func(c *Config) { c.Engine = "google" }, "engine"},
		{"volume too high", func(c *Config) { c.Volume = 1.5 }, "volume"},
		{"bad sample rate", func(c *Config) { c.SampleRate = 22050 }, "sample rate"},
		{"bad fallback", func(c *Config) { c.ParagraphFallback = "never" }, "paragraph_fallback"},
		{"short clip timeout", func(c *Config) { c.ClipTimeout = time.Millisecond }, "clip_timeout"},
		{"zero preload concurrency", func(c *Config) { c.PreloadConcurrency = 0 }, "preload_concurrency"},
		{"zero synthesis rate", func(c *Config) { c.SynthesisRate = 0 }, "synthesis rate"},
		{"bad compression", func(c *Config) { c.Cache.CompressionLevel = 40 }, "compression_level"},
		{"disabled cache skips checks", func(c *Config) { c.Cache.Enabled = false; c.Cache.MemoryMB = 0 }, ""},
		{"empty piper binary", func(c *Config) { c.Piper.Binary = "" }, "piper binary"},
		{"espeak too fast", func(c *Config) { c.Engine = "espeak"; c.Espeak.WordsPerMinute = 900 }, "words_per_minute"},
		{"mock failure rate", func(c *Config) { c.Engine = "mock"; c.Mock.FailureRate = 2 }, "failure_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestToCacheConfig(t *testing.T) {
	c := DefaultCacheConfig()
	c.MemoryMB = 2
	c.DiskMB = 8

	cfg := c.ToCacheConfig("/tmp/lectio")
	if cfg.MemoryCapacity != 2<<20 || cfg.DiskCapacity != 8<<20 {
		t.Errorf("Unexpected capacities %d/%d", cfg.MemoryCapacity, cfg.DiskCapacity)
	}
	if cfg.DiskPath != "/tmp/lectio" {
		t.Errorf("Expected fallback dir, got %q", cfg.DiskPath)
	}

	c.Dir = "/var/cache/lectio"
	if got := c.ToCacheConfig("/tmp/lectio").DiskPath; got != "/var/cache/lectio" {
		t.Errorf("Expected configured dir to win, got %q", got)
	}
}

func TestLoadConfigFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults()
	viper.Set("tts.engine", "espeak")
	viper.Set("tts.paragraph_fallback", "whole")
	viper.Set("tts.clip_timeout", "5s")
	viper.Set("tts.espeak.words_per_minute", 140)
	viper.Set("tts.cache.ttl", "1h")
	viper.Set("tts.piper.timeout", "not a duration")

	cfg, err := LoadConfigFromViper()
	if err != nil {
		t.Fatalf("LoadConfigFromViper failed: %v", err)
	}
	if cfg.Engine != "espeak" || cfg.ParagraphFallback != FallbackWhole {
		t.Errorf("Unexpected engine/fallback %s/%s", cfg.Engine, cfg.ParagraphFallback)
	}
	if cfg.ClipTimeout != 5*time.Second {
		t.Errorf("Expected 5s clip timeout, got %v", cfg.ClipTimeout)
	}
	if cfg.Espeak.WordsPerMinute != 140 {
		t.Errorf("Expected 140 wpm, got %d", cfg.Espeak.WordsPerMinute)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Expected 1h ttl, got %v", cfg.Cache.TTL)
	}
	if cfg.Piper.Timeout != DefaultPiperConfig().Timeout {
		t.Errorf("Expected malformed duration to keep default, got %v", cfg.Piper.Timeout)
	}
}

func TestLoadConfigFromViperInvalid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("tts.volume", 4.0)
	if _, err := LoadConfigFromViper(); err == nil {
		t.Error("Expected invalid volume to be rejected")
	}
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv("LECTIO_TTS_ENGINE", "ESPEAK")
	t.Setenv("LECTIO_CACHE_MEMORY_MB", "16")
	t.Setenv("LECTIO_PIPER_TIMEOUT", "5s")

	cfg := DefaultConfig()
	cfg.Volume = 0.5
	cfg.Espeak.WordsPerMinute = 200
	if err := ApplyEnvironment(&cfg); err != nil {
		t.Fatalf("ApplyEnvironment failed: %v", err)
	}

	if cfg.Engine != "espeak" {
		t.Errorf("Expected engine espeak, got %s", cfg.Engine)
	}
	if cfg.Cache.MemoryMB != 16 {
		t.Errorf("Expected 16 MB memory cache, got %d", cfg.Cache.MemoryMB)
	}
	if cfg.Piper.Timeout != 5*time.Second {
		t.Errorf("Expected piper timeout 5s, got %v", cfg.Piper.Timeout)
	}
	if cfg.Volume != 0.5 || cfg.Espeak.WordsPerMinute != 200 {
		t.Errorf("Expected unset variables to keep values, got volume %f wpm %d", cfg.Volume, cfg.Espeak.WordsPerMinute)
	}
}

func TestApplyEnvironmentInvalid(t *testing.T) {
	t.Setenv("LECTIO_TTS_VOLUME", "loud")

	cfg := DefaultConfig()
	err := ApplyEnvironment(&cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
