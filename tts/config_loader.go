package tts

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// envOnly names a struct tag no field carries, so ApplyEnvironment never
// falls back to envDefault values.
const envOnly = "envOnly"

// LoadConfigFromViper loads playback configuration from the "tts" section.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("tts.enabled") {
		cfg.Enabled = viper.GetBool("tts.enabled")
	}
	if viper.IsSet("tts.engine") {
		cfg.Engine = viper.GetString("tts.engine")
	}

	// Audio settings
	if viper.IsSet("tts.sample_rate") {
		cfg.SampleRate = viper.GetInt("tts.sample_rate")
	}
	if viper.IsSet("tts.volume") {
		cfg.Volume = viper.GetFloat64("tts.volume")
	}

	// Recorded clips
	if viper.IsSet("tts.audio_base") {
		cfg.AudioBase = viper.GetString("tts.audio_base")
	}
	cfg.ClipTimeout = getDuration("tts.clip_timeout", cfg.ClipTimeout)

	// Fallback settings
	if viper.IsSet("tts.paragraph_fallback") {
		cfg.ParagraphFallback = viper.GetString("tts.paragraph_fallback")
	}
	if viper.IsSet("tts.max_engine_failures") {
		cfg.MaxEngineFailures = viper.GetInt("tts.max_engine_failures")
	}
	if viper.IsSet("tts.synthesis_rate") {
		cfg.SynthesisRate = viper.GetFloat64("tts.synthesis_rate")
	}
	if viper.IsSet("tts.synthesis_burst") {
		cfg.SynthesisBurst = viper.GetInt("tts.synthesis_burst")
	}

	// Preloading
	if viper.IsSet("tts.preload") {
		cfg.Preload = viper.GetBool("tts.preload")
	}
	if viper.IsSet("tts.preload_concurrency") {
		cfg.PreloadConcurrency = viper.GetInt("tts.preload_concurrency")
	}
	if viper.IsSet("tts.preload_rate") {
		cfg.PreloadRate = viper.GetFloat64("tts.preload_rate")
	}

	cfg.Cache = loadCacheConfig()
	cfg.Piper = loadPiperConfig()
	cfg.Espeak = loadEspeakConfig()
	cfg.Mock = loadMockConfig()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid TTS configuration: %w", err)
	}
	return cfg, nil
}

func loadCacheConfig() CacheConfig {
	cfg := DefaultCacheConfig()

	if viper.IsSet("tts.cache.enabled") {
		cfg.Enabled = viper.GetBool("tts.cache.enabled")
	}
	if viper.IsSet("tts.cache.memory_mb") {
		cfg.MemoryMB = viper.GetInt("tts.cache.memory_mb")
	}
	if viper.IsSet("tts.cache.disk_mb") {
		cfg.DiskMB = viper.GetInt("tts.cache.disk_mb")
	}
	if viper.IsSet("tts.cache.dir") {
		cfg.Dir = viper.GetString("tts.cache.dir")
	}
	if viper.IsSet("tts.cache.compression_level") {
		cfg.CompressionLevel = viper.GetInt("tts.cache.compression_level")
	}
	cfg.TTL = getDuration("tts.cache.ttl", cfg.TTL)
	return cfg
}

func loadPiperConfig() PiperConfig {
	cfg := DefaultPiperConfig()

	if viper.IsSet("tts.piper.binary") {
		cfg.Binary = viper.GetString("tts.piper.binary")
	}
	if viper.IsSet("tts.piper.model") {
		cfg.Model = viper.GetString("tts.piper.model")
	}
	if viper.IsSet("tts.piper.model_path") {
		cfg.ModelPath = viper.GetString("tts.piper.model_path")
	}
	if viper.IsSet("tts.piper.data_dir") {
		cfg.DataDir = viper.GetString("tts.piper.data_dir")
	}
	if viper.IsSet("tts.piper.speaker_id") {
		cfg.SpeakerID = viper.GetInt("tts.piper.speaker_id")
	}
	if viper.IsSet("tts.piper.noise_scale") {
		cfg.NoiseScale = viper.GetFloat64("tts.piper.noise_scale")
	}
	if viper.IsSet("tts.piper.noise_w") {
		cfg.NoiseW = viper.GetFloat64("tts.piper.noise_w")
	}
	cfg.SentenceSilence = getDuration("tts.piper.sentence_silence", cfg.SentenceSilence)
	cfg.Timeout = getDuration("tts.piper.timeout", cfg.Timeout)
	return cfg
}

func loadEspeakConfig() EspeakConfig {
	cfg := DefaultEspeakConfig()

	if viper.IsSet("tts.espeak.binary") {
		cfg.Binary = viper.GetString("tts.espeak.binary")
	}
	if viper.IsSet("tts.espeak.voice") {
		cfg.Voice = viper.GetString("tts.espeak.voice")
	}
	if viper.IsSet("tts.espeak.words_per_minute") {
		cfg.WordsPerMinute = viper.GetInt("tts.espeak.words_per_minute")
	}
	cfg.Timeout = getDuration("tts.espeak.timeout", cfg.Timeout)
	return cfg
}

func loadMockConfig() MockConfig {
	cfg := DefaultMockConfig()

	cfg.GenerationDelay = getDuration("tts.mock.generation_delay", cfg.GenerationDelay)
	if viper.IsSet("tts.mock.words_per_minute") {
		cfg.WordsPerMinute = viper.GetInt("tts.mock.words_per_minute")
	}
	if viper.IsSet("tts.mock.failure_rate") {
		cfg.FailureRate = viper.GetFloat64("tts.mock.failure_rate")
	}
	return cfg
}

// ApplyEnvironment overrides cfg with the LECTIO_* variables that are set,
// then validates it. Unset variables keep the file or default value.
func ApplyEnvironment(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{DefaultValueTagName: envOnly}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid TTS configuration: %w", err)
	}
	return nil
}

// getDuration reads a duration key, keeping def when unset or malformed.
func getDuration(key string, def time.Duration) time.Duration {
	if !viper.IsSet(key) {
		return def
	}
	if d, err := time.ParseDuration(viper.GetString(key)); err == nil {
		return d
	}
	return def
}

// SetDefaults sets default values in Viper for playback configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("tts.enabled", defaults.Enabled)
	viper.SetDefault("tts.engine", defaults.Engine)
	viper.SetDefault("tts.sample_rate", defaults.SampleRate)
	viper.SetDefault("tts.volume", defaults.Volume)
	viper.SetDefault("tts.clip_timeout", defaults.ClipTimeout.String())

	viper.SetDefault("tts.paragraph_fallback", defaults.ParagraphFallback)
	viper.SetDefault("tts.max_engine_failures", defaults.MaxEngineFailures)
	viper.SetDefault("tts.synthesis_rate", defaults.SynthesisRate)
	viper.SetDefault("tts.synthesis_burst", defaults.SynthesisBurst)

	viper.SetDefault("tts.preload", defaults.Preload)
	viper.SetDefault("tts.preload_concurrency", defaults.PreloadConcurrency)
	viper.SetDefault("tts.preload_rate", defaults.PreloadRate)

	// Cache defaults
	viper.SetDefault("tts.cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("tts.cache.memory_mb", defaults.Cache.MemoryMB)
	viper.SetDefault("tts.cache.disk_mb", defaults.Cache.DiskMB)
	viper.SetDefault("tts.cache.compression_level", defaults.Cache.CompressionLevel)
	viper.SetDefault("tts.cache.ttl", defaults.Cache.TTL.String())

	// Piper defaults
	viper.SetDefault("tts.piper.binary", defaults.Piper.Binary)
	viper.SetDefault("tts.piper.model", defaults.Piper.Model)
	viper.SetDefault("tts.piper.speaker_id", defaults.Piper.SpeakerID)
	viper.SetDefault("tts.piper.noise_scale", defaults.Piper.NoiseScale)
	viper.SetDefault("tts.piper.noise_w", defaults.Piper.NoiseW)
	viper.SetDefault("tts.piper.sentence_silence", defaults.Piper.SentenceSilence.String())
	viper.SetDefault("tts.piper.timeout", defaults.Piper.Timeout.String())

	// espeak defaults
	viper.SetDefault("tts.espeak.binary", defaults.Espeak.Binary)
	viper.SetDefault("tts.espeak.voice", defaults.Espeak.Voice)
	viper.SetDefault("tts.espeak.words_per_minute", defaults.Espeak.WordsPerMinute)
	viper.SetDefault("tts.espeak.timeout", defaults.Espeak.Timeout.String())

	// Mock defaults
	viper.SetDefault("tts.mock.generation_delay", defaults.Mock.GenerationDelay.String())
	viper.SetDefault("tts.mock.words_per_minute", defaults.Mock.WordsPerMinute)
	viper.SetDefault("tts.mock.failure_rate", defaults.Mock.FailureRate)
}
