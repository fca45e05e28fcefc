package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# color scheme: auto, dark or light
style: "auto"
# mouse wheel scrolling in the lesson view
mouse: false
# maximum width of the lesson text
width: 100
# reload the open unit when its file changes
watch: true

# Reading aloud
tts:
  enabled: true
  # engine: auto (piper, then espeak-ng), piper, espeak or mock
  engine: "auto"
  sample_rate: 44100
  # volume level (0.0 to 1.0)
  volume: 1.0

  # Where recorded clips live. Empty resolves clips next to each unit file.
  # audio_base: "https://example.com/"
  clip_timeout: "15s"

  # Paragraphs without a recording: "sentences" reads them sentence by
  # sentence with highlighting, "whole" reads them in one utterance.
  paragraph_fallback: "sentences"
  max_engine_failures: 3
  synthesis_rate: 4
  synthesis_burst: 2

  # Fetch the paragraph clips of a unit as soon as it opens
  preload: true
  preload_concurrency: 3
  preload_rate: 8

  cache:
    enabled: true
    memory_mb: 64
    disk_mb: 512
    # dir: "~/.cache/lectio/audio"
    compression_level: 3
    ttl: "720h"

  piper:
    binary: "piper"
    model: "en_GB-alba-medium"
    # model_path: "/path/to/model.onnx"
    # data_dir: "/usr/share/piper"
    speaker_id: 0
    noise_scale: 0.667
    noise_w: 0.8
    sentence_silence: "200ms"
    timeout: "30s"

  espeak:
    binary: "espeak-ng"
    voice: "en-gb"
    words_per_minute: 175
    timeout: "15s"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the lectio config file",
	Long:    paragraph(fmt.Sprintf("\n%s the lectio config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("lectio config\nlectio config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Lectio", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
