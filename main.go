// Package main provides the entry point for the lectio CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/lectio-app/lectio/internal/lesson"
	"github.com/lectio-app/lectio/tts"
	"github.com/lectio-app/lectio/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	style      string
	width      uint
	mouse      bool
	watch      bool
	debug      bool
	audioBase  string

	rootCmd = &cobra.Command{
		Use:   "lectio [UNIT|DIR]",
		Short: "Read English lessons in the terminal, aloud",
		Long: paragraph(
			fmt.Sprintf("\nRead English lessons in the terminal, %s!\n\n"+
				"UNIT is a unit JSON file or URL; DIR is searched for a units-index.json and unit files.", keyword("aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if f := cmd.Flag("config"); f != nil && f.Changed {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	watch = viper.GetBool("watch")
	debug = viper.GetBool("debug")
	audioBase = viper.GetString("tts.audio_base")

	if debug {
		log.SetLevel(log.DebugLevel)
	}

	style = strings.ToLower(viper.GetString("style"))
	switch style {
	case ui.AutoStyle, ui.DarkStyle, ui.LightStyle:
	default:
		return fmt.Errorf("unknown style %q: use %s, %s or %s", style, ui.AutoStyle, ui.DarkStyle, ui.LightStyle)
	}
	return nil
}

// loadPlaybackConfig reads the tts section of the config file and the
// LECTIO_* environment.
func loadPlaybackConfig() (tts.Config, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return cfg, err
	}
	if err := tts.ApplyEnvironment(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func execute(_ *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
		if !lesson.IsURL(path) {
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("unable to open %s: %w", path, err)
			}
		}
	}
	return runTUI(path)
}

func runTUI(path string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Path = path
	cfg.Style = style
	cfg.MaxWidth = width
	cfg.EnableMouse = mouse
	cfg.Watch = watch

	playback, err := loadPlaybackConfig()
	if err != nil {
		return err
	}
	cfg.Preload = cfg.Preload && playback.Preload

	svc, err := newServices(playback)
	if err != nil {
		return fmt.Errorf("unable to set up playback: %w", err)
	}
	defer func() {
		if err := svc.close(); err != nil {
			log.Error("Could not shut down playback", "err", err)
		}
	}()

	loader := lesson.NewLoader(lesson.LoaderOptions{
		AudioBase: audioBase,
		Timeout:   playback.ClipTimeout,
		Logger:    log.Default(),
	})

	var watcher *lesson.Watcher
	if cfg.Watch {
		watcher, err = lesson.NewWatcher(log.Default())
		if err != nil {
			log.Warn("Could not watch unit files", "err", err)
		} else {
			defer watcher.Close() //nolint:errcheck
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := ui.Deps{
		Controller: svc.controller,
		Hover:      svc.highlighter,
		Loader:     loader,
		Library:    lesson.NewLibrary(nil),
		Watcher:    watcher,
		Cache:      svc.cache,
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(ctx, cfg, deps).Run(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	loadDotEnv()
	tryLoadConfigFromDefaultPlaces()

	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default lectio.yml in the user config directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug output to the log file")
	rootCmd.Flags().StringVarP(&style, "style", "s", ui.AutoStyle, "color scheme: auto, dark or light")
	rootCmd.Flags().UintVarP(&width, "width", "w", 100, "maximum width of the lesson text")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel scrolling")
	rootCmd.Flags().BoolVar(&watch, "watch", true, "reload the open unit when its file changes")
	rootCmd.Flags().StringVar(&audioBase, "audio-base", "", "directory or URL recorded clips are resolved against")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("watch", rootCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("tts.audio_base", rootCmd.Flags().Lookup("audio-base"))

	viper.SetDefault("style", ui.AutoStyle)
	viper.SetDefault("width", 100)
	viper.SetDefault("watch", true)
	tts.SetDefaults()

	rootCmd.AddCommand(configCmd, manCmd, renderCmd, sayCmd)
}

// loadDotEnv reads .env from the working directory. Variables already in
// the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not parse .env", "err", err)
	}
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "lectio")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "lectio")}, dirs...)
	}

	if c := os.Getenv("LECTIO_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("lectio")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("lectio")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "lectio.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
