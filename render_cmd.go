package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/lectio-app/lectio/internal/lesson"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loadTimeout bounds loading a unit outside the TUI.
const loadTimeout = 30 * time.Second

var (
	renderStyle string
	renderWidth uint

	renderCmd = &cobra.Command{
		Use:     "render UNIT",
		Short:   "Print a unit as formatted text",
		Long:    paragraph(fmt.Sprintf("\n%s a unit with its translations, implications and vocabulary to stdout.", keyword("Print"))),
		Example: paragraph("lectio render data/unit1.json\nlectio render -s notty data/unit1.json > unit1.txt"),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderUnit(cmd, args[0], os.Stdout)
		},
	}
)

func init() {
	renderCmd.Flags().StringVarP(&renderStyle, "style", "s", styles.AutoStyle, "glamour style name or JSON path")
	renderCmd.Flags().UintVarP(&renderWidth, "width", "w", 0, "word-wrap at width (0 uses the terminal width)")
}

func renderUnit(cmd *cobra.Command, ref string, w io.Writer) error {
	if err := validateGlamourStyle(renderStyle); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), loadTimeout)
	defer cancel()

	u, err := lesson.NewLoader(lesson.LoaderOptions{}).Load(ctx, ref)
	if err != nil {
		return fmt.Errorf("unable to load unit: %w", err)
	}

	style := renderStyle
	isTerminal := term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = styles.NoTTYStyle
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		glamourStyle(style),
		glamour.WithWordWrap(int(renderWrapWidth(isTerminal))), //nolint:gosec
		glamour.WithEmoji(),
	)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %w", err)
	}

	out, err := r.Render(u.Markdown())
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}
	if _, err := fmt.Fprint(w, out); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	return nil
}

// renderWrapWidth detects the terminal width unless --width was given.
func renderWrapWidth(isTerminal bool) uint {
	width := renderWidth
	if width == 0 && isTerminal {
		w, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint:gosec
		if err == nil {
			width = uint(w) //nolint:gosec
		}
		if width > 120 {
			width = 120
		}
	}
	if width == 0 {
		width = 80
	}
	return width
}

// validateGlamourStyle checks if the style is a default style, if not,
// checks that the custom style exists.
func validateGlamourStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		path, err := homedir.Expand(style)
		if err != nil {
			return fmt.Errorf("unable to expand style path: %w", err)
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func glamourStyle(style string) glamour.TermRendererOption {
	if style == styles.AutoStyle {
		return glamour.WithAutoStyle()
	}
	if styles.DefaultStyles[style] != nil {
		return glamour.WithStandardStyle(style)
	}
	path, _ := homedir.Expand(style)
	return glamour.WithStylePath(path)
}
