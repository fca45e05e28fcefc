package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/lectio-app/lectio/tts"
	"github.com/lectio-app/lectio/tts/engines"
	"github.com/lectio-app/lectio/tts/sentence"
	"github.com/spf13/cobra"
)

var (
	sayEngine string
	sayRate   float64

	sayCmd = &cobra.Command{
		Use:     "say [TEXT]",
		Short:   "Speak text with the configured voice",
		Long:    paragraph(fmt.Sprintf("\n%s text the way lessons fall back to speech. Reads stdin when no text is given.", keyword("Speak"))),
		Example: paragraph("lectio say \"I'm sure you've heard it.\"\necho hello | lectio say --engine espeak"),
		RunE:    say,
	}
)

func init() {
	sayCmd.Flags().StringVarP(&sayEngine, "engine", "e", "", "speech engine: auto, piper, espeak or mock")
	sayCmd.Flags().Float64VarP(&sayRate, "rate", "r", tts.DefaultVoice.Rate, "speaking rate, 1.0 is normal speed")
}

func say(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("unable to read from stdin: %w", err)
		}
		text = string(b)
	}
	sentences := sentence.Split(text)
	if len(sentences) == 0 {
		return tts.ErrEmptyText
	}
	if sayRate <= 0 || sayRate > 3 {
		return fmt.Errorf("rate must be between 0 and 3, got %.2f", sayRate)
	}

	cfg, err := loadPlaybackConfig()
	if err != nil {
		return err
	}
	if sayEngine != "" {
		cfg.Engine = sayEngine
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	cfg.Enabled = true

	svc, err := newServices(cfg)
	if err != nil {
		return fmt.Errorf("unable to set up playback: %w", err)
	}
	defer svc.close() //nolint:errcheck

	if err := svc.synth.Available(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	voice := tts.DefaultVoice
	voice.Rate = sayRate
	w := cmd.ErrOrStderr()
	for i, s := range sentences {
		fmt.Fprintf(w, "%s %s\n", keyword(fmt.Sprintf("%d/%d", i+1, len(sentences))), s)
		if err := speak(ctx, svc.synth, sentence.Speakable(s), voice); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// A failed sentence is skipped.
			log.Error("synthesis failed", "text", s, "err", err)
			fmt.Fprintln(w, "  failed:", err)
		}
	}

	if fe, ok := svc.engine.(*engines.FallbackEngine); ok {
		fmt.Fprintln(w, fe.Status())
	}
	return nil
}

// speak plays one utterance to the end, stopping it if ctx is cancelled.
func speak(ctx context.Context, synth tts.Synthesizer, text string, voice tts.Voice) error {
	pb, err := synth.Speak(ctx, text, voice)
	if err != nil {
		return err
	}
	select {
	case <-pb.Done():
		return pb.Err()
	case <-ctx.Done():
		pb.Stop()
		<-pb.Done()
		return ctx.Err()
	}
}
