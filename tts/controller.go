// Package tts plays lesson audio: recorded clips first, on-device speech
// synthesis as the fallback, with the spoken sentence highlighted.
package tts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/lectio-app/lectio/internal/lesson"
	"github.com/lectio-app/lectio/tts/sentence"
)

// Units without paragraphs still get this many clips warmed.
const defaultPreloadCount = 6

// Status is a snapshot of the controller.
type Status struct {
	Active     bool
	Target     Target
	Control    ControlID
	State      ButtonState
	Source     HandleKind
	Sentence   int // position in a sentence sequence, -1 otherwise
	Total      int
	Generation uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller owns the single playback session. Every entry point stops the
// previous session before starting a new one; requests preempt, nothing is
// queued.
type Controller struct {
	clips       ClipPlayer
	synth       Synthesizer
	highlighter Highlighter
	config      Config
	logger      *log.Logger

	mu         sync.Mutex
	unit       *lesson.Unit
	doc        Document
	session    *Session
	generation uint64
	closed     bool

	changes chan struct{}
}

// NewController creates a controller. A nil clip player sends every request
// straight to synthesis; a nil synthesizer makes the fallback a no-op.
func NewController(clips ClipPlayer, synth Synthesizer, hl Highlighter, cfg Config, opts ...Option) *Controller {
	if hl == nil {
		hl = noHighlighter{}
	}
	c := &Controller{
		clips:       clips,
		synth:       synth,
		highlighter: hl,
		config:      cfg,
		logger:      log.Default(),
		changes:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Changes delivers a value whenever the status may have changed. Bursts are
// coalesced. The channel is closed by Close.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{Sentence: -1, Generation: c.generation}
	if s := c.session; s != nil {
		st.Active = true
		st.Target = s.target
		st.Control = s.id
		st.State = s.machine.Current()
		st.Source = s.handle.Kind
		if s.seq != nil {
			st.Sentence = s.seq.Index()
			st.Total = s.seq.Len()
		}
	}
	return st
}

// Unit returns the loaded unit.
func (c *Controller) Unit() *lesson.Unit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unit
}

// LoadUnit stops playback and swaps in a new unit and its rendered document.
func (c *Controller) LoadUnit(unit *lesson.Unit, doc Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked("unit changed")
	c.unit = unit
	c.doc = doc
	c.highlighter.Attach(doc)
	c.notifyLocked()
}

// ToggleParagraph plays paragraph n, or stops it when its button is playing.
func (c *Controller) ToggleParagraph(ctx context.Context, n int) error {
	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	para, ok := c.unit.Paragraph(n)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("paragraph %d: %w", n, ErrTargetNotFound)
	}
	target := ParagraphTarget(n)
	if c.togglesOffLocked(target) {
		c.stopLocked("toggled off")
		c.mu.Unlock()
		return nil
	}

	ref := c.unit.ClipRef(lesson.ClipParagraph, n)
	c.playLocked(ctx, target, ref, func(s *Session) {
		if c.config.ParagraphFallback == FallbackWhole {
			c.speakLocked(s, para.English, true)
			return
		}
		c.sequenceLocked(s, para.SentenceList())
	})
	return nil
}

// PlaySentence speaks one sentence of paragraph n and highlights it. An
// empty text is looked up from the unit.
func (c *Controller) PlaySentence(ctx context.Context, n, i int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.readyLocked(); err != nil {
		return err
	}
	if text == "" {
		if para, ok := c.unit.Paragraph(n); ok {
			if list := para.SentenceList(); i >= 0 && i < len(list) {
				text = list[i]
			}
		}
	}
	if text == "" {
		return fmt.Errorf("sentence %d.%d: %w", n, i, ErrTargetNotFound)
	}

	s := c.beginLocked(ctx, SentenceTarget(n, i))
	c.highlighter.Highlight(n, i)
	c.speakLocked(s, text, false)
	return nil
}

// PlayVocabulary plays the word with the given id, or stops it when its
// button is playing.
func (c *Controller) PlayVocabulary(ctx context.Context, id int) error {
	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	word, ok := c.unit.Word(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("vocabulary %d: %w", id, ErrTargetNotFound)
	}
	target := VocabularyTarget(id)
	if c.togglesOffLocked(target) {
		c.stopLocked("toggled off")
		c.mu.Unlock()
		return nil
	}

	ref := c.unit.ClipRef(lesson.ClipVocabulary, id)
	c.playLocked(ctx, target, ref, func(s *Session) {
		c.speakLocked(s, word.Word, false)
	})
	return nil
}

// ToggleImplication plays the implication of paragraph n, or stops it when
// its button is playing.
func (c *Controller) ToggleImplication(ctx context.Context, n int) error {
	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	para, ok := c.unit.Paragraph(n)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("implication %d: %w", n, ErrTargetNotFound)
	}
	target := ImplicationTarget(n)
	if c.togglesOffLocked(target) {
		c.stopLocked("toggled off")
		c.mu.Unlock()
		return nil
	}

	ref := c.unit.ClipRef(lesson.ClipImplication, n)
	c.playLocked(ctx, target, ref, func(s *Session) {
		c.speakLocked(s, sentence.StripImplicationMarker(para.Implication.English), false)
	})
	return nil
}

// Stop ends any playback. It is idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked("stopped")
}

// Preload warms the clip cache with every paragraph clip of the loaded
// unit. Failures are only logged. It returns how many clips were fetched.
func (c *Controller) Preload(ctx context.Context) (int, error) {
	c.mu.Lock()
	unit, closed := c.unit, c.closed
	c.mu.Unlock()

	p, ok := c.clips.(Prefetcher)
	if closed || unit == nil || !ok {
		return 0, nil
	}

	count := unit.ParagraphCount()
	if count == 0 {
		count = defaultPreloadCount
	}

	limiter := rate.NewLimiter(rate.Limit(c.config.PreloadRate), 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.config.PreloadConcurrency, 1))

	var warmed atomic.Int64
	for n := 1; n <= count; n++ {
		ref := unit.ClipRef(lesson.ClipParagraph, n)
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			if err := p.Prefetch(gctx, ref); err != nil {
				c.logger.Debug("preload failed", "url", ref, "err", err)
				return nil
			}
			warmed.Add(1)
			return nil
		})
	}
	err := g.Wait()

	c.logger.Debug("preloaded unit audio", "unit", unit.UnitID, "clips", warmed.Load(), "of", count)
	return int(warmed.Load()), err
}

// Close stops playback and closes the Changes channel.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.stopLocked("closed")
	c.closed = true
	close(c.changes)
	return nil
}

func (c *Controller) readyLocked() error {
	if c.closed {
		return ErrControllerClosed
	}
	if c.unit == nil {
		return ErrNoUnit
	}
	return nil
}

// togglesOffLocked reports whether target's control is the one playing.
func (c *Controller) togglesOffLocked(target Target) bool {
	s := c.session
	return s != nil && s.id == target.Control() && s.machine.Current() == ButtonPlaying
}

func (c *Controller) beginLocked(ctx context.Context, target Target) *Session {
	c.stopLocked("preempted")

	var ctl Control
	if c.doc != nil {
		if found, ok := c.doc.Control(target.Control()); ok {
			ctl = found
		}
	}
	c.generation++
	s := newSession(ctx, c.generation, target, ctl)
	c.session = s

	c.logger.Debug("session started", "gen", s.gen, "target", s.target)
	c.notifyLocked()
	return s
}

func (c *Controller) currentLocked(s *Session) bool {
	return c.session != nil && c.session.gen == s.gen
}

// playLocked starts a session that tries the recorded clip at ref first.
// It is called with c.mu held and returns with it released.
func (c *Controller) playLocked(ctx context.Context, target Target, ref string, fallback func(*Session)) {
	s := c.beginLocked(ctx, target)
	if c.clips == nil {
		fallback(s)
		c.mu.Unlock()
		return
	}
	s.setState(ButtonLoading, LoadingLabel(s.id.Kind))
	c.notifyLocked()
	c.mu.Unlock()

	pb, err := c.clips.Start(s.ctx, ref)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(s) {
		if pb != nil {
			pb.Stop()
		}
		return
	}
	if err != nil {
		perr := NewPlaybackError(err, "clip", "start").
			WithSeverity(SeverityWarning).
			WithContext("url", ref)
		c.logger.Warn("recorded clip unavailable, falling back to speech", "target", s.target, "err", perr)
		fallback(s)
		return
	}

	s.handle = Handle{Kind: HandleRecorded, Playback: pb}
	c.playingLocked(s, false)
	go c.await(s, pb, func() { c.endLocked(s, "finished") })
}

// speakLocked synthesizes text as a single utterance.
func (c *Controller) speakLocked(s *Session, text string, whole bool) {
	text = sentence.Speakable(text)
	if text == "" {
		c.endLocked(s, ErrEmptyText.Error())
		return
	}
	if err := c.synthAvailable(); err != nil {
		c.logger.Warn("speech synthesis unavailable", "target", s.target, "err", err)
		c.endLocked(s, "synthesis unavailable")
		return
	}

	c.playingLocked(s, whole)
	go c.speak(s, text, func() { c.endLocked(s, "finished") })
}

// sequenceLocked reads sentences one utterance at a time.
func (c *Controller) sequenceLocked(s *Session, sentences []string) {
	if err := c.synthAvailable(); err != nil {
		c.logger.Warn("speech synthesis unavailable", "target", s.target, "err", err)
		c.endLocked(s, "synthesis unavailable")
		return
	}
	s.seq = NewSequence(s.target.Paragraph, sentences)
	if s.seq.Len() == 0 {
		c.endLocked(s, "no sentences")
		return
	}

	c.playingLocked(s, false)
	c.advanceLocked(s)
}

func (c *Controller) advanceLocked(s *Session) {
	for {
		i, text, ok := s.seq.Next()
		if !ok {
			c.endLocked(s, "sequence finished")
			return
		}

		c.highlighter.Highlight(s.seq.Paragraph(), i)
		c.notifyLocked()

		if text = sentence.Speakable(text); text != "" {
			go c.speak(s, text, func() { c.advanceLocked(s) })
			return
		}
	}
}

// speak runs one synthesis outside the lock. next is called with the lock
// held when the utterance completes or fails.
func (c *Controller) speak(s *Session, text string, next func()) {
	pb, err := c.synth.Speak(s.ctx, text, DefaultVoice)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(s) {
		if pb != nil {
			pb.Stop()
		}
		return
	}
	if err != nil {
		c.logger.Error("speech synthesis failed", "target", s.target,
			"err", NewPlaybackError(err, "synth", "speak").WithContext("text", text))
		next()
		return
	}

	s.handle = Handle{Kind: HandleSynthesized, Playback: pb}
	c.notifyLocked()
	go c.await(s, pb, next)
}

// await waits for pb to end and calls next unless the session moved on.
func (c *Controller) await(s *Session, pb Playback, next func()) {
	<-pb.Done()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(s) || s.handle.Playback != pb {
		return
	}
	if err := pb.Err(); err != nil && !errors.Is(err, ErrPlaybackStopped) {
		c.logger.Warn("playback ended with error", "target", s.target, "source", s.handle.Kind, "err", err)
	}
	next()
}

func (c *Controller) playingLocked(s *Session, whole bool) {
	if !s.setState(ButtonPlaying, PlayingLabel(s.id.Kind, whole)) {
		c.logger.Debug("unexpected button transition", "control", s.id, "to", ButtonPlaying)
	}
	if s.target.Kind == TargetImplication && c.doc != nil {
		for _, el := range c.doc.ImplicationParts(s.target.Paragraph) {
			el.Mark(MarkPlaying)
		}
	}
	c.notifyLocked()
}

// endLocked finishes s if it is still the current session.
func (c *Controller) endLocked(s *Session, reason string) {
	if c.currentLocked(s) {
		c.stopLocked(reason)
	}
}

func (c *Controller) stopLocked(reason string) {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil

	s.halt()
	c.highlighter.ClearAll()
	s.reset()

	c.logger.Debug("session ended", "gen", s.gen, "target", s.target, "reason", reason)
	c.notifyLocked()
}

func (c *Controller) synthAvailable() error {
	if c.synth == nil {
		return ErrSynthesisUnavailable
	}
	if err := c.synth.Available(); err != nil {
		return fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err)
	}
	return nil
}

func (c *Controller) notifyLocked() {
	if c.closed {
		return
	}
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

type noHighlighter struct{}

func (noHighlighter) Attach(Document)    {}
func (noHighlighter) Highlight(int, int) {}
func (noHighlighter) ClearAll()          {}
