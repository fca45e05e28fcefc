package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lectio-app/lectio/internal/cache"
	"github.com/lectio-app/lectio/internal/lesson"
	"github.com/lectio-app/lectio/tts"
	"golang.org/x/sync/singleflight"
)

const maxClipSize = 32 << 20

// ErrClipTooLarge is returned for clips over 32 MiB.
var ErrClipTooLarge = errors.New("clip too large")

// ClipSource plays recorded clips. Refs are file paths or http(s) URLs;
// fetched bytes are kept in the cache keyed by ref.
type ClipSource struct {
	player  tts.AudioPlayer
	client  *http.Client
	cache   *cache.Manager
	timeout time.Duration
	maxSize int64
	logger  *log.Logger

	group singleflight.Group
}

// ClipOption configures a ClipSource.
type ClipOption func(*ClipSource)

// WithClipCache keeps fetched clips in m.
func WithClipCache(m *cache.Manager) ClipOption {
	return func(s *ClipSource) { s.cache = m }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) ClipOption {
	return func(s *ClipSource) { s.client = c }
}

// WithClipTimeout bounds each fetch.
func WithClipTimeout(d time.Duration) ClipOption {
	return func(s *ClipSource) { s.timeout = d }
}

// WithClipLogger sets the logger.
func WithClipLogger(l *log.Logger) ClipOption {
	return func(s *ClipSource) { s.logger = l }
}

// NewClipSource creates a clip source that plays through player.
func NewClipSource(player tts.AudioPlayer, opts ...ClipOption) *ClipSource {
	s := &ClipSource{
		player:  player,
		client:  http.DefaultClient,
		timeout: 15 * time.Second,
		maxSize: maxClipSize,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start fetches and starts the clip at ref. Any failure wraps
// tts.ErrClipUnavailable.
func (s *ClipSource) Start(ctx context.Context, ref string) (tts.Playback, error) {
	data, err := s.fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", tts.ErrClipUnavailable, ref, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pb, err := s.player.Play(&tts.Audio{Data: data, Format: FormatOf(ref)})
	if err != nil {
		if s.cache != nil {
			_ = s.cache.Delete(ref)
		}
		return nil, fmt.Errorf("%w: %s: %w", tts.ErrClipUnavailable, ref, err)
	}
	return pb, nil
}

// Prefetch loads ref into the cache. Without a cache it does nothing.
func (s *ClipSource) Prefetch(ctx context.Context, ref string) error {
	if s.cache == nil || s.cache.Contains(ref) {
		return nil
	}
	_, err := s.fetch(ctx, ref)
	return err
}

// FormatOf guesses the encoding from the file extension.
func FormatOf(ref string) tts.AudioFormat {
	if i := strings.IndexAny(ref, "?#"); i >= 0 && lesson.IsURL(ref) {
		ref = ref[:i]
	}
	if strings.EqualFold(path.Ext(ref), ".wav") {
		return tts.FormatWAV
	}
	return tts.FormatMP3
}

func (s *ClipSource) fetch(ctx context.Context, ref string) ([]byte, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(ref); ok {
			return data, nil
		}
	}

	// The load outlives any one caller; each caller stops waiting on its own ctx.
	ch := s.group.DoChan(ref, func() (any, error) {
		data, err := s.load(context.WithoutCancel(ctx), ref)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Put(ref, data); err != nil {
				s.logger.Debug("clip not cached", "ref", ref, "err", err)
			}
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("clip fetch shared", "ref", ref)
		}
		return res.Val.([]byte), nil
	}
}

func (s *ClipSource) load(ctx context.Context, ref string) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if !lesson.IsURL(ref) {
		data, err := os.ReadFile(strings.TrimPrefix(ref, "file://"))
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, tts.ErrNothingToPlay
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrClipTooLarge
	}
	if len(data) == 0 {
		return nil, tts.ErrNothingToPlay
	}
	s.logger.Debug("fetched clip", "ref", ref, "bytes", len(data))
	return data, nil
}

var (
	_ tts.ClipPlayer = (*ClipSource)(nil)
	_ tts.Prefetcher = (*ClipSource)(nil)
)
