// Package video adapts sequential ffmpeg-pipe decoding into the seekable
// frame source the editing session needs. Frames decode forward only, so a
// backward seek reopens the file; every decoded frame is offered to an LRU
// cache keyed by the file's content fingerprint.
package video

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	vidio "github.com/AlexEidt/Vidio"

	"labeledit/app/cache"
)

// Source is a seekable decoder for one video file. Not safe for concurrent
// use; the editing session owns it exclusively.
type Source struct {
	path        string
	fingerprint string
	video       *vidio.Video
	next        int // index the next Read() call will produce
	frames      int
	width       int
	height      int
	cache       *cache.FrameCache
	logger      *slog.Logger
}

// Open probes the video and prepares it for decoding. frameCache may be nil
// to disable caching.
func Open(path string, frameCache *cache.FrameCache, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	v, err := vidio.NewVideo(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}

	fingerprint, err := cache.Fingerprint(path)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to fingerprint video %s: %w", path, err)
	}

	s := &Source{
		path:        path,
		fingerprint: fingerprint,
		video:       v,
		frames:      v.Frames(),
		width:       v.Width(),
		height:      v.Height(),
		cache:       frameCache,
		logger:      logger,
	}
	if s.frames < 1 {
		s.frames = 1
	}

	logger.Info("opened video",
		"path", path,
		"frames", s.frames,
		"width", s.width,
		"height", s.height,
		"fps", v.FPS())
	return s, nil
}

// FrameCount returns the number of addressable frames.
func (s *Source) FrameCount() int { return s.frames }

// Size returns the frame dimensions in pixels.
func (s *Source) Size() (width, height int) { return s.width, s.height }

// Frame returns the decoded frame at idx, clamped to [0, FrameCount()-1] so
// the last frame stays addressable. The returned image may be shared with the
// cache and must be treated as read-only.
func (s *Source) Frame(ctx context.Context, idx int) (*image.RGBA, error) {
	idx = clampIndex(idx, s.frames)

	if s.cache != nil {
		if frame, ok := s.cache.Get(cache.FrameKey(s.fingerprint, idx)); ok {
			return frame, nil
		}
	}

	// Sequential decoder: rewinding means reopening the file.
	if idx < s.next {
		if err := s.reopen(); err != nil {
			return nil, err
		}
	}

	var frame *image.RGBA
	for s.next <= idx {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.video.Read() {
			return nil, fmt.Errorf("failed to decode frame %d of %s", s.next, s.path)
		}
		frame = s.copyFrame()
		if s.cache != nil {
			s.cache.Put(cache.FrameKey(s.fingerprint, s.next), frame)
		}
		s.next++
	}
	return frame, nil
}

// clampIndex bounds a frame index to [0, frames-1].
func clampIndex(idx, frames int) int {
	if idx < 0 {
		return 0
	}
	if idx >= frames {
		return frames - 1
	}
	return idx
}

// reopen restarts decoding from the first frame.
func (s *Source) reopen() error {
	s.video.Close()
	v, err := vidio.NewVideo(s.path)
	if err != nil {
		return fmt.Errorf("failed to reopen video %s: %w", s.path, err)
	}
	s.video = v
	s.next = 0
	return nil
}

// copyFrame snapshots the decoder's reused framebuffer into a fresh image.
func (s *Source) copyFrame() *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	copy(frame.Pix, s.video.FrameBuffer())
	return frame
}

// Close releases the decoder.
func (s *Source) Close() error {
	if s.video != nil {
		s.video.Close()
		s.video = nil
	}
	return nil
}
