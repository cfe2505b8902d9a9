package platform

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/iudanet/winelog/internal/models"
)

// Stream is an open camera stream.
type Stream interface {
	Capture(ctx context.Context) (models.Media, error)
	// Stop releases all tracks of the stream. Safe to call repeatedly.
	Stop()
}

// Camera opens camera streams.
type Camera interface {
	OpenStream(ctx context.Context, facing Facing) (Stream, error)
}

// StreamSession holds at most one open stream.
// Use with defer Release() so the stream is released on every exit path.
type StreamSession struct {
	mu      sync.Mutex
	camera  Camera
	current Stream
	facing  Facing
}

// NewStreamSession creates a session on camera.
func NewStreamSession(camera Camera) *StreamSession {
	return &StreamSession{camera: camera}
}

// Acquire releases any held stream and opens a new one for facing.
func (s *StreamSession) Acquire(ctx context.Context, facing Facing) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked()
	st, err := s.camera.OpenStream(ctx, facing)
	if err != nil {
		return nil, fmt.Errorf("open %s camera: %w", facing, err)
	}
	s.current, s.facing = st, facing
	return st, nil
}

// Facing returns the camera of the held stream, empty when none is held.
func (s *StreamSession) Facing() Facing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

// Active reports whether a stream is held.
func (s *StreamSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Release stops the held stream, if any.
func (s *StreamSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
}

func (s *StreamSession) releaseLocked() {
	if s.current == nil {
		return
	}
	s.current.Stop()
	s.current, s.facing = nil, ""
}

// spoolStream keeps the camera spool directory open while the stream is live.
type spoolStream struct {
	mu  sync.Mutex
	dir *os.File
}

// OpenStream opens the spool directory of the camera.
func (n *Native) OpenStream(ctx context.Context, facing Facing) (Stream, error) {
	if n.cameraDir == "" {
		return nil, fmt.Errorf("camera: %w", ErrUnsupported)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := os.Open(n.spoolDir(facing))
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("camera: %w", ErrPermissionDenied)
		}
		return nil, fmt.Errorf("failed to open camera: %w", err)
	}
	return &spoolStream{dir: dir}, nil
}

func (s *spoolStream) Capture(ctx context.Context) (models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir == nil {
		return models.Media{}, fmt.Errorf("camera stream stopped")
	}
	if err := ctx.Err(); err != nil {
		return models.Media{}, err
	}
	path, err := newestPhoto(s.dir.Name())
	if err != nil {
		return models.Media{}, err
	}
	return readPhoto(path)
}

func (s *spoolStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir == nil {
		return
	}
	_ = s.dir.Close()
	s.dir = nil
}
