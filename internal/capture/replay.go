package capture

import (
	"context"
	"sync"
	"time"
)

// Replay cycles through a fixed set of encoded frames. It stands in for
// a real camera in development environments without a video device; the
// alternate frame set plays the role of the second camera.
type Replay struct {
	interval time.Duration

	mu        sync.Mutex
	frames    [][]byte
	altFrames [][]byte
	flipped   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

var _ Source = (*Replay)(nil)

// NewReplay creates a replay source. altFrames may be nil, which
// disables flipping.
func NewReplay(frames, altFrames [][]byte, interval time.Duration) *Replay {
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	return &Replay{interval: interval, frames: frames, altFrames: altFrames}
}

func (r *Replay) Bind(ctx context.Context, fn FrameFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return ErrAlreadyBound
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(loopCtx, fn, r.done)
	return nil
}

func (r *Replay) loop(ctx context.Context, fn FrameFunc, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, ok := r.frameAt(i)
		if !ok {
			continue
		}
		i++
		fn(frame)
	}
}

func (r *Replay) frameAt(i int) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := r.frames
	if r.flipped {
		frames = r.altFrames
	}
	if len(frames) == 0 {
		return nil, false
	}
	return frames[i%len(frames)], true
}

func (r *Replay) Flip() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel == nil {
		return ErrNotBound
	}
	if len(r.altFrames) == 0 {
		return ErrNoAlternateCamera
	}
	r.flipped = !r.flipped
	return nil
}

func (r *Replay) Unbind() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Replay) Close() error {
	r.Unbind()
	return nil
}
