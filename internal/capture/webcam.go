package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const defaultFrameInterval = 200 * time.Millisecond

// Webcam reads frames from a local video device through OpenCV and
// delivers them JPEG-encoded. A second device id can be configured as
// the flip target (front/back camera on a phone, two webcams on a
// kiosk).
type Webcam struct {
	devices  []int
	interval time.Duration

	mu      sync.Mutex
	current int
	cam     *gocv.VideoCapture
	cancel  context.CancelFunc
	done    chan struct{}
}

var _ Source = (*Webcam)(nil)

// NewWebcam creates a webcam source on the given device id. altDevice of
// -1 disables flipping.
func NewWebcam(device, altDevice int, interval time.Duration) *Webcam {
	devices := []int{device}
	if altDevice >= 0 && altDevice != device {
		devices = append(devices, altDevice)
	}
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	return &Webcam{devices: devices, interval: interval}
}

func (w *Webcam) Bind(ctx context.Context, fn FrameFunc) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cam != nil {
		return ErrAlreadyBound
	}

	cam, err := gocv.OpenVideoCapture(w.devices[w.current])
	if err != nil {
		return fmt.Errorf("open camera device %d: %w", w.devices[w.current], err)
	}
	w.cam = cam

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.loop(loopCtx, fn, w.done)
	return nil
}

// loop delivers one frame per tick. Failed reads are skipped; the camera
// keeps running.
func (w *Webcam) loop(ctx context.Context, fn FrameFunc, done chan struct{}) {
	defer close(done)

	img := gocv.NewMat()
	defer img.Close()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, ok := w.readFrame(&img)
		if !ok {
			continue
		}
		fn(frame)
	}
}

// readFrame grabs and encodes one frame under the lock so Flip can swap
// the device between ticks.
func (w *Webcam) readFrame(img *gocv.Mat) ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cam == nil {
		return nil, false
	}
	if ok := w.cam.Read(img); !ok || img.Empty() {
		return nil, false
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *img)
	if err != nil {
		return nil, false
	}
	defer buf.Close()

	frame := make([]byte, buf.Len())
	copy(frame, buf.GetBytes())
	return frame, true
}

func (w *Webcam) Flip() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cam == nil {
		return ErrNotBound
	}
	if len(w.devices) < 2 {
		return ErrNoAlternateCamera
	}

	next := (w.current + 1) % len(w.devices)
	cam, err := gocv.OpenVideoCapture(w.devices[next])
	if err != nil {
		return fmt.Errorf("open camera device %d: %w", w.devices[next], err)
	}

	_ = w.cam.Close()
	w.cam = cam
	w.current = next
	return nil
}

func (w *Webcam) Unbind() {
	w.mu.Lock()
	if w.cam == nil {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	done := w.done
	w.cancel = nil
	w.done = nil
	w.mu.Unlock()

	cancel()
	<-done

	w.mu.Lock()
	if w.cam != nil {
		_ = w.cam.Close()
		w.cam = nil
	}
	w.mu.Unlock()
}

func (w *Webcam) Close() error {
	w.Unbind()
	return nil
}
