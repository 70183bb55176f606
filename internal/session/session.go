// Package session orchestrates live recognition: it owns the camera
// binding, feeds frames through the analyzer, matches captures against
// the gallery snapshot and drives the enrollment flow.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/saturnino-fabrica-de-software/vigil/internal/capture"
	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigil/internal/gallery"
	"github.com/saturnino-fabrica-de-software/vigil/internal/match"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider"
)

// minNameLength is the strict lower bound for enrollment names, counted
// in characters, not bytes.
const minNameLength = 3

// State is the session lifecycle stage.
type State int32

const (
	StateIdle State = iota
	StateBound
	StateMatching
	StateSaveOpen
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBound:
		return "bound"
	case StateMatching:
		return "matching"
	case StateSaveOpen:
		return "save_open"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Notifier delivers fire-and-forget user-facing messages (save
// confirmation, save failure, camera failures).
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Deps are the collaborators a session is constructed with.
type Deps struct {
	Store    gallery.Store
	Analyzer provider.FaceAnalyzer
	Liveness provider.LivenessClassifier
	Strategy match.Strategy
	Source   capture.Source
	Notifier Notifier
	Logger   *slog.Logger
}

// Session is a single live recognition session. One session owns one
// camera binding; after Dispose it cannot be reused.
type Session struct {
	store    gallery.Store
	analyzer provider.FaceAnalyzer
	liveness provider.LivenessClassifier
	strategy match.Strategy
	source   capture.Source
	notifier Notifier
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// mu serializes state transitions and the enrollment flow. The frame
	// path never takes it.
	mu      sync.Mutex
	saving  bool
	pending *domain.Recognition

	state    atomic.Int32
	snapshot atomic.Pointer[gallery.Snapshot]
	result   atomic.Pointer[domain.Recognition]
	inFlight atomic.Bool

	subMu   sync.Mutex
	subs    map[int]chan domain.Recognition
	nextSub int
}

// New creates an idle session. Bind starts it.
func New(deps Deps) *Session {
	if deps.Notifier == nil {
		deps.Notifier = NotifierFunc(func(string) {})
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		store:    deps.Store,
		analyzer: deps.Analyzer,
		liveness: deps.Liveness,
		strategy: deps.Strategy,
		source:   deps.Source,
		notifier: deps.Notifier,
		log:      deps.Logger,
		ctx:      ctx,
		cancel:   cancel,
		subs:     make(map[int]chan domain.Recognition),
	}
	s.snapshot.Store(gallery.Empty())
	return s
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Snapshot returns the gallery snapshot frames are currently matched
// against.
func (s *Session) Snapshot() *gallery.Snapshot {
	return s.snapshot.Load()
}

// Latest returns the most recent recognition result, or nil before the
// first evaluated frame.
func (s *Session) Latest() *domain.Recognition {
	return s.result.Load()
}

// Bind loads the gallery snapshot and attaches the camera. The snapshot
// load completes before the first frame is evaluated. A bind failure is
// the one failure that must reach the user, so it is both notified and
// returned.
func (s *Session) Bind(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State() {
	case StateDisposed:
		return domain.ErrSessionDisposed
	case StateIdle:
	default:
		return domain.ErrSessionActive
	}
	s.setState(StateBound)

	snap, err := gallery.Load(ctx, s.store)
	if err != nil {
		s.setState(StateIdle)
		s.log.Error("gallery load failed", "error", err)
		s.notifier.Notify("could not load the signature gallery")
		return domain.ErrGalleryLoad.WithError(err)
	}
	s.snapshot.Store(snap)

	if err := s.source.Bind(s.ctx, s.onFrame); err != nil {
		s.setState(StateIdle)
		s.log.Error("camera bind failed", "error", err)
		s.notifier.Notify("could not start the camera")
		return domain.ErrCameraBind.WithError(err)
	}

	s.setState(StateMatching)
	s.log.Info("session bound", "gallery_size", snap.Len())
	return nil
}

// onFrame evaluates one camera frame. At most one frame is in flight;
// extra deliveries are dropped. Any per-frame failure degrades to "no
// update" and the stream continues.
func (s *Session) onFrame(frame []byte) {
	if s.State() != StateMatching {
		return
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer s.inFlight.Store(false)

	capt, err := s.analyzer.Analyze(s.ctx, frame)
	if err != nil {
		s.log.Debug("frame analysis failed", "error", err)
		return
	}

	rec := domain.Recognition{Capture: *capt, At: time.Now()}
	if capt.FaceFound {
		query := domain.Signature{Embedding: capt.Embedding}
		rec.Match = s.strategy.Match(query, s.snapshot.Load().Signatures())

		if score, err := s.liveness.Classify(s.ctx, capt.FaceImage); err != nil {
			s.log.Debug("liveness classifier failed", "error", err)
		} else {
			rec.SpoofScore = &score
		}
	}

	// A result computed before an unbind must not land after it.
	if s.State() != StateMatching {
		return
	}
	s.result.Store(&rec)
	s.broadcast(rec)
}

// OpenSave suspends matching and freezes the current capture for
// enrollment. It reports whether the dialog opened; the request is
// ignored unless the latest frame has an unmatched face.
func (s *Session) OpenSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != StateMatching {
		return false
	}
	rec := s.result.Load()
	if rec == nil || !rec.Capture.FaceFound || rec.Matched() {
		return false
	}

	s.source.Unbind()
	s.pending = rec
	s.setState(StateSaveOpen)
	s.log.Info("enrollment opened")
	return true
}

// Save persists the frozen capture under the given name, reloads the
// gallery snapshot, closes the dialog and resumes matching. A failed
// persist skips the reload, surfaces the failure and still resumes with
// the prior snapshot.
func (s *Session) Save(ctx context.Context, name string) error {
	s.mu.Lock()
	if s.State() == StateDisposed {
		s.mu.Unlock()
		return domain.ErrSessionDisposed
	}
	if s.State() != StateSaveOpen {
		s.mu.Unlock()
		return domain.ErrSaveNotOpen
	}
	if s.saving {
		s.mu.Unlock()
		return domain.ErrSaveInProgress
	}
	if utf8.RuneCountInString(name) <= minNameLength {
		// The dialog stays open for another attempt.
		s.mu.Unlock()
		return domain.ErrNameTooShort
	}
	pending := s.pending
	if pending == nil || len(pending.Capture.Embedding) == 0 {
		s.mu.Unlock()
		return domain.ErrNoEmbedding
	}
	s.saving = true
	s.mu.Unlock()

	sig := &domain.Signature{
		Name:       name,
		Embedding:  pending.Capture.Embedding,
		Landmarks:  pending.Capture.Landmarks,
		SpoofScore: pending.SpoofScore,
	}

	if err := s.store.Insert(ctx, sig); err != nil {
		s.log.Error("enrollment persist failed", "name", name, "error", err)
		s.notifier.Notify("could not save " + name + ": " + err.Error())
		s.finishSave()
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return domain.ErrInternal.WithError(err)
	}

	if snap, err := gallery.Load(ctx, s.store); err != nil {
		// Keep matching against the prior snapshot; the new signature
		// shows up on the next successful reload.
		s.log.Error("gallery reload failed", "error", err)
		s.notifier.Notify("saved " + name + ", but the gallery could not be reloaded")
	} else {
		s.snapshot.Store(snap)
	}

	s.finishSave()
	s.notifier.Notify("saved " + name)
	s.log.Info("signature enrolled", "id", sig.ID, "name", name)
	return nil
}

// CancelSave drops the frozen capture and resumes matching.
func (s *Session) CancelSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() == StateDisposed {
		return domain.ErrSessionDisposed
	}
	if s.State() != StateSaveOpen {
		return domain.ErrSaveNotOpen
	}
	if s.saving {
		return domain.ErrSaveInProgress
	}

	s.pending = nil
	s.resumeLocked()
	return nil
}

// finishSave closes the dialog and resumes matching regardless of the
// save outcome.
func (s *Session) finishSave() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saving = false
	s.pending = nil
	if s.State() == StateSaveOpen {
		s.resumeLocked()
	}
}

// resumeLocked re-binds the camera and returns to matching. Callers hold
// mu. A rebind failure is notified; the session stays in matching so a
// later flip or dispose remains possible.
func (s *Session) resumeLocked() {
	if err := s.source.Bind(s.ctx, s.onFrame); err != nil {
		s.log.Error("camera rebind failed", "error", err)
		s.notifier.Notify("could not restart the camera")
	}
	s.setState(StateMatching)
}

// Flip switches to the alternate camera. Valid while matching only; in
// any other state the request is ignored.
func (s *Session) Flip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != StateMatching {
		s.log.Debug("flip ignored", "state", s.State())
		return nil
	}

	if err := s.source.Flip(); err != nil {
		s.log.Error("camera flip failed", "error", err)
		s.notifier.Notify("could not switch cameras")
		return domain.ErrCameraBind.WithError(err)
	}
	return nil
}

// Dispose terminates the session and releases the camera. Release is
// best-effort: failures are logged, never returned.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() == StateDisposed {
		return
	}
	s.setState(StateDisposed)
	s.cancel()

	s.source.Unbind()
	if err := s.source.Close(); err != nil {
		s.log.Error("camera release failed", "error", err)
	}

	s.subMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subMu.Unlock()

	s.log.Info("session disposed")
}

// Subscribe registers for recognition updates. The channel is closed on
// dispose; slow consumers miss intermediate results rather than blocking
// the frame path. The returned func unsubscribes.
func (s *Session) Subscribe() (<-chan domain.Recognition, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan domain.Recognition, 1)
	if s.State() == StateDisposed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

func (s *Session) broadcast(rec domain.Recognition) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- rec:
		default:
			// Replace the stale result so the consumer always sees the
			// newest one next.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- rec:
			default:
			}
		}
	}
}
