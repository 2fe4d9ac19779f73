// Package pipeline drives one capture → recognize → translate → present run
// at a time. Selection and presentation are posted to the UI thread; the
// capture, OCR and network stages run as a worker job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"screen-translate/src/config"
	"screen-translate/src/logutil"
	"screen-translate/src/overlay"
	"screen-translate/src/screenshot"
	"screen-translate/src/worker"
)

// ErrBusy is reported to TriggerWith callers when a run is already active.
var ErrBusy = errors.New("busy, please retry")

const defaultDeadline = 30 * time.Second

type Stage int

const (
	Idle Stage = iota
	Selecting
	Capturing
	Recognizing
	Translating
	Presenting
	Failed
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Capturing:
		return "capturing"
	case Recognizing:
		return "recognizing"
	case Translating:
		return "translating"
	case Presenting:
		return "presenting"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Dispatcher schedules work on the UI thread.
type Dispatcher interface {
	Post(fn func()) bool
}

// Runner executes jobs off the UI thread.
type Runner interface {
	Submit(ctx context.Context, fn worker.Job) bool
}

type Capturer interface {
	Grab(rect screenshot.Rect) (*screenshot.Capture, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, binaryPath string) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// ConfigSource returns the current configuration; read at job time so
// settings changes apply to the next run.
type ConfigSource interface {
	Get() config.Config
}

// Options wires the orchestrator's collaborators.
type Options struct {
	UI         Dispatcher
	Pool       Runner
	Selector   overlay.Selector
	Capturer   Capturer
	Recognizer Recognizer
	Translator Translator
	Presenter  overlay.Presenter
	Config     ConfigSource

	// Deadline bounds capture, recognition and translation of one run.
	Deadline time.Duration
	// SettleDelay lets the selection surface disappear before the grab.
	SettleDelay time.Duration
	// Copy, when set, receives every presented translation.
	Copy func(text string) error

	OnStage   func(Stage)
	OnFailure func(stage Stage, err error)
}

// Result describes how a run ended.
type Result struct {
	Rect       screenshot.Rect
	Text       string
	Translated string
	// Selected is false when the user closed the selector without a selection.
	Selected bool
	Err      error
}

// Run is the state of the active pipeline run.
type Run struct {
	ID         uint64
	Stage      Stage
	Origin     string
	Rect       screenshot.Rect
	Capture    *screenshot.Capture
	Text       string
	Translated string
	Err        error

	done func(Result)
}

// Orchestrator enforces single flight: at most one run exists at a time.
type Orchestrator struct {
	opts Options
	ctx  context.Context

	mu    sync.Mutex
	stage Stage
	run   *Run
	seq   atomic.Uint64
}

// New returns an orchestrator whose runs are children of ctx.
func New(ctx context.Context, opts Options) *Orchestrator {
	if opts.Deadline <= 0 {
		opts.Deadline = defaultDeadline
	}
	return &Orchestrator{opts: opts, ctx: ctx}
}

// Stage returns the current stage.
func (o *Orchestrator) Stage() Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage
}

// Trigger starts a run unless one is active. Safe from any goroutine.
func (o *Orchestrator) Trigger(origin string) bool {
	return o.TriggerWith(origin, nil)
}

// TriggerWith is Trigger with a completion callback. done is invoked exactly
// once, with ErrBusy when the request is rejected.
func (o *Orchestrator) TriggerWith(origin string, done func(Result)) bool {
	o.mu.Lock()
	if o.stage != Idle {
		stage := o.stage
		o.mu.Unlock()
		log.Printf("pipeline: %s request ignored, run in progress (%s)", origin, stage)
		if done != nil {
			done(Result{Err: ErrBusy})
		}
		return false
	}
	r := &Run{ID: o.seq.Add(1), Stage: Selecting, Origin: origin, done: done}
	o.run = r
	o.stage = Selecting
	o.mu.Unlock()

	log.Printf("pipeline: run %d started by %s", r.ID, origin)
	o.notify(Selecting)

	if !o.opts.UI.Post(func() { o.selectRegion(r) }) {
		o.fail(r, fmt.Errorf("ui loop closed"))
		return false
	}
	return true
}

// selectRegion runs on the UI thread.
func (o *Orchestrator) selectRegion(r *Run) {
	rect, ok, err := o.opts.Selector.Select(o.ctx)
	if err != nil {
		o.fail(r, fmt.Errorf("select region: %w", err))
		return
	}
	if !ok {
		log.Printf("pipeline: run %d: no selection", r.ID)
		o.finish(r, Result{})
		return
	}
	r.Rect = rect
	log.Printf("pipeline: run %d: selected %v", r.ID, rect)

	o.setStage(r, Capturing)
	ctx, cancel := context.WithTimeout(o.ctx, o.opts.Deadline)
	if !o.opts.Pool.Submit(ctx, func(ctx context.Context) {
		defer cancel()
		defer func() {
			if p := recover(); p != nil {
				o.fail(r, fmt.Errorf("run panicked: %v", p))
			}
		}()
		if err := ctx.Err(); err != nil {
			o.fail(r, err)
			return
		}
		o.process(ctx, r)
	}) {
		cancel()
		o.fail(r, ErrBusy)
	}
}

// process runs on a worker goroutine.
func (o *Orchestrator) process(ctx context.Context, r *Run) {
	if o.opts.SettleDelay > 0 {
		select {
		case <-time.After(o.opts.SettleDelay):
		case <-ctx.Done():
			o.fail(r, ctx.Err())
			return
		}
	}

	capture, err := o.opts.Capturer.Grab(r.Rect)
	if err != nil {
		o.fail(r, err)
		return
	}
	r.Capture = capture

	cfg := o.opts.Config.Get()

	o.setStage(r, Recognizing)
	text, err := o.opts.Recognizer.Recognize(ctx, capture.Image, cfg.TesseractPath)
	if err != nil {
		o.fail(r, err)
		return
	}
	r.Text = text
	if text == "" {
		log.Printf("pipeline: run %d: no text recognized", r.ID)
		o.finish(r, Result{Rect: r.Rect, Selected: true})
		return
	}

	o.setStage(r, Translating)
	translated, err := o.opts.Translator.Translate(ctx, text, cfg.TargetLang)
	if err != nil {
		o.fail(r, err)
		return
	}
	r.Translated = translated
	if strings.TrimSpace(translated) == "" {
		log.Printf("pipeline: run %d: translation is blank, nothing to present", r.ID)
		o.finish(r, Result{Rect: r.Rect, Text: r.Text, Selected: true})
		return
	}

	o.setStage(r, Presenting)
	if !o.opts.UI.Post(func() { o.present(r) }) {
		o.fail(r, fmt.Errorf("ui loop closed"))
	}
}

// present runs on the UI thread.
func (o *Orchestrator) present(r *Run) {
	o.opts.Presenter.Present(r.Translated, r.Rect)
	if o.opts.Copy != nil {
		if err := o.opts.Copy(r.Translated); err != nil {
			log.Printf("pipeline: run %d: clipboard copy failed: %v", r.ID, err)
		}
	}
	log.Printf("pipeline: run %d: presented %q", r.ID, logutil.SafeText(r.Translated))
	o.finish(r, Result{Rect: r.Rect, Text: r.Text, Translated: r.Translated, Selected: true})
}

func (o *Orchestrator) setStage(r *Run, s Stage) {
	o.mu.Lock()
	if o.run != r {
		o.mu.Unlock()
		return
	}
	r.Stage = s
	o.stage = s
	o.mu.Unlock()
	o.notify(s)
}

func (o *Orchestrator) finish(r *Run, res Result) {
	o.mu.Lock()
	if o.run != r {
		o.mu.Unlock()
		return
	}
	o.run = nil
	o.stage = Idle
	o.mu.Unlock()

	o.notify(Idle)
	if r.done != nil {
		r.done(res)
	}
}

// fail ends the run with err. Cancellation of the orchestrator context is
// silent. Aborts while selecting are logged and return straight to Idle;
// Failed is entered only from the adapter stages, reported through OnFailure.
func (o *Orchestrator) fail(r *Run, err error) {
	o.mu.Lock()
	if o.run != r {
		o.mu.Unlock()
		return
	}
	stage := r.Stage
	r.Err = err
	o.mu.Unlock()

	switch {
	case errors.Is(err, context.Canceled):
		log.Printf("pipeline: run %d cancelled during %s", r.ID, stage)
	case stage == Selecting:
		log.Printf("pipeline: run %d aborted during %s: %v", r.ID, stage, err)
	default:
		log.Printf("pipeline: run %d failed during %s: %v", r.ID, stage, err)
		o.setStage(r, Failed)
		if o.opts.OnFailure != nil {
			o.opts.OnFailure(stage, err)
		}
	}
	o.finish(r, Result{Rect: r.Rect, Text: r.Text, Selected: !r.Rect.Empty(), Err: err})
}

func (o *Orchestrator) notify(s Stage) {
	if o.opts.OnStage != nil {
		o.opts.OnStage(s)
	}
}
