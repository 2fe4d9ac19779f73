package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"screen-translate/src/config"
	"screen-translate/src/pipeline"
	"screen-translate/src/settings"
	"screen-translate/src/singleinstance"
)

const appName = "Screen Translate"

// errSelectionCancelled is sent to run-once clients whose user closed the selector.
var errSelectionCancelled = errors.New("selection cancelled")

// Binder installs the global hotkey.
type Binder interface {
	Bind(combo string, callback func())
	Start()
}

// Options wires the coordinator. Pipeline hooks are filled in by New.
type Options struct {
	Store    *config.Store
	Keys     Binder
	Pipeline pipeline.Options
	Server   singleinstance.Server

	// Tooltip receives tray tooltip updates.
	Tooltip func(text string)
	// ShowSettings opens the hotkey dialog; called on the UI thread.
	ShowSettings func(current string, onSave func(input string) error)
}

// Loop is the coordinator between the event sources (hotkey, tray,
// run-once clients) and the pipeline orchestrator.
type Loop struct {
	opts     Options
	orch     *pipeline.Orchestrator
	hotkeyCh chan struct{}
}

// New creates the coordinator and its orchestrator. Runs are cancelled when ctx is.
func New(ctx context.Context, opts Options) *Loop {
	if opts.Tooltip == nil {
		opts.Tooltip = func(string) {}
	}
	if opts.ShowSettings == nil {
		opts.ShowSettings = settings.Show
	}
	l := &Loop{opts: opts, hotkeyCh: make(chan struct{}, 4)}

	po := opts.Pipeline
	stageHook, failureHook := po.OnStage, po.OnFailure
	po.OnStage = func(s pipeline.Stage) {
		l.setTooltip(s)
		if stageHook != nil {
			stageHook(s)
		}
	}
	po.OnFailure = func(s pipeline.Stage, err error) {
		log.Printf("eventloop: run failed during %s: %v", s, err)
		if failureHook != nil {
			failureHook(s, err)
		}
	}
	l.orch = pipeline.New(ctx, po)
	return l
}

// Orchestrator exposes the pipeline for direct triggering.
func (l *Loop) Orchestrator() *pipeline.Orchestrator { return l.orch }

// IdleTooltip is the tray tooltip while no run is active.
func IdleTooltip(hotkey string) string {
	return fmt.Sprintf("%s - press %s to capture", appName, hotkey)
}

func (l *Loop) setTooltip(s pipeline.Stage) {
	if s == pipeline.Idle {
		l.opts.Tooltip(IdleTooltip(l.opts.Store.Get().Hotkey))
		return
	}
	l.opts.Tooltip(fmt.Sprintf("%s: %s...", appName, s))
}

// StartHotkey binds the configured hotkey and starts the keyboard hook.
func (l *Loop) StartHotkey() {
	l.opts.Keys.Bind(l.opts.Store.Get().Hotkey, l.signalHotkey)
	l.opts.Keys.Start()
	l.setTooltip(pipeline.Idle)
}

// signalHotkey runs on the hook goroutine and must not block it.
func (l *Loop) signalHotkey() {
	select {
	case l.hotkeyCh <- struct{}{}:
	default:
	}
}

// ChangeHotkey opens the settings dialog. Safe from any goroutine.
func (l *Loop) ChangeHotkey() {
	current := l.opts.Store.Get().Hotkey
	if !l.opts.Pipeline.UI.Post(func() {
		l.opts.ShowSettings(current, l.applyHotkey)
	}) {
		log.Printf("eventloop: cannot open settings, UI loop closed")
	}
}

func (l *Loop) applyHotkey(input string) error {
	_, err := settings.Apply(input, l.opts.Store, func(combo string) {
		l.opts.Keys.Bind(combo, l.signalHotkey)
		l.setTooltip(pipeline.Idle)
	})
	return err
}

// Run serves run-once clients and hotkey signals until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	reqCh := make(chan singleinstance.Conn, 4)
	if l.opts.Server != nil {
		if p := l.opts.Server.Port(); p > 0 {
			log.Printf("Resident listening on 127.0.0.1:%d", p)
		}
		go func() {
			defer close(reqCh)
			for {
				conn, err := l.opts.Server.Next(ctx)
				if err != nil {
					return
				}
				reqCh <- conn
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.hotkeyCh:
			l.orch.Trigger("hotkey")
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(conn)
		}
	}
}

func (l *Loop) handleConn(conn singleinstance.Conn) {
	l.orch.TriggerWith("run-once", func(res pipeline.Result) {
		defer conn.Close()
		if err := respond(conn, res); err != nil {
			log.Printf("eventloop: run-once reply failed: %v", err)
		}
	})
}

func respond(conn singleinstance.Conn, res pipeline.Result) error {
	switch {
	case res.Err != nil:
		return conn.RespondError(res.Err.Error())
	case !res.Selected:
		return conn.RespondError(errSelectionCancelled.Error())
	}
	return conn.RespondSuccess(res.Translated)
}
