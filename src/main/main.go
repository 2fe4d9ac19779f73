package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screen-translate/src/clipboard"
	"screen-translate/src/config"
	"screen-translate/src/eventloop"
	"screen-translate/src/hotkey"
	"screen-translate/src/logutil"
	"screen-translate/src/overlay"
	"screen-translate/src/pipeline"
	"screen-translate/src/runtimeinit"
	"screen-translate/src/screenshot"
	"screen-translate/src/singleinstance"
	"screen-translate/src/tray"
	"screen-translate/src/uithread"
	"screen-translate/src/worker"
)

const (
	settleDelay = 100 * time.Millisecond
	// standaloneLinger keeps the panel of a standalone run-once visible before exit.
	standaloneLinger = 5 * time.Second
)

type mainOptions struct {
	runOnce    bool
	configPath string
}

type runOnceClient interface {
	RunOnce(ctx context.Context) (bool, string, error)
}

func init() {
	// Windows owned by the UI loop must stay on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := runWithArgs(normalizeLegacyArgs(os.Args)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-translate"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-translate",
		Short:         "Translate on-screen text selected with a global hotkey",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			enableDPIAwareness()
			if opts.runOnce {
				// Port range overrides must be applied before the resident scan.
				_ = config.LoadEnv()
				return handleRunOnceWithDelegation(context.Background(), singleinstance.NewClient(), os.Stdout, func() error {
					return runStandalone(opts.configPath, os.Stdout)
				})
			}
			return runResident(opts.configPath)
		},
	}

	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Translate one region and exit (delegates to a running instance when present)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.json (default: next to the executable)")

	return cmd
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		switch {
		case arg == "-run-once" || strings.HasPrefix(arg, "-run-once="):
			normalized[i] = "-" + arg
		case arg == "-config" || strings.HasPrefix(arg, "-config="):
			normalized[i] = "-" + arg
		}
	}

	return normalized
}

// handleRunOnceWithDelegation prefers the resident instance and falls back
// to a standalone run when none answers.
func handleRunOnceWithDelegation(ctx context.Context, client runOnceClient, out io.Writer, fallback func() error) error {
	delegated, text, err := client.RunOnce(ctx)
	switch {
	case delegated && err == nil:
		log.Printf("Delegated to resident")
		_, werr := fmt.Fprint(out, text)
		return werr
	case delegated:
		return fmt.Errorf("resident run failed: %w", err)
	case err != nil:
		log.Printf("Delegation error: %v; falling back to standalone", err)
	default:
		log.Printf("No resident detected (not delegated), running standalone")
	}
	return fallback()
}

func bootstrap(configPath string) (*runtimeinit.Runtime, error) {
	return runtimeinit.Bootstrap(runtimeinit.Options{
		ConfigPath:   configPath,
		SetupLogging: logutil.Setup,
	})
}

func pipelineOptions(rt *runtimeinit.Runtime, ui *uithread.Loop, pool *worker.Pool) pipeline.Options {
	opts := pipeline.Options{
		UI:          ui,
		Pool:        pool,
		Selector:    overlay.NewSelector(),
		Capturer:    screenshot.NewGrabber(),
		Recognizer:  rt.Recognizer,
		Translator:  rt.Translator,
		Presenter:   overlay.NewPresenter(),
		Config:      rt.Store,
		Deadline:    time.Duration(rt.Env.DeadlineSec) * time.Second,
		SettleDelay: settleDelay,
	}
	if rt.Env.CopyToClipboard {
		if err := clipboard.Init(); err != nil {
			log.Printf("clipboard unavailable, copy disabled: %v", err)
		} else {
			opts.Copy = clipboard.Write
		}
	}
	return opts
}

func runResident(configPath string) error {
	rt, err := bootstrap(configPath)
	if err != nil {
		tray.ShowMessage("Screen Translate", err.Error())
		return err
	}
	logMonitorConfiguration()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := singleinstance.NewServer()
	if err := server.Start(ctx); err != nil {
		log.Printf("single instance: %v", err)
		start, _ := singleinstance.PortRange()
		tray.ShowMessage("Screen Translate", fmt.Sprintf("Screen Translate is already running (port %d is taken).", start))
		return fmt.Errorf("already running: %w", err)
	}
	defer server.Close()

	ui := uithread.New()
	pool := worker.New(1)
	defer pool.Close()

	loop := eventloop.New(ctx, eventloop.Options{
		Store:    rt.Store,
		Keys:     hotkey.NewListener(),
		Pipeline: pipelineOptions(rt, ui, pool),
		Server:   server,
		Tooltip:  tray.UpdateTooltip,
	})

	trayIcon := tray.New(tray.Config{
		Title:          "Screen Translate",
		Tooltip:        eventloop.IdleTooltip(rt.Store.Get().Hotkey),
		OnChangeHotkey: loop.ChangeHotkey,
		OnExit:         cancel,
	})
	go trayIcon.Run()

	loop.StartHotkey()
	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("event loop stopped: %v", err)
		}
	}()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Printf("Screen Translate started, hotkey %s", rt.Store.Get().Hotkey)
	if err := ui.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runStandalone performs one capture in this process and prints the translation.
func runStandalone(configPath string, out io.Writer) error {
	rt, err := bootstrap(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ui := uithread.New()
	pool := worker.New(1)
	defer pool.Close()

	var runErr error
	orch := pipeline.New(ctx, pipelineOptions(rt, ui, pool))
	orch.TriggerWith("run-once", func(res pipeline.Result) {
		switch {
		case res.Err != nil:
			runErr = res.Err
			cancel()
		case !res.Selected:
			log.Printf("Selection cancelled")
			cancel()
		default:
			_, runErr = fmt.Fprint(out, res.Translated)
			time.AfterFunc(standaloneLinger, cancel)
		}
	})

	if err := ui.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return runErr
}
