package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-translate/src/singleinstance"
)

type stressOptions struct {
	n        int
	deadline time.Duration
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeBusy
	outcomeCancelled
	outcomeNoResident
	outcomeError
)

type tally struct {
	ok, busy, cancelled, noResident, err int32
}

func (t *tally) add(o outcome) {
	switch o {
	case outcomeOK:
		atomic.AddInt32(&t.ok, 1)
	case outcomeBusy:
		atomic.AddInt32(&t.busy, 1)
	case outcomeCancelled:
		atomic.AddInt32(&t.cancelled, 1)
	case outcomeNoResident:
		atomic.AddInt32(&t.noResident, 1)
	default:
		atomic.AddInt32(&t.err, 1)
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-runonce",
		Short:         "Fire concurrent run-once requests at the resident instance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(os.Stdout, *opts, singleinstance.NewClient)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

// classify maps a run-once reply to an outcome. The resident answers at most
// one client at a time; the rest should come back busy.
func classify(delegated bool, err error) outcome {
	switch {
	case !delegated && err == nil:
		return outcomeNoResident
	case err == nil:
		return outcomeOK
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "busy"):
		return outcomeBusy
	case strings.Contains(msg, "cancel"), strings.Contains(msg, "deadline"):
		return outcomeCancelled
	}
	return outcomeError
}

func runClients(n int, deadline time.Duration, newClient func() singleinstance.Client) *tally {
	var wg sync.WaitGroup
	t := &tally{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), deadline)
			defer cancel()
			delegated, _, err := newClient().RunOnce(ctx)
			t.add(classify(delegated, err))
		}()
	}
	wg.Wait()
	return t
}

func runWithOptions(w io.Writer, opts stressOptions, newClient func() singleinstance.Client) error {
	start := time.Now()
	t := runClients(opts.n, opts.deadline, newClient)
	fmt.Fprintf(w, "launched=%d ok=%d busy=%d cancelled=%d no_resident=%d err=%d elapsed=%s\n",
		opts.n, t.ok, t.busy, t.cancelled, t.noResident, t.err, time.Since(start))
	return nil
}
