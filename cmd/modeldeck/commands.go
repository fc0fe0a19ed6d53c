package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/coordinator"
	"github.com/marcus/modeldeck/internal/history"
	"github.com/marcus/modeldeck/internal/ui"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available adapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer e.Close()
			return printAdapters(cmd.OutOrStdout(), e.registry)
		},
	}
}

func printAdapters(w io.Writer, reg *adapter.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tDESCRIPTION")
	for _, d := range reg.Descriptors() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, d.Category, d.Description)
	}
	return tw.Flush()
}

type runFlags struct {
	text string
	file string
	json bool
}

func newRunCmd(opts *options) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <adapter>",
		Short: "Load an adapter and run it once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (f.text == "") == (f.file == "") {
				return errors.New("exactly one of --text or --file is required")
			}
			e, err := setup(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer e.Close()

			p := adapter.TextPayload(f.text)
			if f.file != "" {
				p = adapter.FilePayload(f.file)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := runOnce(ctx, e, args[0], p)
			if err != nil {
				return err
			}
			if e.history != nil {
				if _, herr := e.history.Record(context.Background(), history.FromResult(res, time.Now())); herr != nil {
					e.log.Warn("record run", "err", herr)
				}
			}
			if res.Err != nil {
				return res.Err
			}
			return printResult(cmd.OutOrStdout(), res, f.json)
		},
	}
	cmd.Flags().StringVar(&f.text, "text", "", "text input")
	cmd.Flags().StringVar(&f.file, "file", "", "path to an input file")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the full output as JSON")
	return cmd
}

// runOnce loads name, runs p and waits for the result. Load and not-loaded
// failures are returned as errors; run failures come back in the result.
func runOnce(ctx context.Context, e *env, name string, p adapter.Payload) (coordinator.Result, error) {
	sink := &headlessSink{log: e.log}
	coord := coordinator.New(e.registry, sink, e.coordinatorOptions()...)

	if err := coord.LoadAdapter(name, true); err != nil {
		return coordinator.Result{}, err
	}
	poll, err := coord.RequestRun(p)
	if err != nil {
		return coordinator.Result{}, err
	}
	if err := coord.Drive(ctx, poll); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return coordinator.Result{}, fmt.Errorf("run %s: cancelled: %w", name, err)
		}
		return coordinator.Result{}, err
	}
	if sink.result == nil {
		return coordinator.Result{}, fmt.Errorf("run %s: no result delivered", name)
	}
	return *sink.result, nil
}

// headlessSink keeps the delivered result and logs everything else.
type headlessSink struct {
	log    *slog.Logger
	result *coordinator.Result
}

func (s *headlessSink) StatusChanged(text string) { s.log.Debug("status", "text", text) }
func (s *headlessSink) BusyChanged(bool)          {}
func (s *headlessSink) Info(map[string]string)    {}
func (s *headlessSink) Reset()                    {}

func (s *headlessSink) Result(res coordinator.Result) { s.result = &res }

func (s *headlessSink) Error(kind coordinator.ErrorKind, err error) {
	s.log.Debug(kind.Title(), "err", err)
}

func printResult(w io.Writer, res coordinator.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Output)
	}
	fmt.Fprintln(w, res.Output.Result())
	if artifact := res.Output.Artifact(); artifact != "" {
		fmt.Fprintf(w, "artifact: %s\n", artifact)
	}
	fmt.Fprintf(w, "%s in %.1f ms\n", res.Request.Adapter, res.Elapsed)
	return nil
}

type historyFlags struct {
	adapter string
	limit   int
	prune   int
}

func newHistoryCmd(opts *options) *cobra.Command {
	f := &historyFlags{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer e.Close()
			if e.history == nil {
				return errors.New("history is disabled")
			}

			ctx := cmd.Context()
			if f.prune > 0 {
				n, err := e.history.Prune(ctx, f.prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "pruned %d runs\n", n)
			}

			limit := f.limit
			if limit <= 0 {
				limit = e.cfg.History.Limit
			}
			entries, err := e.history.Recent(ctx, f.adapter, limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().StringVar(&f.adapter, "adapter", "", "only show runs of this adapter")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of runs to show (default from config)")
	cmd.Flags().IntVar(&f.prune, "prune", 0, "delete all but the newest N runs first")
	return cmd
}

func printHistory(w io.Writer, entries []history.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tADAPTER\tMS\tRESULT")
	for _, e := range entries {
		result := e.Result
		if !e.OK() {
			result = "error: " + e.Error
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%s\n",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Adapter, e.ElapsedMS, ui.FirstLine(result, 60))
	}
	return tw.Flush()
}
