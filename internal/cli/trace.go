package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/uuidfreeze/uuidfreeze/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal   string
	Channel   string
	Module    string
	Synthetic bool
}

// TraceCall is one journal entry in the trace output.
type TraceCall struct {
	Seq       int64  `json:"seq"`
	Channel   string `json:"channel"`
	Value     string `json:"value"`
	Synthetic bool   `json:"synthetic"`
	Module    string `json:"module,omitempty"`
	Function  string `json:"function,omitempty"`
	Line      int    `json:"line,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Journal string         `json:"journal"`
	Calls   []TraceCall    `json:"calls"`
	Summary map[string]int `json:"summary"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect a call journal",
		Long: `Dump the calls recorded in a journal file.

A journal exists when a test run enabled file-backed journaling. Each entry
shows the value handed out, whether it was substituted, and the caller it
went to.

Examples:
  uuidfreeze trace --journal ./run.journal
  uuidfreeze trace --journal ./run.journal --channel uuid4 --synthetic
  uuidfreeze trace --journal ./run.journal --module github.com/acme/app --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to a journal file (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.Channel, "channel", "", "filter to one channel")
	cmd.Flags().StringVar(&opts.Module, "module", "", "filter to callers under a package prefix")
	cmd.Flags().BoolVar(&opts.Synthetic, "synthetic", false, "only substituted values")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening journal", err)
	}
	defer j.Close()

	entries, err := j.Calls(ctx, journal.Filter{
		Channel:       opts.Channel,
		ModulePrefix:  opts.Module,
		SyntheticOnly: opts.Synthetic,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "querying journal", err)
	}
	summary, err := j.Summary(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "summarizing journal", err)
	}

	result := TraceResult{
		Journal: opts.Journal,
		Calls:   make([]TraceCall, 0, len(entries)),
		Summary: summary,
	}
	for _, e := range entries {
		tc := TraceCall{
			Seq:       e.Seq,
			Channel:   e.Channel,
			Value:     e.Value.String(),
			Synthetic: e.Synthetic,
			Module:    e.Module,
			Function:  e.Function,
			Line:      e.Line,
			Name:      e.Name,
		}
		if e.Namespace != uuid.Nil {
			tc.Namespace = e.Namespace.String()
		}
		result.Calls = append(result.Calls, tc)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, result)
	}

	fmt.Fprintf(w, "Journal: %s\n", result.Journal)
	fmt.Fprintln(w)
	if len(result.Calls) == 0 {
		fmt.Fprintln(w, "  (no matching calls)")
	}
	for _, c := range result.Calls {
		kind := "real"
		if c.Synthetic {
			kind = "mock"
		}
		fmt.Fprintf(w, "  [%d] %s %s %s\n", c.Seq, c.Channel, kind, c.Value)
		if opts.Verbose && c.Module != "" {
			fmt.Fprintf(w, "       from %s.%s:%d\n", c.Module, c.Function, c.Line)
		}
		if opts.Verbose && c.Name != "" {
			fmt.Fprintf(w, "       namespace %s name %q\n", c.Namespace, c.Name)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Per channel:")
	channels := make([]string, 0, len(summary))
	for ch := range summary {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	for _, ch := range channels {
		fmt.Fprintf(w, "  %s: %d\n", ch, summary[ch])
	}
	return nil
}
