package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uuidfreeze/uuidfreeze/internal/config"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config string
}

// ValidateResult is the JSON payload of the validate command.
type ValidateResult struct {
	Path          string   `json:"path"`
	IgnorePrefixes []string `json:"ignore_prefixes"`
	OnExhausted   string   `json:"on_exhausted"`
	Journal       string   `json:"journal,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a project config file",
		Long: `Load a .uuidfreeze.yaml config file and check it against the schema.

Exit code 0 means the file is valid. Schema violations exit 1 and name the
offending field.

Examples:
  uuidfreeze validate
  uuidfreeze validate --config ./ci/.uuidfreeze.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", config.DefaultFilename, "path to the config file")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	w := cmd.OutOrStdout()

	cfg, err := config.Load(opts.Config)
	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			if opts.Format == "json" {
				if werr := writeJSONError(w, ErrCodeConfig, cfgErr.Message, cfgErr.Field); werr != nil {
					return werr
				}
				return NewExitError(ExitFailure, cfgErr.Message)
			}
			fmt.Fprintf(w, "Error [%s]: %s\n", cfgErr.Code, cfgErr.Error())
			return NewExitError(ExitFailure, cfgErr.Message)
		}
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	result := ValidateResult{
		Path:           opts.Config,
		IgnorePrefixes: cfg.IgnorePrefixes(),
		OnExhausted:    cfg.OnExhausted,
		Journal:        cfg.Journal,
	}

	if opts.Format == "json" {
		return writeJSON(w, result)
	}

	fmt.Fprintf(w, "%s: valid\n", opts.Config)
	fmt.Fprintf(w, "  ignore prefixes: %d\n", len(result.IgnorePrefixes))
	if opts.Verbose {
		for _, p := range result.IgnorePrefixes {
			fmt.Fprintf(w, "    %s\n", p)
		}
	}
	fmt.Fprintf(w, "  on_exhausted: %s\n", result.OnExhausted)
	if result.Journal != "" {
		fmt.Fprintf(w, "  journal: %s\n", result.Journal)
	}
	return nil
}
