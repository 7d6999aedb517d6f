// Package cmd contains the CLI command definitions for commitsmith.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
)

// BuildInfo is the version information set via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Streams holds the process I/O a run uses.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// rootFlags holds every command-line switch.
type rootFlags struct {
	debug       bool
	push        bool
	stageAll    bool
	preview     bool
	messageOnly bool

	useOllama     bool
	useOpenRouter bool
	useLMStudio   bool
	useCustom     string

	model   string
	baseURL string
	apiKey  string

	printConfig bool
	showHistory bool
}

// valueFlags lists the flags that take a value, with the noun used when the value is missing.
var valueFlags = []struct {
	name string
	what string
}{
	{"use-custom", "base URL"},
	{"model", "model name"},
	{"base-url", "base URL"},
	{"api-key", "API key"},
}

// NewRootCmd creates the root command for the commitsmith CLI.
func NewRootCmd(build BuildInfo, streams Streams) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "commitsmith",
		Short: "Generate git commit messages from staged changes with an LLM",
		Long: `commitsmith sends your staged changes to an LLM provider and commits
with the conventional commit message it writes.

Providers: OpenRouter (default, needs an API key), Ollama, LM Studio, or any
OpenAI-compatible endpoint. Provider, model, base URL and API key flags are
saved and apply to later runs.

Examples:
  commitsmith                       # Generate and commit
  commitsmith -ap                   # Stage everything, review the draft, commit
  commitsmith --message-only        # Print the message, touch nothing
  commitsmith --use-ollama --model llama3
  commitsmith --use-custom http://localhost:8080/v1 --api-key tok_123`,
		Version:       build.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return apperrors.NewUnknownFlagError(args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			apperrors.SetDebug(flags.debug)
			if err := checkValueFlags(cmd.Flags()); err != nil {
				return err
			}
			return run(cmd.Context(), flags, streams)
		},
	}

	rootCmd.SetVersionTemplate(`commitsmith {{.Version}}
Commit: ` + build.Commit + `
Built:  ` + build.Date + "\n")
	rootCmd.SetIn(streams.In)
	rootCmd.SetOut(streams.Out)
	rootCmd.SetErr(streams.Err)
	rootCmd.SetFlagErrorFunc(flagErrorFor(nil))

	f := rootCmd.Flags()
	f.BoolVar(&flags.debug, "debug", false, "Print diagnostic output to stderr")
	f.BoolVar(&flags.push, "push", false, "Push after a successful commit")
	f.BoolVarP(&flags.stageAll, "all", "a", false, "Stage all changes before generating")
	f.BoolVarP(&flags.preview, "preview", "p", false, "Review the draft and request revisions before committing")
	f.BoolVar(&flags.messageOnly, "message-only", false, "Print the generated message without staging, committing or pushing")

	f.BoolVar(&flags.useOllama, "use-ollama", false, "Switch to a local Ollama server (saved)")
	f.BoolVar(&flags.useOpenRouter, "use-openrouter", false, "Switch to OpenRouter (saved)")
	f.BoolVar(&flags.useLMStudio, "use-lmstudio", false, "Switch to a local LM Studio server (saved)")
	f.StringVar(&flags.useCustom, "use-custom", "", "Switch to an OpenAI-compatible endpoint at `url` (saved)")

	f.StringVar(&flags.model, "model", "", "Model `name` to use (saved)")
	f.StringVar(&flags.baseURL, "base-url", "", "Provider base `url` (saved)")
	f.StringVar(&flags.apiKey, "api-key", "", "API `key` for the provider (saved)")

	f.BoolVar(&flags.printConfig, "print-config", false, "Print the current configuration and exit")
	f.BoolVar(&flags.showHistory, "history", false, "Print recently accepted messages and exit")

	rootCmd.MarkFlagsMutuallyExclusive("use-ollama", "use-openrouter", "use-lmstudio", "use-custom")

	return rootCmd
}

// Execute runs the CLI with args and returns the process exit status.
// Errors are printed to streams.Err; it never exits the process itself.
func Execute(ctx context.Context, args []string, build BuildInfo, streams Streams) int {
	apperrors.SetOutput(streams.Err)
	defer apperrors.SetDebug(false)

	rootCmd := NewRootCmd(build, streams)
	rootCmd.SetArgs(args)
	rootCmd.SetFlagErrorFunc(flagErrorFor(args))

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if apperrors.IsDebug() {
		fmt.Fprint(streams.Err, apperrors.FormatErrorVerbose(err))
	} else {
		fmt.Fprintln(streams.Err, apperrors.FormatError(err))
	}
	return apperrors.GetExitCode(err)
}

// flagErrorFor returns a cobra flag error func that converts pflag parse
// failures into argument errors. args are the raw arguments, used to echo
// the full token of an unknown shorthand group.
func flagErrorFor(args []string) func(*cobra.Command, error) error {
	return func(_ *cobra.Command, err error) error {
		var required *pflag.ValueRequiredError
		if errors.As(err, &required) {
			return missingValue(required.GetFlag().Name)
		}

		var notExist *pflag.NotExistError
		if errors.As(err, &notExist) {
			if group := notExist.GetSpecifiedShortnames(); group != "" {
				return apperrors.NewUnknownFlagError(shorthandToken(args, group))
			}
			return apperrors.NewUnknownFlagError("--" + notExist.GetSpecifiedName())
		}

		return apperrors.Wrap(err, apperrors.ErrInvalidArguments, "invalid arguments")
	}
}

// shorthandToken finds the argument a shorthand group came from. pflag
// reports only the unparsed rest of the group, so "-apz" arrives as "z".
func shorthandToken(args []string, rest string) string {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if len(arg) > 1 && arg[0] == '-' && arg[1] != '-' && strings.HasSuffix(arg, rest) {
			return arg
		}
	}
	return "-" + rest
}

// checkValueFlags rejects value flags given an empty or flag-like value.
// pflag accepts "--model -p" as model "-p", which is never intended.
func checkValueFlags(fs *pflag.FlagSet) error {
	for _, vf := range valueFlags {
		flag := fs.Lookup(vf.name)
		if flag == nil || !flag.Changed {
			continue
		}
		value := strings.TrimSpace(flag.Value.String())
		if value == "" || strings.HasPrefix(value, "-") {
			return missingValue(vf.name)
		}
	}
	return nil
}

func missingValue(name string) error {
	for _, vf := range valueFlags {
		if vf.name == name {
			return apperrors.NewMissingArgumentError("--"+name, vf.what)
		}
	}
	return apperrors.NewMissingArgumentError("--"+name, "value")
}
