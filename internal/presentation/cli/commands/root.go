// Package commands implements the CLI commands for beancounter.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/beancounter/internal/application"
	"github.com/jbctechsolutions/beancounter/internal/application/analyzer"
	domainErrors "github.com/jbctechsolutions/beancounter/internal/domain/errors"
	"github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/config"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/logging"
	"github.com/jbctechsolutions/beancounter/internal/presentation/cli/output"
	"github.com/jbctechsolutions/beancounter/internal/presentation/cli/prompt"
)

// Version information - set at build time via ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// UsageLine is printed when no file is given.
const UsageLine = "Usage: beancounter <file_path> [file_path...]"

// GlobalFlags holds the flags shared by every command.
type GlobalFlags struct {
	ConfigFile string
	Output     string
	Verbose    bool
}

// analyzeFlags holds the flags of the root analyze command.
type analyzeFlags struct {
	Tokenizer string
	Save      string
	NoSave    bool
	Offline   bool
	NoCache   bool
	Watch     bool
}

// NewRootCmd creates the root command for the beancounter CLI.
func NewRootCmd() *cobra.Command {
	globals := &GlobalFlags{}
	flags := &analyzeFlags{}

	rootCmd := &cobra.Command{
		Use:   "beancounter [flags] <file_path> [file_path...]",
		Short: "Count tokens, words and characters in text files",
		Long: `beancounter reports how many tokens a text file costs under a chosen
tokenizer, alongside its word and character counts.

Pick a tokenizer from the menu (or with --tokenizer), give one or more
files, and optionally save the combined report to a file.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, globals, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&globals.ConfigFile, "config", "c", "", "config file path (default: ~/.beancounter/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&globals.Output, "output", "o", "text", "output format for subcommands: text, json")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "enable debug logging on stderr")

	rootCmd.Flags().StringVarP(&flags.Tokenizer, "tokenizer", "t", "", "tokenizer number (1-8) or identifier; skips the menu")
	rootCmd.Flags().StringVar(&flags.Save, "save", "", "save the report to this file without asking")
	rootCmd.Flags().BoolVar(&flags.NoSave, "no-save", false, "do not offer to save the report")
	rootCmd.Flags().BoolVar(&flags.Offline, "offline", false, "use embedded BPE vocabularies, never download")
	rootCmd.Flags().BoolVar(&flags.NoCache, "no-cache", false, "do not read or write the token cache")
	rootCmd.Flags().BoolVarP(&flags.Watch, "watch", "w", false, "re-analyze files when they change")
	rootCmd.MarkFlagsMutuallyExclusive("save", "no-save")

	rootCmd.AddCommand(NewVersionCmd(globals))
	rootCmd.AddCommand(NewTokenizersCmd(globals))
	rootCmd.AddCommand(NewCacheCmd(globals))
	rootCmd.AddCommand(NewConfigCmd(globals))

	return rootCmd
}

// runAnalyze is the main pipeline: select, analyze, print, save.
func runAnalyze(cmd *cobra.Command, paths []string, globals *GlobalFlags, flags *analyzeFlags) error {
	out := cmd.OutOrStdout()

	if len(paths) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), UsageLine)
		return domainErrors.ErrNoInputFiles
	}

	cfg, err := loadConfig(globals.ConfigFile)
	if err != nil {
		return err
	}

	ctx := logging.WithNewCorrelationID(cmd.Context())
	container, err := application.NewContainer(ctx, cfg, application.Options{
		Verbose:   globals.Verbose,
		Offline:   flags.Offline,
		NoCache:   flags.NoCache,
		LogOutput: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer container.Close(context.WithoutCancel(ctx))

	reader := newLineReader(cmd)
	defer reader.Close()
	prompter := prompt.New(reader, out)

	spec, err := selectTokenizer(flags.Tokenizer, cfg.Tokenizer.Default, prompter)
	if err != nil {
		return err
	}

	preload(cmd, container, spec)

	report := container.Analyzer().AnalyzeAll(ctx, paths, spec)
	fmt.Fprint(out, report)

	if err := saveResults(out, prompter, report, flags); err != nil {
		return err
	}

	if flags.Watch {
		return runWatch(ctx, out, container, paths, spec)
	}
	return nil
}

// selectTokenizer resolves the --tokenizer flag or falls back to the menu.
func selectTokenizer(choice string, defaultNumber int, p *prompt.Prompter) (tokenizer.Spec, error) {
	if choice != "" {
		return tokenizer.Resolve(choice)
	}
	return p.SelectTokenizer(defaultNumber)
}

// preload loads the selected vocabulary up front so slow downloads show a
// spinner instead of a silent pause. Failures are left to the analyzer.
func preload(cmd *cobra.Command, container *application.Container, spec tokenizer.Spec) {
	if spec.Kind != tokenizer.KindModelVocabulary {
		return
	}

	stderr, ok := cmd.ErrOrStderr().(*os.File)
	if !ok || !output.IsTerminal(stderr) {
		_, _ = container.Registry().Get(spec)
		return
	}

	spinner := output.NewSpinner(fmt.Sprintf("Loading %s vocabulary", spec.Identifier),
		output.WithSpinnerWriter(stderr),
		output.WithSpinnerColor(output.IsColorSupported(stderr)),
	)
	spinner.Start()
	_, _ = container.Registry().Get(spec)
	spinner.Stop()
}

// saveResults writes the report where the flags or the user say.
func saveResults(out io.Writer, p *prompt.Prompter, report string, flags *analyzeFlags) error {
	path := flags.Save
	if path == "" {
		if flags.NoSave || flags.Watch {
			return nil
		}

		save, err := p.Confirm(prompt.SaveQuestion)
		if err != nil || !save {
			return err
		}
		path, err = p.AskPath(prompt.FileNameQuestion)
		if err != nil {
			return err
		}
	}

	if err := analyzer.SaveReport(path, report); err != nil {
		return err
	}
	fmt.Fprintf(out, "Results saved to %s\n", path)
	return nil
}

// newLineReader reads prompts from the command's input.
func newLineReader(cmd *cobra.Command) prompt.LineReader {
	in := cmd.InOrStdin()
	if in == os.Stdin {
		return prompt.NewReader(cmd.OutOrStdout())
	}
	return prompt.NewScannerReader(in, cmd.OutOrStdout())
}

// loadConfig loads and validates configuration. An explicit path must exist.
func loadConfig(configPath string) (*config.Config, error) {
	loader, err := config.NewLoader("")
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = loader.LoadFromFile(configPath)
	} else {
		cfg, err = loader.Load("")
	}
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeConfiguration, "could not load configuration", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeConfiguration, "invalid configuration", err)
	}
	return cfg, nil
}

// newFormatter builds a formatter for subcommand output.
func newFormatter(cmd *cobra.Command, globals *GlobalFlags) (*output.Formatter, error) {
	format, err := output.ParseFormat(globals.Output)
	if err != nil {
		return nil, err
	}

	w := cmd.OutOrStdout()
	color := false
	if f, ok := w.(*os.File); ok && format != output.FormatJSON {
		color = output.IsColorSupported(f)
	}

	return output.NewFormatter(
		output.WithWriter(w),
		output.WithFormat(format),
		output.WithColor(color),
	), nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, NewRootCmd(), os.Stderr))
}

// run executes root and returns the process exit code.
func run(ctx context.Context, root *cobra.Command, stderr io.Writer) int {
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if ctx.Err() != nil {
		return 130
	}

	if !errors.Is(err, domainErrors.ErrNoInputFiles) {
		formatter := output.NewFormatter(output.WithWriter(stderr))
		formatter.Error("%s", err.Error())
	}
	return 1
}
