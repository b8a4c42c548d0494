package root

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/avivsinai/rustlator/internal/cobraext"
	"github.com/avivsinai/rustlator/internal/config"
	"github.com/avivsinai/rustlator/internal/intent"
	"github.com/avivsinai/rustlator/internal/output"
)

var envConfig = viper.New()

func init() {
	envConfig.SetEnvPrefix("RUSTLATOR")
	envConfig.AutomaticEnv()
}

type options struct {
	to      string
	from    string
	api     string
	status  bool
	list    bool
	pick    bool
	jsonOut bool
	yamlOut bool
	quiet   bool
	verbose bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "rl [TEXT]",
		Short:   "Translate words between languages using LibreTranslate",
		Long:    "rl sends text to a LibreTranslate-compatible service and prints the translation.\nGiven --to/--from without TEXT it stores new default languages instead.",
		Args:    cobra.MaximumNArgs(1),
		Version: buildVersion(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.jsonOut && opts.yamlOut {
				return errors.New("--json and --yaml are mutually exclusive")
			}
			if opts.pick && !opts.list {
				return errors.New("--pick requires --list")
			}

			printer := &output.Printer{
				JSON:  opts.jsonOut,
				YAML:  opts.yamlOut,
				Quiet: opts.quiet,
				Out:   stdout,
				Err:   stderr,
			}
			logger := newLogger(stderr, opts.verbose)

			store := config.Open(envConfig.GetString("CONFIG_DIR"))
			doc, err := loadDocument(store, cmd.Flags().Changed("api"))
			if err != nil {
				return err
			}
			if path, err := store.Path(); err == nil {
				logger.Debug("loaded config", "path", path, "keys", doc.Keys())
			}

			app := &cobraext.App{
				Store:   store,
				Config:  doc,
				Printer: printer,
				Logger:  logger,
			}
			cmd.SetContext(cobraext.WithApp(cmd.Context(), app))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			in, err := intent.NewResolver(app.Store).Resolve(parseArgs(cmd.Flags(), args), app.Config)
			if err != nil {
				return err
			}
			app.Logger.Debug("resolved intent", "kind", in.Kind.String(), "api_url", in.APIURL, "from", in.From, "to", in.To)

			switch in.Kind {
			case intent.UpdateAPIURL:
				return renderAPIUpdated(app, in)
			case intent.UpdateLanguages:
				return renderLanguagesUpdated(app, in)
			case intent.ListLanguages:
				return runList(cmd, app, in, opts.pick)
			case intent.ShowStatus:
				return runStatus(cmd, app, in)
			default:
				return runTranslate(cmd, app, in)
			}
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("rl {{.Version}}\n")
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	flags := cmd.Flags()
	flags.StringVarP(&opts.to, "to", "t", "", "Set the target language")
	flags.StringVarP(&opts.from, "from", "f", "", "Set the source language")
	flags.BoolVarP(&opts.status, "status", "s", false, "Show current language settings and API reachability")
	flags.BoolVarP(&opts.list, "list", "l", false, "List available languages")
	flags.StringVarP(&opts.api, "api", "a", "", "Set the API URL")
	flags.BoolVar(&opts.pick, "pick", false, "With --list, choose the target language interactively")

	persistent := cmd.PersistentFlags()
	persistent.BoolVar(&opts.jsonOut, "json", false, "Emit JSON output")
	persistent.BoolVar(&opts.yamlOut, "yaml", false, "Emit YAML output")
	persistent.BoolVar(&opts.quiet, "quiet", false, "Only print errors")
	persistent.BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests and config resolution to stderr")

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return ExecuteWithArgs(os.Args[1:])
}

// ExecuteWithArgs exposes execution for testing.
func ExecuteWithArgs(args []string) error {
	return executeWith(args, os.Stdout, os.Stderr)
}

func executeWith(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		(&output.Printer{Out: stdout, Err: stderr}).Error("Error: %v", err)
		return err
	}
	return nil
}

// parseArgs maps flags onto intent.Args. A string flag counts as supplied
// only when it was set on the command line, even if set to "".
func parseArgs(fs *pflag.FlagSet, positional []string) intent.Args {
	a := intent.Args{
		To:   changedString(fs, "to"),
		From: changedString(fs, "from"),
		API:  changedString(fs, "api"),
	}
	a.Status, _ = fs.GetBool("status")
	a.List, _ = fs.GetBool("list")
	if len(positional) > 0 {
		text := positional[0]
		a.Text = &text
	}
	return a
}

func changedString(fs *pflag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v, err := fs.GetString(name)
	if err != nil {
		return nil
	}
	return &v
}

// loadDocument reads the config file. A missing file is tolerated only when
// --api is about to create it.
func loadDocument(store *config.Store, bootstrapping bool) (*config.Document, error) {
	doc, err := store.Load()
	if err == nil {
		return doc, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		if bootstrapping {
			return config.NewDocument(), nil
		}
		return nil, fmt.Errorf("%w (run 'rl --api <url>' to create it)", err)
	}
	return nil, err
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if raw := strings.TrimSpace(envConfig.GetString("LOG_LEVEL")); raw != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(raw)); err == nil {
			level = parsed
		}
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func getApp(cmd *cobra.Command) (*cobraext.App, error) {
	app, ok := cobraext.From(cmd.Context())
	if !ok {
		return nil, errors.New("internal: app context missing")
	}
	return app, nil
}
