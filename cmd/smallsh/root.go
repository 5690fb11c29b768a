package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"smallsh/internal/config"
	"smallsh/internal/launch"
	"smallsh/internal/logger"
	"smallsh/internal/shell"
)

var (
	cfgPath    string
	promptFlag string
	readlineOn bool
	eventLog   string
	debug      bool
	exitCode   int
)

// rootCmd runs the interpreter when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "smallsh",
	Short: "A small interactive shell",
	Long: `smallsh runs commands in the foreground or, with a trailing &, in the
background. It supports < and > redirection, $$ expansion and the exit,
cd and status built-ins. Ctrl-Z toggles foreground-only mode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		debugLog := logger.NewDebug(cmd.ErrOrStderr(), debug)

		events := logger.Nop()
		if cfg.EventLog != "" {
			fd, err := cfg.OpenEventLog(afero.NewOsFs())
			if err != nil {
				return fmt.Errorf("open event log: %w", err)
			}
			defer fd.Close()
			events = logger.NewJsonLinesLogRecorder(fd)
		}
		session := events.NewSession()
		debugLog.Printf("session %s", session.SessionID())

		launcher, err := launch.New()
		if err != nil {
			return err
		}

		reader, err := newReader(cfg)
		if err != nil {
			return err
		}
		defer reader.Close()

		sh := shell.New(shell.Options{
			Config:  cfg,
			Spawner: launcher,
			Reader:  reader,
			Events:  session,
			Log:     debugLog,
		})

		policy := sh.InstallSignals(int(os.Stdout.Fd()))
		defer policy.Stop()

		exitCode = sh.Run()
		return nil
	},
}

func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	fsys := afero.NewOsFs()

	var cfg *config.Configuration
	var err error
	if cfgPath != "" {
		cfg, err = config.Load(fsys, cfgPath)
	} else if home, herr := os.UserHomeDir(); herr == nil {
		cfg, err = config.LoadHome(fsys, home)
	} else {
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("prompt") {
		cfg.Prompt = promptFlag
	}
	if flags.Changed("readline") {
		cfg.Readline = readlineOn
	}
	if flags.Changed("event-log") {
		cfg.EventLog = eventLog
	}

	return cfg, cfg.Validate()
}

func newReader(cfg *config.Configuration) (shell.LineReader, error) {
	if cfg.Readline && isatty.IsTerminal(os.Stdin.Fd()) {
		return shell.NewEditorReader(cfg.HistoryFile)
	}
	return shell.NewPlainReader(os.Stdin, os.Stdout), nil
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&cfgPath, "config", "", "config file (default $HOME/"+config.ConfigurationName+")")
	flags.StringVar(&promptFlag, "prompt", "", "prompt string, supports \\u, \\h, \\w and \\$")
	flags.BoolVar(&readlineOn, "readline", false, "use a line editor with history on terminals")
	flags.StringVar(&eventLog, "event-log", "", "append job events as JSON lines to this file")
	flags.BoolVar(&debug, "debug", false, "log interpreter internals to stderr")
}
