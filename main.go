// Package main provides the entry point for the recite CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/recite-sh/recite/internal/config"
	"github.com/recite-sh/recite/internal/extract"
	"github.com/recite-sh/recite/internal/watcher"
	"github.com/recite-sh/recite/speech"
	"github.com/recite-sh/recite/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	watchFile  bool

	rootCmd = &cobra.Command{
		Use:   "recite [FILE]",
		Short: "Read documents aloud from the command line",
		Long: paragraph(
			fmt.Sprintf("\nRead markdown and plain text %s, with word-level progress, pause and resume.", keyword("aloud")),
		),
		Example:       paragraph("recite README.md\ncat notes.txt | recite -\nrecite --engine gtts --rate 1.5 article.md"),
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		RunE:          execute,
	}
)

// document is what ends up being spoken.
type document struct {
	title string
	text  string
	path  string // empty for stdin
}

// loadDocument resolves the command argument into speakable text.
func loadDocument(arg string) (*document, error) {
	if arg == "" || arg == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		text := extract.Markdown(b)
		if text == "" {
			return nil, speech.ErrEmptyText
		}
		return &document{title: "(stdin)", text: text}, nil
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	text, err := extract.FromFile(abs)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s", speech.ErrEmptyText, arg)
	}
	return &document{title: filepath.Base(abs), text: text, path: abs}, nil
}

func stdinIsPipe() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0
}

func execute(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromViper()
	if err != nil {
		return err
	}

	arg := ""
	switch {
	case len(args) == 1:
		arg = args[0]
	case stdinIsPipe():
		// implicit stdin
	default:
		return errors.New("missing document: pass a file or pipe text in")
	}

	if watchFile && (arg == "" || arg == "-") {
		return errors.New("--watch needs a file to watch")
	}

	doc, err := loadDocument(arg)
	if err != nil {
		return err
	}

	// The TUI needs the terminal; without one, fall back to plain mode.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		cfg.Plain = true
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	ctrl, err := speech.NewController(engine,
		speech.WithMaxChunkLen(cfg.ChunkSize),
		speech.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}
	defer ctrl.Close() //nolint:errcheck

	var w *watcher.Watcher
	if watchFile {
		w, err = watcher.New(doc.path, config.WatchDebounce)
		if err != nil {
			return err
		}
		defer w.Close() //nolint:errcheck
	}

	if cfg.Plain {
		return runPlain(ctrl, doc, cfg, w)
	}
	return runTUI(ctrl, doc, cfg, w)
}

// runPlain speaks without a TUI, reporting progress as log lines. It
// blocks until the session ends or the process is interrupted.
func runPlain(ctrl *speech.Controller, doc *document, cfg config.Config, w *watcher.Watcher) error {
	done := make(chan struct{}, 1)
	var sessionErr error
	ctrl.SetCallbacks(speech.Callbacks{
		OnStart: func() { log.Info("reading", "document", doc.title) },
		OnBoundary: func(info speech.BoundaryInfo) {
			log.Debug("progress", "chunk", info.ChunkIndex, "offset", info.CharIndex,
				"percent", fmt.Sprintf("%.1f", info.Percent))
		},
		OnError: func(err error) { sessionErr = err },
		OnEnd: func() {
			select {
			case done <- struct{}{}:
			default:
			}
		},
	})

	if err := ctrl.Speak(doc.text, cfg.VoiceParams()); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	var changed <-chan struct{}
	if w != nil {
		changed = w.Changed()
	}

	for {
		select {
		case <-done:
			if sessionErr != nil {
				return sessionErr
			}
			if w == nil {
				return nil
			}
			// Watching: stay alive for the next change.
		case <-changed:
			fresh, err := loadDocument(doc.path)
			if err != nil {
				log.Warn("reload failed", "error", err)
				continue
			}
			log.Info("document changed, restarting", "document", doc.title)
			if err := ctrl.Speak(fresh.text, cfg.VoiceParams()); err != nil {
				log.Warn("restart failed", "error", err)
			}
		case <-sig:
			ctrl.Stop()
			return nil
		}
	}
}

func runTUI(ctrl *speech.Controller, doc *document, cfg config.Config, w *watcher.Watcher) error {
	if os.Getenv("RECITE_LOGFILE") == "" {
		// The log shares stderr with the TUI otherwise.
		discardLogs()
	}

	m := ui.New(ctrl, doc.title, doc.text, cfg.VoiceParams(), w != nil)
	p := tea.NewProgram(m)
	ui.Bind(p, ctrl)

	if w != nil {
		go func() {
			for range w.Changed() {
				fresh, err := loadDocument(doc.path)
				if err != nil {
					p.Send(ui.ErrorMsg{Err: err})
					continue
				}
				p.Send(ui.DocumentReloadedMsg{Text: fresh.text})
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringP("engine", "e", "", "synthesis engine (piper, gtts, mock or auto)")
	rootCmd.Flags().String("voice", "", "voice identifier, engine default if empty")
	rootCmd.Flags().Float64P("rate", "r", 1.0, "speech rate (0.5 to 2.0)")
	rootCmd.Flags().Float64("pitch", 1.0, "pitch (0.0 to 2.0)")
	rootCmd.Flags().Float64("volume", 1.0, "volume (0.0 to 1.0)")
	rootCmd.Flags().Int("chunk-size", speech.DefaultMaxChunkLen, "maximum utterance length in characters")
	rootCmd.Flags().BoolP("plain", "p", false, "no TUI, log progress instead")
	rootCmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "restart reading when the file changes")

	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("rate", rootCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("pitch", rootCmd.Flags().Lookup("pitch"))
	_ = viper.BindPFlag("volume", rootCmd.Flags().Lookup("volume"))
	_ = viper.BindPFlag("chunk_size", rootCmd.Flags().Lookup("chunk-size"))
	_ = viper.BindPFlag("plain", rootCmd.Flags().Lookup("plain"))

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd, cacheCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "recite")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find the configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "recite")}, dirs...)
	}
	if c := os.Getenv("RECITE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("recite")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("recite")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}
	configFile = filepath.Join(dirs[0], "recite.yml")
}
