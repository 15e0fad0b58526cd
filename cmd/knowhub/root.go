package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/knowhub/internal/config"
	"github.com/aretw0/knowhub/internal/platform"
	"github.com/aretw0/knowhub/pkg/hub"
	"github.com/aretw0/knowhub/pkg/notify"
)

// app carries the global flags and the state shared by every command.
type app struct {
	vault    string
	adapter  string
	format   string
	readOnly bool
	verbose  bool
	yes      bool

	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

func newApp() *app {
	return &app{now: time.Now}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "knowhub",
		Short: "A local knowledge base for notices and articles",
		Long: `knowhub keeps notices, knowledge-base articles and their categories in a
local store (JSON/YAML files with optional git history, or SQLite) and lets
you browse, search, import and export them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.vault, "vault", "C", "", "Knowledge base location (default: nearest vault above the working directory)")
	flags.StringVar(&a.adapter, "adapter", "", "Storage adapter: fs, sqlite or memory")
	flags.StringVar(&a.format, "format", "", "Collection file format of the fs adapter: json or yaml")
	flags.BoolVar(&a.readOnly, "read-only", false, "Open the knowledge base without write access")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVarP(&a.yes, "yes", "y", false, "Answer yes to every confirmation")

	rootCmd.AddCommand(
		initCmd(a),
		noticeCmd(a),
		kbCmd(a),
		categoryCmd(a),
		searchCmd(a),
		statsCmd(a),
		exportCmd(a),
		importCmd(a),
		resetCmd(a),
		watchCmd(a),
		historyCmd(a),
		configCmd(a),
		versionCmd(a),
	)
	return rootCmd
}

// setup resolves the vault, loads the configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	explicit := a.vault != ""
	if !explicit {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		a.vault = wd
		if root, err := platform.FindRoot(wd); err == nil {
			a.vault = root
			explicit = true
		}
	}

	cfg, err := config.Load(a.vault)
	if err != nil {
		return err
	}
	if !explicit && cfg.Path != "" && cfg.Path != "." {
		a.vault = cfg.Path
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter = a.adapter
	}
	if flags.Changed("format") {
		cfg.Format = a.format
	}
	if flags.Changed("read-only") {
		cfg.ReadOnly = a.readOnly
	}
	a.cfg = cfg

	level := cfg.Level()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	return nil
}

// openHub opens the configured knowledge base. The returned func releases it.
func (a *app) openHub(ctx context.Context, extra ...platform.Option) (*hub.Hub, func(), error) {
	opts := append(a.cfg.Options(), platform.WithLogger(a.logger), platform.WithClock(a.now))
	opts = append(opts, extra...)

	h, err := platform.New(ctx, a.vault, opts...)
	if err != nil {
		return nil, nil, err
	}
	return h, func() {
		h.Close()
		if err := platform.Close(h.Repository()); err != nil {
			a.logger.Warn("failed to close repository", "error", err)
		}
	}, nil
}

// withHub runs fn against an open hub.
func (a *app) withHub(cmd *cobra.Command, fn func(ctx context.Context, h *hub.Hub) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	h, release, err := a.openHub(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, h)
}

// actions wires the hub to the terminal: notifications on stderr and
// confirmations read from stdin unless --yes was given.
func (a *app) actions(cmd *cobra.Command, h *hub.Hub) *hub.Actions {
	var confirmer notify.Confirmer = notify.Prompt{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	if a.yes {
		confirmer = notify.Static(true)
	}
	return hub.NewActions(h, notify.NewConsole(cmd.ErrOrStderr()), confirmer)
}
