package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/almanova/preocupacional/cmd/preocupacional/wizard"
	"github.com/almanova/preocupacional/internal/aggregator"
	"github.com/almanova/preocupacional/internal/config"
	"github.com/almanova/preocupacional/internal/delivery"
	"github.com/almanova/preocupacional/internal/draft"
	"github.com/almanova/preocupacional/internal/intake"
	"github.com/almanova/preocupacional/internal/pdf"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type wizardFlags struct {
	from     string
	session  string
	store    string
	relayURL string
	logFile  string
}

// wizard: fill in the form interactively and submit it through the relay.
func wizardCmd() *cobra.Command {
	var f wizardFlags
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill in the pre-employment form interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWizard()
			if err != nil {
				return err
			}
			if f.store != "" {
				cfg.DraftStore = f.store
			}
			if f.relayURL != "" {
				cfg.RelayURL = f.relayURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runWizard(cmd.Context(), cfg, f)
		},
	}
	cmd.Flags().StringVar(&f.from, "from", "", "prefill the form from a YAML snapshot")
	cmd.Flags().StringVar(&f.session, "session", "default", "session id scoping the stored draft")
	cmd.Flags().StringVar(&f.store, "store", "", "draft store: memory, file or redis (overrides DRAFT_STORE)")
	cmd.Flags().StringVar(&f.relayURL, "relay-url", "", "relay base URL (overrides RELAY_URL)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "log file (default preocupacional.log in the session dir, - disables logging)")
	return cmd
}

func runWizard(parent context.Context, cfg config.Wizard, f wizardFlags) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM)
	defer stop()

	log, closeLog, err := openWizardLog(cfg, f)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openStore(cfg, f.session)
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	agg := aggregator.New(aggregator.Options{
		Store:    store,
		Debounce: cfg.Debounce,
		Clock:    clock,
		Logger:   log,
	})
	defer agg.Close()

	ctrl, err := intake.New(intake.Options{
		Aggregator: agg,
		Clinic:     pdf.Complete{Options: pdf.Options{Now: clock.Now}},
		Patient:    pdf.Consent{Options: pdf.Options{Now: clock.Now}},
		Channel:    delivery.NewHTTPChannel(cfg.RelayURL, cfg.DeliveryTimeout),
		Clock:      clock,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	log.Info().Str("store", cfg.DraftStore).Str("relay", cfg.RelayURL).Str("session", f.session).Msg("wizard starting")
	return wizard.Run(ctx, wizard.Deps{Controller: ctrl, Aggregator: agg, Clock: clock, Logger: log}, f.from)
}

// openStore builds the configured draft store, sealed when DRAFT_KEY is set.
func openStore(cfg config.Wizard, session string) (draft.Store, error) {
	var store draft.Store
	switch cfg.DraftStore {
	case config.StoreMemory:
		store = draft.NewMemoryStore()
	case config.StoreFile:
		fs, err := draft.NewFileStore(draft.SessionDir(session))
		if err != nil {
			return nil, err
		}
		store = fs
	case config.StoreRedis:
		client, err := draft.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rs, err := draft.NewRedisStore(client, "preocupacional", session, cfg.DraftTTL)
		if err != nil {
			return nil, err
		}
		store = rs
	default:
		return nil, fmt.Errorf("unknown draft store %q", cfg.DraftStore)
	}

	if cfg.DraftKey == "" {
		return store, nil
	}
	key, err := draft.ParseKey(cfg.DraftKey)
	if err != nil {
		return nil, err
	}
	return draft.NewSealed(store, key)
}

// openWizardLog opens the wizard's log file. The alternate screen owns
// stdout, so logs go to a file or nowhere.
func openWizardLog(cfg config.Wizard, f wizardFlags) (zerolog.Logger, func(), error) {
	path := f.logFile
	switch path {
	case "-":
		return zerolog.Nop(), func() {}, nil
	case "":
		dir := draft.SessionDir(f.session)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("creating session dir: %w", err)
		}
		path = filepath.Join(dir, "preocupacional.log")
	}
	lf, err := tea.LogToFile(path, "preocupacional")
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}
	return cfg.Log.NewLogger(lf), func() { lf.Close() }, nil
}
