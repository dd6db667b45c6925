package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/almanova/preocupacional/internal/config"
	"github.com/almanova/preocupacional/internal/relay"
	"github.com/almanova/preocupacional/internal/throttle"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// relay: serve the send endpoint until interrupted. Settings come from the
// environment.
func relayCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the mail relay HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadRelay()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			log := cfg.Log.NewLogger(os.Stdout)
			mailer, err := relay.MailerFor(cfg, log)
			if err != nil {
				return err
			}
			srv, err := relay.New(relay.Options{
				Mailer:       mailer,
				ClinicEmail:  cfg.ClinicEmail,
				MaxBodyBytes: cfg.MaxBodyBytes,
				Limits:       throttle.PerMinute(cfg.RatePerMinute, cfg.RateBurst),
				Clock:        clockwork.NewRealClock(),
				Logger:       log,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.Info().Str("addr", cfg.Addr).Str("backend", cfg.Backend).Msg("relay starting")
			return srv.Run(ctx, cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides RELAY_ADDR)")
	return cmd
}
