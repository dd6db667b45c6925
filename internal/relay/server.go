// Package relay is the HTTP mail relay. It accepts a submission with both
// PDFs and sends one message to the clinic and one to the patient.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/almanova/preocupacional/internal/config"
	"github.com/almanova/preocupacional/internal/delivery"
	"github.com/almanova/preocupacional/internal/throttle"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	shutdownGrace = 10 * time.Second
	sweepCycle    = time.Minute
	sweepAge      = 10 * time.Minute
)

// Options wires the router.
type Options struct {
	Mailer       Mailer
	ClinicEmail  string
	MaxBodyBytes int64
	Limits       throttle.Conf
	Clock        clockwork.Clock
	Logger       zerolog.Logger
}

// Server is the relay's router plus its throttle store.
type Server struct {
	router   chi.Router
	throttle *throttle.Store[string]
	log      zerolog.Logger
}

// New builds the relay. Options.Mailer and Options.ClinicEmail are required.
func New(opts Options) (*Server, error) {
	if opts.Mailer == nil {
		return nil, errors.New("relay: mailer is required")
	}
	if opts.ClinicEmail == "" {
		return nil, errors.New("relay: clinic email is required")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 15 << 20
	}
	if opts.Limits.Burst <= 0 {
		opts.Limits = throttle.PerMinute(10, 5)
	}
	log := opts.Logger.With().Str("component", "relay").Logger()

	store := throttle.NewStore[string](opts.Logger)
	store.SetGroup(sendGroup, opts.Limits)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(Recovery)
	r.MethodNotAllowed(methodNotAllowed)
	r.NotFound(notFound)

	r.Get("/healthz", healthz)
	r.Group(func(r chi.Router) {
		r.Use(Throttle(store, opts.Clock))
		r.Use(BodyLimit(opts.MaxBodyBytes))
		r.Method(http.MethodPost, delivery.SendPath, NewSendHandler(opts.Mailer, opts.ClinicEmail, opts.Clock))
	})

	return &Server{router: r, throttle: store, log: log}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is done, then drains for up to 10s.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.throttle.Run(sweepCtx, sweepCycle, sweepAge)

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("relay listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// MailerFor selects the backend named by cfg.Backend.
func MailerFor(cfg config.Relay, log zerolog.Logger) (Mailer, error) {
	switch cfg.Backend {
	case config.BackendSMTP:
		return SMTPMailer{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.MailFrom,
		}, nil
	case config.BackendResend:
		m, err := NewResendMailer(cfg.Resend.BaseURL, cfg.Resend.APIKey, cfg.MailFrom)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.BackendLog:
		return LogMailer{Log: log.With().Str("component", "mailer").Logger()}, nil
	}
	return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
}
