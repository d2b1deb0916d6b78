package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/linkboard/internal/api"
	"github.com/five82/linkboard/internal/config"
	"github.com/five82/linkboard/internal/prefs"
	"github.com/five82/linkboard/internal/ui"
	"github.com/five82/linkboard/internal/viewstate"
)

// Options configure the linkboard application.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/linkboard/prefs.toml
	APIURL     string        // overrides api_url when set
	PollEvery  time.Duration // overrides poll_interval when positive
}

// session bundles what every entry point needs after loading config.
type session struct {
	cfg        config.Config
	logger     *zap.Logger
	client     *api.Client
	controller *viewstate.Controller
}

func newSession(opts Options) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}

	logger, err := NewLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger.Named("api")))
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	return &session{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		controller: viewstate.New(client, logger.Named("viewstate")),
	}, nil
}

func (s *session) close() {
	s.client.CloseIdleConnections()
	_ = s.logger.Sync()
}

// Run boots the TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.close()

	userPrefs := prefs.Load(opts.PrefsPath)
	s.logger.Info("starting",
		zap.String("api_url", s.client.BaseURL()),
		zap.Duration("poll_interval", s.cfg.PollInterval),
		zap.String("theme", userPrefs.Theme))

	// A failed first load is not fatal: the UI shows the error and the user
	// can retry with a reload.
	if _, err := s.controller.Reload(ctx); err != nil {
		s.logger.Warn("initial load failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if s.cfg.PollInterval > 0 {
		g.Go(func() error {
			RunPoller(gctx, s.controller, s.cfg.PollInterval, s.logger.Named("poller"))
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		return ui.Run(ui.Options{
			Context:    gctx,
			Controller: s.controller,
			Logger:     s.logger.Named("ui"),
			APIURL:     s.client.BaseURL(),
			PollTick:   s.cfg.PollInterval,
			Prefs:      userPrefs,
			PrefsPath:  opts.PrefsPath,
		})
	})

	return g.Wait()
}
