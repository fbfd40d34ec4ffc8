package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/bnema/ff1c/internal/adapters/bridge"
	statusadapter "github.com/bnema/ff1c/internal/adapters/render/status"
	tomlrepo "github.com/bnema/ff1c/internal/adapters/repo/toml"
	"github.com/bnema/ff1c/internal/adapters/session/multiworld"
	"github.com/bnema/ff1c/internal/adapters/tables"
	"github.com/bnema/ff1c/internal/application"
	"github.com/bnema/ff1c/internal/config"
	"github.com/bnema/ff1c/internal/domain"
	"github.com/bnema/ff1c/internal/logging"
	"github.com/bnema/ff1c/internal/ports"
)

var clientVersion = domain.Version{Major: 0, Minor: 4, Build: 0, Class: "Version"}

type app struct {
	cfg            config.Config
	statusRepo     *tomlrepo.StatusRepository
	statusRenderer func(domain.BridgeStatus, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
	logLevel       *string
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	repo, err := tomlrepo.NewStatusRepository(cfg.Status.Path)
	if err != nil {
		return nil, fmt.Errorf("wire status repository: %w", err)
	}

	return &app{
		cfg:            cfg,
		statusRepo:     repo,
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}, nil
}

func (a *app) newLogger(stderr io.Writer) (*logging.Logger, error) {
	level := a.cfg.Log.Level
	if a.logLevel != nil && *a.logLevel != "" {
		level = *a.logLevel
	}
	if !logging.ValidLevel(level) {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	opts := logging.Options{Level: level, File: a.cfg.Log.File}
	if opts.File == "" {
		opts.Writer = stderr
	}
	return logging.New(opts)
}

// runner is everything `ff1c run` drives.
type runner struct {
	logger     *logging.Logger
	session    *multiworld.Client
	loop       *application.SyncLoop
	translator *application.Translator
	names      *tables.Lookup
	store      *application.MessageStore
}

type runSettings struct {
	address  string
	password string
	name     string
}

func (a *app) wireRunner(settings runSettings, logger *logging.Logger) (*runner, error) {
	names, err := tables.Load(a.cfg.Tables.Items, a.cfg.Tables.Locations)
	if err != nil {
		return nil, err
	}
	itemCount, locationCount := names.Len()
	logger.Debug("loaded name tables", "items", itemCount, "locations", locationCount)

	rt := &runner{logger: logger, names: names}

	session, err := multiworld.NewClient(settings.address, multiworld.Identity{
		Name:     settings.name,
		Password: settings.password,
		UUID:     uuid.NewString(),
		Version:  clientVersion,
	},
		multiworld.WithLogger(logger.WithComponent("session")),
		multiworld.WithEventHandler(func(ev domain.RemoteEvent) {
			rt.translator.Handle(ev)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("wire multiworld session: %w", err)
	}
	rt.session = session

	clock := ports.SystemClock{}
	rt.store = application.NewMessageStore(clock)

	manager := bridge.NewManager(
		bridge.WithAddress(a.cfg.Bridge.Address),
		bridge.WithTimeouts(a.cfg.Bridge.ConnectTimeout, a.cfg.Bridge.DrainTimeout, a.cfg.Bridge.ReadTimeout),
		bridge.WithStatusSink(a.statusRepo),
		bridge.WithLogger(logger.WithComponent("bridge")),
	)

	rt.loop = application.NewSyncLoop(manager, session, rt.store, clock,
		application.WithRetryPause(a.cfg.Bridge.RetryPause),
		application.WithSyncLogger(logger.WithComponent("sync")),
	)

	rt.translator = application.NewTranslator(names, session, rt.store,
		application.WithConnectedHook(rt.loop.ResetBinding),
		application.WithTranslatorLogger(logger.WithComponent("messages")),
	)

	return rt, nil
}
