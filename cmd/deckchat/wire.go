package main

import (
	"fmt"

	"deckchat/internal/config"
	"deckchat/internal/contextmgr"
	"deckchat/internal/conversation"
	"deckchat/internal/deck"
	"deckchat/internal/docs"
	"deckchat/internal/endpoint"
	"deckchat/internal/i18n"
	"deckchat/internal/logging"
	"deckchat/internal/playback"
	"deckchat/internal/provider"
	"deckchat/internal/session"
	"deckchat/internal/storage"
)

type app struct {
	cfg      config.Config
	locale   *i18n.Catalog
	durable  *storage.SQLiteStore
	store    *session.Store
	provider *provider.OpenAIProvider
	ctl      *conversation.Controller
	player   playback.Player
}

// loadConfig reads layered config, starts logging and selects the message catalog; every
// command goes through it.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := logging.Init(cfg.Log.File, cfg.Log.Level); err != nil {
		return config.Config{}, fmt.Errorf("init logging: %w", err)
	}
	i18n.SetDefault(cfg.Locale)
	return cfg, nil
}

func newProvider(cfg config.Config) *provider.OpenAIProvider {
	return provider.NewOpenAIProvider(provider.OpenAIConfig{
		BaseURL:    cfg.Provider.BaseURL,
		APIKey:     cfg.Provider.APIKey,
		Model:      cfg.Provider.Model,
		TimeoutMS:  cfg.Provider.TimeoutMS,
		MaxRetries: cfg.Provider.MaxRetries,
	})
}

func wireApp(cfg config.Config) (*app, error) {
	durable, err := storage.NewSQLiteStore(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	store, err := session.Open(durable, storage.NewShellSlot(""))
	if err != nil {
		_ = durable.Close()
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	locale := i18n.Default()
	model := newProvider(cfg)
	generator := deck.NewGenerator(
		deck.NewContentGenerator(model, contextmgr.NewTokenizerForModel(cfg.Provider.Model), cfg.Generation),
		deck.NewNarrator(model, cfg.Narration, cfg.AudioDir()),
	)
	ctl := conversation.New(store,
		endpoint.New(cfg.Endpoint),
		docs.NewFormatter(model, cfg.Generation),
		generator,
		conversation.WithLocale(locale),
	)

	logging.Info().
		Str("db", durable.Path()).
		Str("locale", locale.Locale()).
		Int("sessions", store.Len()).
		Bool("endpoint", cfg.Endpoint.URL != "").
		Bool("narration", cfg.Narration.Enabled).
		Msg("deckchat wired")

	return &app{
		cfg:      cfg,
		locale:   locale,
		durable:  durable,
		store:    store,
		provider: model,
		ctl:      ctl,
		player:   newPlayer(cfg.Narration),
	}, nil
}

// newPlayer picks the narration player; without one slides advance on the fallback timer.
func newPlayer(cfg config.NarrationConfig) playback.Player {
	if !cfg.Enabled {
		return playback.NopPlayer{}
	}
	p, err := playback.NewExecPlayer(cfg.Player)
	if err != nil {
		logging.Warn().Err(err).Msg("no audio player found, narration will be skipped")
		return playback.NopPlayer{}
	}
	logging.Debug().Strs("command", p.Command()).Msg("audio player selected")
	return p
}

func (a *app) Close() {
	if a == nil || a.durable == nil {
		return
	}
	if err := a.durable.Close(); err != nil {
		logging.Warn().Err(err).Msg("close session database")
	}
}
