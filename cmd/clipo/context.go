package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"clipo/internal/api"
	"clipo/internal/config"
	"clipo/internal/history"
	"clipo/internal/logging"
	"clipo/internal/services/account"
	"clipo/internal/services/billing"
	"clipo/internal/services/library"
	"clipo/internal/services/processing"
	"clipo/internal/services/studio"
	"clipo/internal/session"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	clientOnce sync.Once
	client     *api.Client
	sessions   *session.Store
	logger     *slog.Logger
	clientErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureClient builds the shared API client, session store, and logger on
// first use. Every command goes through the same client so a refreshed token
// is visible everywhere.
func (c *commandContext) ensureClient() (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.clientOnce.Do(func() {
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.clientErr = fmt.Errorf("initialize logging: %w", err)
			return
		}
		c.logger = logger

		sessions, err := session.NewStore(session.NewFileStateStore(cfg.StatePath()))
		if err != nil {
			c.clientErr = fmt.Errorf("load session state: %w", err)
			return
		}
		c.sessions = sessions

		c.client = api.NewClient(cfg, sessions,
			api.WithLogger(logger),
			api.WithOnSessionExpired(func() {
				fmt.Fprintln(os.Stderr, "Session expired; run `clipo login` to sign in again.")
			}),
		)
	})
	return c.client, c.clientErr
}

func (c *commandContext) sessionStore() (*session.Store, error) {
	if _, err := c.ensureClient(); err != nil {
		return nil, err
	}
	return c.sessions, nil
}

func (c *commandContext) accountService() (*account.Service, error) {
	client, err := c.ensureClient()
	if err != nil {
		return nil, err
	}
	return account.NewService(client, c.logger), nil
}

func (c *commandContext) studioService() (*studio.Service, error) {
	client, err := c.ensureClient()
	if err != nil {
		return nil, err
	}
	return studio.NewService(client, c.config.Paths.DownloadDir, c.logger), nil
}

func (c *commandContext) processingService() (*processing.Service, error) {
	client, err := c.ensureClient()
	if err != nil {
		return nil, err
	}
	return processing.NewService(client, c.logger), nil
}

func (c *commandContext) libraryService() (*library.Service, error) {
	client, err := c.ensureClient()
	if err != nil {
		return nil, err
	}
	return library.NewService(client, c.logger), nil
}

func (c *commandContext) billingService() (*billing.Service, error) {
	client, err := c.ensureClient()
	if err != nil {
		return nil, err
	}
	return billing.NewService(client, c.logger), nil
}

// withHistory opens the local history database for the duration of fn.
func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
