package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"clipforge/internal/api"
	"clipforge/internal/config"
	"clipforge/internal/session"
	"clipforge/internal/spaces"
	"clipforge/internal/state"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
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
		c.config = cfg
	})
	return c.config, c.configErr
}

// runtime bundles everything a signed-in command needs: config, the locked
// credential store, the API client, and the application state on top.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *session.Store
	client *api.Client
	app    *state.App
}

// withRuntime opens the credential store for the duration of one command and
// guarantees the state lock is released afterwards.
func (c *commandContext) withRuntime(cmd *cobra.Command, fn func(context.Context, *runtime) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	store, err := session.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client := api.New(cfg.API.URL, store,
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithLogger(logger),
		api.WithSessionInvalidHandler(func() {
			fmt.Fprintln(cmd.ErrOrStderr(), "Session expired; run `clipforge login` to sign in again.")
		}),
	)
	app := state.New(store, client, logger)

	return fn(cmd.Context(), &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		client: client,
		app:    app,
	})
}

func (r *runtime) requireUser() (*session.User, error) {
	user := r.app.User()
	if user == nil {
		return nil, fmt.Errorf("not signed in; run `clipforge login` first")
	}
	return user, nil
}

func (r *runtime) requireSpace() (*spaces.Space, error) {
	space := r.app.ActiveSpace()
	if space == nil {
		return nil, fmt.Errorf("no active space; run `clipforge spaces use <space-id>` first")
	}
	return space, nil
}
