package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	gologme "github.com/gologme/log"

	"github.com/nhle/mailsettings/internal/account"
	"github.com/nhle/mailsettings/internal/credential"
	"github.com/nhle/mailsettings/internal/engine"
	"github.com/nhle/mailsettings/internal/logging"
	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/provider"
	"github.com/nhle/mailsettings/internal/store"
	"github.com/nhle/mailsettings/internal/theme"
)

// env holds the services shared by all commands.
type env struct {
	cfg       *model.AppConfig
	logger    *gologme.Logger
	store     *store.SQLiteStore
	accounts  *account.Service
	providers *provider.Registry

	logFile io.Closer
}

// openEnv loads the configuration and opens storage. Log output goes to the
// configured file so it does not interfere with the terminal UI.
func openEnv() (*env, error) {
	path := configPathFlag
	if path == "" {
		path = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}

	var w io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v; logging disabled\n", err)
		} else {
			w = f
			e.logFile = f
		}
	}
	e.logger = logging.New(w, "mailsettings", cfg.Log.Level)

	if !theme.Use(cfg.Display.Theme) {
		e.logger.Warnf("unknown theme %q, using default", cfg.Display.Theme)
	}

	e.providers, err = provider.Load(cfg.Providers.File)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.store, err = store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("opening account database: %w", err)
	}

	vault, err := credential.Open()
	if err != nil {
		e.Close()
		return nil, err
	}
	e.accounts = account.NewService(e.store, vault, account.WithLogger(e.logger))

	e.logger.Infof("opened %s with %d providers", cfg.Database.Path, len(e.providers.Entries()))
	return e, nil
}

// newEngine starts a validation engine configured from the environment.
func (e *env) newEngine() *engine.Engine {
	return engine.NewFromConfig(e.cfg.Validation, e.logger)
}

// Close releases the database and the log file.
func (e *env) Close() error {
	var errs []error
	if e.store != nil {
		errs = append(errs, e.store.Close())
	}
	if e.logFile != nil {
		errs = append(errs, e.logFile.Close())
	}
	return errors.Join(errs...)
}
