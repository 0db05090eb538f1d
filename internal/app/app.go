package app

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/harrylevesque/deviceadmin/internal/admin"
	"github.com/harrylevesque/deviceadmin/internal/config"
	"github.com/harrylevesque/deviceadmin/internal/files"
	"github.com/harrylevesque/deviceadmin/internal/persistence"
	"github.com/harrylevesque/deviceadmin/internal/utils"
)

const sqliteFileName = "deviceadmin.db"

// App bundles the authority with the resources that back it.
type App struct {
	Authority *admin.Authority
	Log       *utils.Logger

	closers []func() error
}

// New wires sources and store from cfg. The identifier chain is: configured
// DEVICE_ID, then the host hardware id, then the per-installation id.
func New(cfg config.Config, log *utils.Logger) (*App, error) {
	if log == nil {
		log = utils.NewNopLogger()
	}
	if err := utils.EnsureDir(cfg.DataDir); err != nil {
		return nil, utils.Wrap(utils.CodeStorageUnavailable, "create data dir", err)
	}

	a := &App{Log: log}

	store, err := a.openStore(cfg)
	if err != nil {
		return nil, err
	}

	source := NewSource(cfg)
	a.Authority = admin.NewAuthority(source, store, admin.WithLogger(log.With(zap.String("component", "admin"))))

	log.Debug("deviceadmin ready",
		zap.String("data_dir", cfg.DataDir),
		zap.String("store", cfg.Store),
	)
	return a, nil
}

// NewSource builds the identifier chain for cfg.
func NewSource(cfg config.Config) admin.IdentifierSource {
	var chain admin.ChainSource
	if cfg.DeviceID != "" {
		chain = append(chain, admin.StaticSource(cfg.DeviceID))
	}
	return append(chain,
		utils.PlatformSource{},
		files.NewInstallationStore(cfg.DataDir),
	)
}

func (a *App) openStore(cfg config.Config) (admin.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := persistence.OpenSQLite(filepath.Join(cfg.DataDir, sqliteFileName))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	default:
		return files.NewAllowListStore(cfg.DataDir), nil
	}
}

// Close releases the store.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
