package cmd

import (
	"fmt"

	"aero-importer/core/config"
	"aero-importer/core/database"
	"aero-importer/core/logger"
	"aero-importer/core/source"
	"aero-importer/core/storage"
	"aero-importer/feature/importer"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds the collaborators shared by the commands.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	storage storage.Client
}

// setup loads the configuration and builds the logger. The database is
// connected when withDB is set.
func setup(withDB bool) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: l, storage: client}
	if withDB {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.db = db
	}
	return rt, nil
}

func (rt *runtime) opener() *source.Opener {
	return source.NewOpener(rt.storage, rt.cfg.Source, rt.logger)
}

func (rt *runtime) importer() *importer.Service {
	return importer.NewService(rt.db, rt.opener(), importer.Config{
		Store:     rt.cfg.Store,
		Reconcile: rt.cfg.Reconcile,
		Source:    rt.cfg.Source,
		Schema:    rt.cfg.Database.Schema,
	}, rt.logger)
}
