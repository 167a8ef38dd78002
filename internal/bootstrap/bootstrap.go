package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/lead-forensics/internal/domains"
	"github.com/richxcame/lead-forensics/internal/leads"
	"github.com/richxcame/lead-forensics/internal/report"
	"github.com/richxcame/lead-forensics/internal/scoring"
	"github.com/richxcame/lead-forensics/pkg/config"
	"github.com/richxcame/lead-forensics/pkg/database"
	"github.com/richxcame/lead-forensics/pkg/eventbus"
	"github.com/richxcame/lead-forensics/pkg/logger"
	pkgredis "github.com/richxcame/lead-forensics/pkg/redis"
	"github.com/richxcame/lead-forensics/pkg/storage"
	"go.uber.org/zap"
)

// Database is an open pool plus its database/sql view
type Database struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
}

// Close releases the sql handle and the pool
func (d *Database) Close() {
	if d == nil {
		return
	}
	if d.DB != nil {
		d.DB.Close()
	}
	database.Close(d.Pool)
}

// OpenDatabase connects to PostgreSQL and applies pending migrations when enabled
func OpenDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	if cfg.AutoMigrate {
		if err := database.Migrate(cfg); err != nil {
			return nil, err
		}
	}

	pool, err := database.NewPostgresPool(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.DBName))

	return &Database{Pool: pool, DB: database.OpenDB(pool)}, nil
}

// OpenRedis connects to Redis, or returns nil when it is disabled
func OpenRedis(cfg *config.RedisConfig) (*pkgredis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := pkgredis.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr()))
	return client, nil
}

// LoadRules loads the rule sets from the optional YAML file and merges in the
// disposable domains stored in registry. A registry failure keeps the file and
// default rules.
func LoadRules(ctx context.Context, path string, registry *domains.Registry) (*scoring.Rules, error) {
	rules, err := scoring.LoadRulesFile(path)
	if err != nil {
		return nil, err
	}
	if registry == nil {
		return rules, nil
	}
	if _, err := registry.MergeInto(ctx, rules); err != nil {
		logger.Warn("Using rules without stored disposable domains", zap.Error(err))
	}
	return rules, nil
}

// NewArchiver builds the report archiver, or returns nil when storage is disabled
func NewArchiver(ctx context.Context, cfg config.StorageConfig) (leads.ReportArchiver, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init report storage: %w", err)
	}
	logger.Info("Report archive enabled", zap.String("provider", cfg.Provider))
	return report.NewArchiver(store), nil
}

// NewPublisher connects to NATS, or returns a no-op publisher when it is disabled
func NewPublisher(cfg config.NATSConfig, clientName string) (eventbus.Publisher, error) {
	if !cfg.Enabled {
		return eventbus.Noop{}, nil
	}
	bus, err := eventbus.Connect(cfg.URL, clientName)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to NATS", zap.String("url", cfg.URL), zap.String("subject", cfg.Subject))
	return bus, nil
}
