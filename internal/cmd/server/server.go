// Package server parses server command flags and starts the shard runtime.
package server

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/hypermage/shardcore/internal/admission"
	"github.com/hypermage/shardcore/internal/fleet"
	"github.com/hypermage/shardcore/internal/health"
	entrypoint "github.com/hypermage/shardcore/internal/platform/cmd"
	"github.com/hypermage/shardcore/internal/platform/id"
	"github.com/hypermage/shardcore/internal/report"
	"github.com/hypermage/shardcore/internal/report/httpapi"
	"github.com/hypermage/shardcore/internal/report/natsbus"
	reportsqlite "github.com/hypermage/shardcore/internal/report/sqlite"
	"github.com/hypermage/shardcore/internal/rewards"
	"github.com/hypermage/shardcore/internal/rewards/source"
	"github.com/hypermage/shardcore/internal/session"
	"github.com/hypermage/shardcore/internal/token"
)

// Config holds server command configuration.
type Config struct {
	ShardID        string        `env:"SHARDCORE_SHARD_ID"`
	MaxPlayers     int           `env:"SHARDCORE_MAX_PLAYERS" envDefault:"15"`
	TokenIssuer    string        `env:"SHARDCORE_TOKEN_ISSUER"`
	TokenAudience  string        `env:"SHARDCORE_TOKEN_AUDIENCE"`
	FleetManaged   bool          `env:"SHARDCORE_FLEET_MANAGED"`
	CatalogFile    string        `env:"SHARDCORE_CATALOG_FILE"`
	CatalogBucket  string        `env:"SHARDCORE_CATALOG_S3_BUCKET"`
	CatalogKey     string        `env:"SHARDCORE_CATALOG_S3_KEY"`
	ReportURL      string        `env:"SHARDCORE_REPORT_URL"`
	NATSURL        string        `env:"SHARDCORE_NATS_URL"`
	ArchivePath    string        `env:"SHARDCORE_ARCHIVE_PATH"`
	HealthInterval time.Duration `env:"SHARDCORE_HEALTH_INTERVAL" envDefault:"30s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.ShardID, "shard-id", cfg.ShardID, "Shard identifier (generated when empty)")
	fs.IntVar(&cfg.MaxPlayers, "max-players", cfg.MaxPlayers, "Maximum live connections")
	fs.BoolVar(&cfg.FleetManaged, "fleet-managed", cfg.FleetManaged, "Require matchmaking reservations on connect")
	fs.StringVar(&cfg.CatalogFile, "catalog-file", cfg.CatalogFile, "Path to the reward catalog document")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the shard admission runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	shardID := cfg.ShardID
	if shardID == "" {
		generated, err := id.NewID()
		if err != nil {
			return err
		}
		shardID = generated
	}

	ledger := rewards.NewLedger()
	if src := catalogSource(ctx, cfg); src != nil {
		// A failed load leaves the ledger degraded; grants are refused but
		// the shard still serves players.
		if err := ledger.Load(ctx, src); err != nil {
			log.Printf("server: reward catalog unavailable, grants disabled: %v", err)
		}
	} else {
		log.Printf("server: no reward catalog source configured, grants disabled")
	}

	reporter, closeReporters, err := buildReporter(cfg)
	if err != nil {
		return err
	}
	defer closeReporters()

	registry := session.NewRegistry()
	validator := token.NewValidator(token.Config{
		Issuer:   cfg.TokenIssuer,
		Audience: cfg.TokenAudience,
	}, nil)
	manager := fleet.NewMockManager()

	controller := admission.NewController(admission.Config{
		ShardID:      shardID,
		MaxPlayers:   cfg.MaxPlayers,
		FleetManaged: cfg.FleetManaged,
	}, validator, registry, ledger, manager, admission.NewCloser(registry, reporter))

	ticker := health.NewTicker(cfg.HealthInterval, controller.Snapshot, manager)
	go ticker.Run(ctx)

	log.Printf("server: shard %s ready, capacity %d, fleet managed %t",
		shardID, cfg.MaxPlayers, cfg.FleetManaged)

	<-ctx.Done()
	log.Printf("server: shutting down shard %s", shardID)
	return nil
}

// catalogSource picks the catalog source from config: a local file when set,
// otherwise S3 when a bucket and key are configured.
func catalogSource(ctx context.Context, cfg Config) rewards.Source {
	if cfg.CatalogFile != "" {
		return source.File{Path: cfg.CatalogFile}
	}
	if cfg.CatalogBucket != "" && cfg.CatalogKey != "" {
		src, err := source.NewS3FromEnv(ctx)
		if err != nil {
			log.Printf("server: s3 catalog source: %v", err)
			return nil
		}
		return src
	}
	return nil
}

// buildReporter assembles the reporting fan-out from config. With nothing
// configured the mock log reporter stands in so summaries are never silently
// dropped.
func buildReporter(cfg Config) (report.Reporter, func(), error) {
	var reporters report.Multi
	var closers []func()

	if cfg.ReportURL != "" {
		reporters = append(reporters, httpapi.NewClient(cfg.ReportURL))
	}
	if cfg.NATSURL != "" {
		pub, err := natsbus.Connect(cfg.NATSURL)
		if err != nil {
			// Best-effort boundary: a missing broker degrades reporting, it
			// does not stop the shard.
			log.Printf("server: nats reporter unavailable: %v", err)
		} else {
			reporters = append(reporters, pub)
			closers = append(closers, pub.Close)
		}
	}
	if cfg.ArchivePath != "" {
		sink, err := reportsqlite.Open(cfg.ArchivePath)
		if err != nil {
			return nil, nil, err
		}
		reporters = append(reporters, sink)
		closers = append(closers, func() {
			if err := sink.Close(); err != nil {
				log.Printf("server: close archive: %v", err)
			}
		})
	}
	if len(reporters) == 0 {
		log.Printf("server: no reporting endpoint configured, using log reporter")
		reporters = append(reporters, report.LogReporter{})
	}

	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}
	return reporters, closeAll, nil
}
