package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/GTDGit/gtd_search/internal/config"
	"github.com/GTDGit/gtd_search/internal/database"
	"github.com/GTDGit/gtd_search/internal/repository"
	"github.com/GTDGit/gtd_search/internal/search"
	"github.com/GTDGit/gtd_search/internal/seeder"
	"github.com/GTDGit/gtd_search/internal/service"
	"github.com/GTDGit/gtd_search/internal/utils"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("catalogctl failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "catalogctl",
		Usage: "Catalog maintenance for the search API",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply database migrations",
				Action: migrateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Migrations directory",
						Value: "migrations",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Import demo products from DummyJSON and webscraper.io",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "source",
						Usage: "Sources to import (dummyjson, webscraper)",
						Value: cli.NewStringSlice("dummyjson", "webscraper"),
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Delete existing products before importing",
						Value: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent product writes",
						Value: 8,
					},
					&cli.DurationFlag{
						Name:  "page-delay",
						Usage: "Delay between scraped pages",
						Value: time.Second,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Random seed for synthetic business signals",
						Value: time.Now().UnixNano(),
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Copy every product into the Elasticsearch index",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Products listed per page",
						Value: 200,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent index writes",
						Value: 4,
					},
				},
			},
			{
				Name:   "token",
				Usage:  "Mint an admin JWT for catalog write routes",
				Action: tokenCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "secret",
						Usage:    "HS256 signing secret",
						EnvVars:  []string{"JWT_SECRET"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "subject",
						Usage: "Token subject",
						Value: "catalog-admin",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime",
						Value: 24 * time.Hour,
					},
				},
			},
		},
	}
}

func migrateCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB, c.String("dir")); err != nil {
		return err
	}
	log.Info().Msg("migrations completed successfully")
	return nil
}

func seedCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	httpClient := seeder.NewHTTPClient(30*time.Second, 3)
	signals := seeder.NewSignals(c.Int64("seed"))

	var sources []seeder.Source
	for _, name := range c.StringSlice("source") {
		switch name {
		case "dummyjson":
			sources = append(sources, seeder.NewDummyJSONSource(httpClient, "", signals))
		case "webscraper":
			sources = append(sources, seeder.NewWebScraperSource(httpClient, nil, c.Duration("page-delay"), signals))
		default:
			return fmt.Errorf("unknown source %q", name)
		}
	}
	if len(sources) == 0 {
		return errors.New("no sources selected")
	}

	var indexer seeder.Indexer
	if cfg.Catalog.Elasticsearch.Enabled() {
		esCatalog, err := newElasticCatalog(c.Context, cfg)
		if err != nil {
			return err
		}
		indexer = esCatalog
	}

	summary, err := seeder.NewWriter(repository.NewProductRepository(db), indexer, c.Int("pool-size")).
		Seed(c.Context, sources, c.Bool("replace"))
	if err != nil {
		return err
	}

	log.Info().
		Int64("deleted", summary.Deleted).
		Int("inserted", summary.Inserted).
		Int("failed", summary.Failed).
		Interface("by_source", summary.BySource).
		Msg("Seeding completed")
	return nil
}

func reindexCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Catalog.Elasticsearch.Enabled() {
		return errors.New("ELASTICSEARCH_ADDRESSES is not set")
	}
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	esCatalog, err := newElasticCatalog(c.Context, cfg)
	if err != nil {
		return err
	}

	res, err := service.NewReindexService(repository.NewProductRepository(db), esCatalog, c.Int("batch-size"), c.Int("pool-size")).
		Reindex(c.Context)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d products failed to index", res.Failed)
	}
	return nil
}

func tokenCommand(c *cli.Context) error {
	token, err := utils.GenerateJWT(c.String("secret"), c.String("subject"), utils.RoleAdmin, c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}

func newElasticCatalog(ctx context.Context, cfg *config.Config) (*search.ElasticCatalog, error) {
	client, err := search.NewElasticsearch(cfg.Catalog.Elasticsearch)
	if err != nil {
		return nil, err
	}
	esCatalog := search.NewElasticCatalog(client, cfg.Catalog.Elasticsearch.Index)
	if err := esCatalog.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return esCatalog, nil
}
