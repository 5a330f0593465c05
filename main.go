package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/nonsonwune/scopequery/config"
	"github.com/nonsonwune/scopequery/handlers"
	"github.com/nonsonwune/scopequery/importer"
	"github.com/nonsonwune/scopequery/migrations"
	"github.com/nonsonwune/scopequery/nlquery"
)

func main() {
	serve := flag.Bool("serve", false, "serve the HTTP API instead of the interactive console")
	adminID := flag.String("admin", "", "admin ID to query as (console mode)")
	envFile := flag.String("env", ".env", "environment file to load")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	store, closeStore, err := loadStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}
	defer closeStore()
	log.Printf("Loaded %d student record(s) and %d admin profile(s)", len(store.Students()), len(store.Admins()))

	translator, closeTranslator, err := buildTranslator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up translator: %v", err)
	}
	defer closeTranslator()

	interpreter := nlquery.NewInterpreter(translator, nlquery.WithTimeout(cfg.QueryTimeout))
	engine := nlquery.NewNLQueryEngine(store, interpreter)

	if *serve {
		if !cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		router := handlers.NewRouter(handlers.NewAPIHandler(engine))
		log.Printf("Starting server on %s", cfg.HTTPAddr)
		if err := router.Run(cfg.HTTPAddr); err != nil {
			log.Fatalf("Failed to run server: %v", err)
		}
		return
	}

	console := newConsole(engine, os.Stdin)
	if err := console.run(ctx, *adminID); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

// loadStore reads the record set from the configured source. Any load error is fatal.
func loadStore(ctx context.Context, cfg *config.Config) (*importer.Store, func(), error) {
	if cfg.DataSource != config.SourcePostgres {
		cfg.Debugf("Reading records from %s and %s", cfg.StudentsPath, cfg.AdminsPath)
		store, err := importer.Load(ctx, importer.FileSource{
			StudentsPath: cfg.StudentsPath,
			AdminsPath:   cfg.AdminsPath,
		})
		return store, func() {}, err
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to database: %w", err)
	}
	closeDB := func() { db.Close() }

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := migrations.VerifySchema(ctx, db, importer.Tables()); err != nil {
		closeDB()
		return nil, nil, err
	}

	store, err := importer.Load(ctx, importer.DBSource{DB: db})
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return store, closeDB, nil
}

// buildTranslator picks Gemini or the offline rules and adds the Redis cache when
// REDIS_ADDR is set. An unreachable Redis disables the cache instead of failing.
func buildTranslator(ctx context.Context, cfg *config.Config) (nlquery.Translator, func(), error) {
	var (
		translator nlquery.Translator
		closers    []func()
	)

	switch cfg.Translator {
	case config.TranslatorGemini:
		gemini, err := nlquery.NewGeminiTranslator(nlquery.NewKeyManager(), cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		translator = gemini
		closers = append(closers, gemini.Close)
		log.Printf("Using Gemini translator (%s)", cfg.GeminiModel)
	default:
		translator = nlquery.NewRuleTranslator()
		log.Printf("Using offline rule translator")
	}

	if cfg.RedisAddr != "" {
		cache, err := nlquery.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			log.Printf("Warning: translation cache disabled: %v", err)
		} else {
			translator = nlquery.NewCachedTranslator(translator, cache, cfg.CacheTTL)
			closers = append(closers, func() { cache.Close() })
		}
	}

	return translator, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}
