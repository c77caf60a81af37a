package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/edutalksorg/liveclass/internal/data"
)

type application struct {
	logger *log.Logger
	config config
	pool   *pgxpool.Pool
	models *data.Models
	hub    *Hub
}

type config struct {
	port string
	dsn  string
	cors struct {
		allowedOrigins []string
	}
	media struct {
		key    string
		secret string
	}
}

func main() {
	// Missing .env is fine; flags and real env vars still apply.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Println("loading .env:", err)
	}

	var cfg config
	parseFlags(&cfg)

	logger := log.New(os.Stdout, "", log.Ldate|log.Ltime)

	pool, err := getPool(context.Background(), cfg.dsn)
	if err != nil {
		logger.Fatal(err)
	}

	models := data.NewModels(pool)
	app := application{
		logger: logger,
		config: cfg,
		pool:   pool,
		models: models,
		hub:    NewHub(logger, models),
	}

	server := &http.Server{
		Handler:      app.routes(),
		Addr:         fmt.Sprintf(":%s", cfg.port),
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	go app.hub.run()
	logger.Printf("server starting at port %s", cfg.port)
	err = server.ListenAndServe()
	logger.Fatal(err)
}

func getPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)
	if err != nil {
		return nil, err
	}

	return pool, nil
}

func parseFlags(cfg *config) {
	flag.StringVar(&cfg.port, "port", "6969", "API server port")
	flag.StringVar(&cfg.dsn, "dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN")

	flag.StringVar(&cfg.media.key, "media-key", os.Getenv("MEDIA_API_KEY"), "Media token signing key id")
	flag.StringVar(&cfg.media.secret, "media-secret", os.Getenv("MEDIA_API_SECRET"), "Media token signing secret")

	cfg.cors.allowedOrigins = []string{"http://localhost:3000"}
	flag.Func("allowed-origins", "A list of allowed origins", func(s string) error {
		cfg.cors.allowedOrigins = strings.Split(s, " ")
		return nil
	})

	flag.Parse()
}
