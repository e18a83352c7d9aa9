package main

import (
	"context"
	"flag"
	"time"

	"github.com/blog-comments-api/internal/config"
	"github.com/blog-comments-api/internal/database"
	"github.com/blog-comments-api/internal/repository"
	"github.com/blog-comments-api/pkg/logger"
	"github.com/jaswdr/faker"
)

func main() {
	count := flag.Int("n", 200, "number of comments to insert")
	posts := flag.Int("posts", 5, "number of distinct post slugs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(config.LogConfig{Level: "info"})
		bootLog.Fatal().Err(err).Msg("seed: can't load configuration")
	}
	log := logger.New(cfg.Log)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("seed: can't connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("seed: can't run migrations")
	}

	repos := repository.New(db)
	g := newGenerator(faker.New())
	slugs := g.slugs(*posts)
	comments := g.comments(*count, slugs, time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	inserted, err := repos.Comment.BatchInsert(ctx, comments)
	if err != nil {
		log.Fatal().Err(err).Msg("seed: can't insert comments")
	}

	log.Info().
		Int("inserted", inserted).
		Strs("slugs", slugs).
		Msg("Seed completed")
}
