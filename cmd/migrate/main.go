// Command migrate applies the embedded schema migrations.
//
//	migrate            apply pending migrations
//	migrate -force N   mark version N as clean first, then apply
package main

import (
	"flag"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"provider-booking-api/internal/store"
	"provider-booking-api/pkg/logging"
)

// only what migrations need; the server's JWT secret is not required here
type migrateConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	force := flag.Int("force", -1, "force schema version before migrating")
	flag.Parse()

	_ = godotenv.Load()
	var cfg migrateConfig
	if err := env.Parse(&cfg); err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(cfg.LogLevel)

	if err := store.Migrate(cfg.DatabaseURL, *force); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	log.WithField("force", *force).Info("migrations applied")
}
