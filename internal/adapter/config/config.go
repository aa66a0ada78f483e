package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Database *Database
	Bus      *Bus
	HTTP     *HTTP
	App      *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

// Bus configures the message transport and the request/reply subjects.
type Bus struct {
	Brokers        string        `env:"BUS_BROKERS"`
	GroupID        string        `env:"BUS_GROUP" envDefault:"orders-ms"`
	ReplyTopic     string        `env:"BUS_REPLY_TOPIC" envDefault:"orders.reply"`
	RequestTimeout time.Duration `env:"BUS_REQUEST_TIMEOUT" envDefault:"5s"`

	CatalogSubject string `env:"CATALOG_SUBJECT" envDefault:"product.validate"`
	PaymentSubject string `env:"PAYMENT_SUBJECT" envDefault:"payment.session.create"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

func NewConfig() (*Config, error) {
	// Missing .env is fine, real deployments set the environment.
	_ = godotenv.Load()

	var db Database
	var bus Bus
	var http HTTP
	var app App

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&bus.Brokers, "b", `localhost:9092`, "Bus broker list (csv)")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "Health/metrics HTTP endpoint")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&bus)
	if err != nil {
		return nil, fmt.Errorf("error parsing bus config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}

	config := Config{
		Database: &db,
		Bus:      &bus,
		HTTP:     &http,
		App:      &app,
	}

	return &config, nil
}
