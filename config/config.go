/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/wacul/ptr"
)

const (
	DEFAULT_PORT            = "5001"
	DEFAULT_DATA_SOURCE     = "users.json"
	DEFAULT_CURRENCY_SYMBOL = "₹"
	DEFAULT_REDIS_KEY       = "teller:ledger"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"TELLER_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"TELLER_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"TELLER_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"TELLER_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"TELLER_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"TELLER_SERVER_PORT"`
}

// DataSourceConfig selects the ledger store. Dns is a file path or a URL whose
// scheme names the backend (file, postgres, sqlite, mysql, redis, memory).
type DataSourceConfig struct {
	Dns      string `json:"dns" envconfig:"TELLER_DATA_SOURCE_DNS"`
	RedisKey string `json:"redis_key" envconfig:"TELLER_DATA_SOURCE_REDIS_KEY"`
}

type CurrencyConfig struct {
	Symbol string `json:"symbol" envconfig:"TELLER_CURRENCY_SYMBOL"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"TELLER_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"TELLER_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"TELLER_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"TELLER_SLACK_WEBHOOK_URL"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type TelemetryConfig struct {
	Enabled  bool   `json:"enabled" envconfig:"TELLER_TELEMETRY_ENABLED"`
	Endpoint string `json:"endpoint" envconfig:"TELLER_TELEMETRY_ENDPOINT"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"TELLER_PROJECT_NAME"`
	LogLevel     string           `json:"log_level" envconfig:"TELLER_LOG_LEVEL"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Currency     CurrencyConfig   `json:"currency"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
	Telemetry    TelemetryConfig  `json:"telemetry"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("teller", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return nil
}

// loadEnvFile exports the variables of a dotenv file into the process
// environment. A missing file is not an error.
func loadEnvFile(file string) error {
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(file)
}

func InitConfig(configFile string) error {
	logger()
	if err := loadEnvFile(".env"); err != nil {
		return err
	}
	err := loadConfigFromFile(configFile)
	if err != nil {
		return err
	}
	cnf, _ := Fetch()
	if level, err := logrus.ParseLevel(cnf.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	return nil
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called teller.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.LogLevel = strings.TrimSpace(cnf.LogLevel)

	if cnf.ProjectName == "" {
		cnf.ProjectName = "Teller"
	}

	if cnf.DataSource.Dns == "" {
		log.Printf("Warning: Data source not specified. Using %s", DEFAULT_DATA_SOURCE)
		cnf.DataSource.Dns = DEFAULT_DATA_SOURCE
	}

	if cnf.DataSource.RedisKey == "" {
		cnf.DataSource.RedisKey = DEFAULT_REDIS_KEY
	}

	if cnf.Currency.Symbol == "" {
		cnf.Currency.Symbol = DEFAULT_CURRENCY_SYMBOL
	}

	if cnf.LogLevel == "" {
		cnf.LogLevel = "info"
	}
	if _, err := logrus.ParseLevel(cnf.LogLevel); err != nil {
		return errors.New("log level must be one of panic, fatal, error, warn, info, debug, trace")
	}

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
	}

	if cnf.Server.Secure && cnf.Server.SecretKey == "" {
		return errors.New("secret key is required when server.secure is enabled")
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		cnf.RateLimit.Burst = ptr.Int(2 * int(*cnf.RateLimit.RequestsPerSecond))
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", *cnf.RateLimit.Burst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		cnf.RateLimit.RequestsPerSecond = ptr.Float64(float64(*cnf.RateLimit.Burst) / 2)
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", *cnf.RateLimit.RequestsPerSecond)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		cnf.RateLimit.CleanupIntervalSec = ptr.Int(10800) // 3 hours
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
