package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	// Config represents an application configuration.
	Config struct {
		// The data source name (DSN) for connecting to the database.
		DSN string `yaml:"dsn" env:"DATABASE_URI"`
		// Subconfigs.
		HTTPServer HTTPServer `yaml:"http_server"`
		JWT        JWT        `yaml:"jwt"`
		Logger     Logger     `yaml:"logger"`
		Reports    Reports    `yaml:"reports"`
		Export     Export     `yaml:"export"`
	}
	// Config for HTTP server.
	HTTPServer struct {
		// The server startup address.
		Address string `yaml:"run_address" env:"RUN_ADDRESS" env-default:"127.0.0.1:8080"`
		// Read Header Timeout in seconds.
		Timeout time.Duration `yaml:"timeout" env-default:"5s"`
		// Idle timeout in seconds.
		IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
		// Shutdown timeout in seconds.
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
	}
	// Config for application's logger.
	Logger struct {
		// Path to store log files. Stdout when empty.
		Path string `yaml:"path" env:"LOG_PATH"`
		// Application logging level.
		Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		// Log files details.
		MaxSizeMB  int `yaml:"max_size_mb" env-default:"100"`
		MaxBackups int `yaml:"max_backups" env-default:"3"`
		MaxAgeDays int `yaml:"max_age_days" env-default:"28"`
	}
	// Config for JWT.
	JWT struct {
		// JWT signing key shared with the token issuer.
		SigningKey string `yaml:"signing_key" env:"JWT_SIGNING_KEY"`
	}
	// Config for dashboards.
	Reports struct {
		// How far back the owner dashboard looks.
		DashboardWindow time.Duration `yaml:"dashboard_window" env-default:"720h"`
		// Number of most recent orders shown on dashboards.
		RecentOrders int `yaml:"recent_orders" env-default:"10"`
		// Number of best selling products shown on the dashboard.
		TopProducts int `yaml:"top_products" env-default:"5"`
		// Products with quantity below this value count as low stock.
		LowStockThreshold int `yaml:"low_stock_threshold" env-default:"5"`
	}
	// Config for report export.
	Export struct {
		// Minimum interval between export requests.
		RateInterval time.Duration `yaml:"rate_interval" env:"EXPORT_RATE_INTERVAL" env-default:"200ms"`
		// Export requests allowed in a burst.
		Burst int `yaml:"burst" env:"EXPORT_BURST" env-default:"5"`
		// Path to the wkhtmltopdf binary. Looked up in PATH when empty.
		WkhtmltopdfPath string `yaml:"wkhtmltopdf_path" env:"WKHTMLTOPDF_PATH"`
	}
)

// MustLoad returns an application configuration which is populated
// from the given configuration file, environment variables and flags.
func MustLoad() *Config {
	// Configuration yaml file path.
	configPath := flag.String("config", "./config/local.yml", "path to the config file")
	address := flag.String("a", "", "server startup address")
	dsn := flag.String("d", "", "server data source name")
	flag.Parse()

	// Check if file exists.
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", *configPath)
	}

	var cfg Config

	// Load from YAML cfg file and environment variables.
	if err := cleanenv.ReadConfig(*configPath, &cfg); err != nil {
		log.Fatalf("failed to read config %s: %v", *configPath, err)
	}

	// Flags have the final word.
	if *address != "" {
		cfg.HTTPServer.Address = *address
	}
	if *dsn != "" {
		cfg.DSN = *dsn
	}

	return &cfg
}
