package config

import "os"

func loadProductionConfig(cfg *Config) {
	cfg.DatabaseFilePath = "/data/rodoku.sqlite"
	cfg.ServerHost = "0.0.0.0"

	if url := os.Getenv("FRONTEND_URL"); url != "" {
		cfg.FrontendURL = url
	}
}
