package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thornmill/relabel/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupToken extracts a session token from a browser cURL command.
//
// The photo server's session token never leaves the browser on its own; the
// capture path is "Copy as cURL" on any authenticated request in DevTools.
func (r *Runner) SetupToken(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	outputPath := cmd.String("output")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	r.logger.Info("parsing cURL command for session token")

	var curlHeaders *shared.CurlHeaders
	var raw []byte
	var err error

	if curlFile != "" {
		raw, err = os.ReadFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to read cURL file: %w", err)
		}
	} else {
		raw = []byte(curlCmd)
	}

	curlHeaders, err = shared.ParseCurlCommand(raw)
	if err != nil {
		return fmt.Errorf("failed to parse cURL command: %w", err)
	}

	token, err := curlHeaders.SessionToken()
	if err != nil {
		return err
	}

	r.logger.Info("session token extracted", "length", len(token))

	if outputPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		outputPath = filepath.Join(homeDir, ".relabel", "headers.sh")
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, raw, 0600); err != nil {
		return fmt.Errorf("failed to save headers: %w", err)
	}

	r.logger.Info("headers saved", "path", outputPath)

	r.writePlain("✓ Session token extracted and headers saved\n")
	r.writePlain("Headers saved to: %s\n", outputPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Update config.toml with: server.headers_path = %q\n", outputPath)
	r.writePlain("2. Run 'relabel labels all' to verify the connection\n")

	return nil
}
