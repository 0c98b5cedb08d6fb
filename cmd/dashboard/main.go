/*
 * Copyright 2025 Wirelark Labs.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wirelark/fortidash/pkg/config"
	"github.com/wirelark/fortidash/pkg/dashboard"
	"github.com/wirelark/fortidash/pkg/logger"
	"github.com/wirelark/fortidash/pkg/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/fortidash/dashboard.json", "Path to dashboard config file")
	envFile := flag.String("env-file", "", "Optional .env file with FORTIGATE_API_TOKEN and friends")
	flag.Parse()

	// A missing default .env is fine; an explicitly named one is not.
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", *envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg dashboard.Config

	cfgLoader := config.NewConfig(nil)
	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mainLogger, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	mainLogger.Info().
		Str("version", version.GetFullVersion()).
		Str("appliance", cfg.FortiGate.Host).
		Bool("configured", cfg.FortiGate.APIToken != "").
		Msg("Starting FortiDash dashboard")

	svc, err := dashboard.NewService(&cfg, version.GetVersion(), mainLogger)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("service exited: %w", err)
	}

	mainLogger.Info().Msg("Shutdown complete")

	return nil
}
