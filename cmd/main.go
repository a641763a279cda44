package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"wolfcafe/internal/handler"
	"wolfcafe/internal/repositories"
	"wolfcafe/internal/service"
	"wolfcafe/pkg/database"
	"wolfcafe/pkg/envconfig"
	"wolfcafe/pkg/flags"
	"wolfcafe/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// Parse command-line flags
	flagConfig, err := flags.Parse(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return handler.ExitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n\n", err)
		flags.Usage(stderr)
		return handler.ExitUsage
	}
	if flagConfig.Help {
		flags.Usage(stdout)
		return handler.ExitOK
	}

	envErr := envconfig.LoadEnvFile(flagConfig.EnvFile)

	appLogger := logger.New(envconfig.LoadLoggerConfig())
	defer appLogger.Close()

	switch {
	case envErr == nil:
		appLogger.Debug("Environment file loaded", "path", flagConfig.EnvFile)
	case errors.Is(envErr, fs.ErrNotExist):
		appLogger.Debug("No environment file, using process environment", "path", flagConfig.EnvFile)
	default:
		appLogger.Warn("Failed to load environment file", "path", flagConfig.EnvFile, "error", envErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagConfig.Timeout)
	defer cancel()

	taxRate, err := envconfig.LoadDefaultTaxRate()
	if err != nil {
		appLogger.Error("Invalid configuration", "error", err)
		handler.WriteError(stderr, err)
		return handler.ExitUsage
	}

	backend, err := envconfig.LoadStorageBackend()
	if err != nil {
		appLogger.Error("Invalid configuration", "error", err)
		handler.WriteError(stderr, err)
		return handler.ExitUsage
	}

	var (
		store repositories.Store
		users service.UserDirectory
		db    handler.Database
	)
	switch backend {
	case envconfig.StoragePostgres:
		conn, err := database.NewConnection(ctx, envconfig.LoadDatabaseConfig(), appLogger)
		if err != nil {
			handler.WriteError(stderr, err)
			return handler.ExitFailure
		}
		defer func() {
			if err := conn.Close(); err != nil {
				appLogger.Error("Failed to close database connection", "error", err)
			}
		}()
		pg := repositories.NewPostgresStore(conn, appLogger)
		store, users, db = pg, pg.Users(), conn
	case envconfig.StorageMemory:
		mem := repositories.NewMemoryStore()
		store, users = mem, mem.Users()
		appLogger.Warn("Using in-memory storage, nothing outlives this process")
	}

	inventoryService := service.NewInventoryService(store, taxRate, appLogger)
	services := handler.Services{
		Inventory: inventoryService,
		Menu:      service.NewMenuService(store, appLogger),
		Orders:    service.NewOrderService(store, inventoryService, users, appLogger),
		Reports:   service.NewAggregationService(repositories.NewAggregationRepository(store, appLogger), appLogger),
	}

	h := handler.New(services, db, stdin, stdout, appLogger)

	start := time.Now()
	err = h.Run(ctx, flagConfig.Args)
	appLogger.LogCommand(flagConfig.Args[0], start, err)
	if err != nil {
		handler.WriteError(stderr, err)
		return handler.ExitCode(err)
	}
	return handler.ExitOK
}
