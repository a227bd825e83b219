package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/internal/collaborators/anthropic"
	"github.com/ternarybob/ndk/internal/common"
	"github.com/ternarybob/ndk/internal/config"
	"github.com/ternarybob/ndk/internal/connectors/github"
	"github.com/ternarybob/ndk/internal/executor"
	"github.com/ternarybob/ndk/internal/history"
)

// cmd/ndk-mcp is a thin, illustrative MCP transport over the query
// executor: it exposes resources/load, resources/observe and
// resources/attachment (§6.2) as MCP tools. Transport is explicitly out of
// scope for the core (spec.md's Non-goals); this binary exists only to
// give the core a concrete consumer the way cmd/quaero-mcp does for the
// teacher's search/connector services.
func main() {
	configPath := os.Getenv("NDK_CONFIG")
	if configPath == "" {
		configPath = "ndk.toml"
	}

	cfg, err := common.LoadFromFiles(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn") // minimal logging to avoid cluttering MCP stdio

	tunables := config.DefaultTunables()
	if tunablesPath := os.Getenv("NDK_TUNABLES"); tunablesPath != "" {
		tunables, err = config.LoadTunables(tunablesPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load tunables")
		}
	}

	db, err := history.NewBadgerDB(logger, history.BadgerConfig{
		Path:           cfg.Storage.Badger.Path,
		ResetOnStartup: cfg.Storage.Badger.ResetOnStartup,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open history database")
	}
	defer db.Close()

	store := history.NewStore(history.NewBadgerStore(db))

	var connectors []collaborators.Connector
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		conn, err := github.NewConnector(token)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build github connector")
		}
		connectors = append(connectors, conn)
	} else {
		logger.Warn().Msg("GITHUB_TOKEN not set - the github realm will be unavailable")
	}

	var inference collaborators.Inference
	if cfg.Claude.APIKey != "" {
		inference, err = anthropic.NewService(anthropic.Config{
			APIKey:         cfg.Claude.APIKey,
			Model:          cfg.Claude.Model,
			Timeout:        cfg.ClaudeRequestTimeout(),
			MaxTokens:      cfg.Claude.MaxTokens,
			Temperature:    cfg.Claude.Temperature,
			RetryDelaySecs: tunables.RetryDelaySecs,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build anthropic inference collaborator")
		}
	} else {
		logger.Warn().Msg("no claude api key configured - labels will not be generated")
	}

	exec := executor.NewExecutor(connectors, store, inference, tunables, logger)

	mcpServer := server.NewMCPServer(
		"ndk",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createResourcesLoadTool(), handleResourcesLoad(exec, logger))
	mcpServer.AddTool(createResourcesObserveTool(), handleResourcesObserve(exec, logger))
	mcpServer.AddTool(createResourcesAttachTool(), handleResourcesAttach(exec, logger))

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
