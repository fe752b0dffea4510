// Command mcp-reminder provides an MCP server for compliance and renewal
// reminders.
//
// The server exposes tools for adding, listing, updating and deleting
// reminders, reading status statistics and running the auto-renewal scan
// against a SQLite database.
//
// Usage:
//
//	./mcp-reminder                        # Start MCP server (stdio)
//	./mcp-reminder --config path.yaml     # Use a specific config file
//	./mcp-reminder --help                 # Show help
//
// Environment:
//
//	REMINDER_DB_PATH  Path to SQLite database (default: ~/.reminder/reminders.db)
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/notexe/reminder-tracker/internal/config"
	"github.com/notexe/reminder-tracker/internal/logger"
	"github.com/notexe/reminder-tracker/internal/reminder"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to config file")
	flag.Usage = printHelp
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := logger.New("mcp-reminder", logger.Options{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Out:    os.Stderr,
	})

	if err := cfg.EnsureDatabaseDir(); err != nil {
		log.Fatal().Stack().Err(err).Msg("Failed to prepare database directory")
	}
	store, err := reminder.NewStore(cfg.Database.Path)
	if err != nil {
		log.Fatal().Stack().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer store.Close()

	engine := reminder.NewEngine(store, log)
	today := func() reminder.Date { return reminder.Today(time.Now, loc) }

	s := reminder.NewServer(store, engine, today)

	log.Info().Str("db", cfg.Database.Path).Msg("MCP reminder server starting")
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		log.Error().Stack().Err(err).Msg("Server error")
		store.Close()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - Compliance reminder tracking via MCP protocol

USAGE:
    mcp-reminder [--config FILE]   Start MCP server (communicates via stdio)
    mcp-reminder --help            Show this help

ENVIRONMENT:
    REMINDER_DB_PATH       Path to SQLite database file
                           Default: ~/.reminder/reminders.db
    REMINDER_TIMEZONE      Zone used to decide "today" (default: Local)
    REMINDER_LOG__LEVEL    debug, info, warn or error

TOOLS:
    add_reminder            Add a reminder (name, end_date, advance_days, auto_renew, ...)
    update_reminder         Update a reminder; omitted fields keep their value
    list_reminders          List reminders with status (optional status filter)
    get_stats               Count total, warning, expired and normal reminders
    get_upcoming_reminders  Reminders whose reminder window is open today
    run_renewal             Create successors for expired auto-renewing reminders
    delete_reminder         Delete a reminder permanently

CONFIGURATION:
    Add to your MCP client configuration:
    {
      "mcpServers": {
        "reminder": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
