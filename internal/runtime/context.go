// Package runtime provides application runtime context for Ontime.
package runtime

import (
	"os"

	"github.com/nvoss/ontime/internal/dispatch"
	"github.com/nvoss/ontime/internal/output"
	"github.com/nvoss/ontime/internal/storage"
	"github.com/nvoss/ontime/internal/substrate"
	"github.com/nvoss/ontime/internal/traffic"
)

// EnvDatabase overrides the database path; ":memory:" selects an
// in-memory database.
const EnvDatabase = "ONTIME_DATABASE"

// Context holds the application runtime context.
type Context struct {
	DB        *storage.DB
	Formatter *output.Formatter

	// Repositories
	TripRepo    *storage.TripRepo
	AlertRepo   *storage.AlertRepo
	WebhookRepo *storage.WebhookRepo

	// Scheduling engine
	Substrate  dispatch.Substrate
	Dispatcher *dispatch.Dispatcher
	Adjuster   *traffic.Adjuster

	// Debug mode
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	DBPath    string
	InMemory  bool
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		DBPath:    storage.DefaultPath(),
		InMemory:  false,
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
		Debug:     false,
	}
}

// New creates a new runtime context.
func New(opts Options) (*Context, error) {
	// Check for environment variable override
	if envPath := os.Getenv(EnvDatabase); envPath != "" {
		if envPath == ":memory:" {
			opts.InMemory = true
		} else {
			opts.DBPath = envPath
		}
	}

	db, err := storage.Open(storage.Options{
		Path:     opts.DBPath,
		InMemory: opts.InMemory,
	})
	if err != nil {
		return nil, err
	}

	tripRepo := storage.NewTripRepo(db)
	alertRepo := storage.NewAlertRepo(db)
	webhookRepo := storage.NewWebhookRepo(db)

	sub := substrate.NewLocal(alertRepo)
	dispatcher := dispatch.NewDispatcher(sub, tripRepo)
	adjuster := traffic.NewAdjuster(traffic.NewHTTPProvider(), tripRepo)

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	return &Context{
		DB:          db,
		Formatter:   formatter,
		TripRepo:    tripRepo,
		AlertRepo:   alertRepo,
		WebhookRepo: webhookRepo,
		Substrate:   sub,
		Dispatcher:  dispatcher,
		Adjuster:    adjuster,
		Debug:       opts.Debug,
	}, nil
}

// Close closes the runtime context. Closing twice is a no-op so a
// command can release the database early (e.g. before spawning the
// daemon) without tripping the deferred close.
func (c *Context) Close() error {
	if c.DB != nil {
		err := c.DB.Close()
		c.DB = nil
		return err
	}
	return nil
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}

// Debugf prints debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...interface{}) {
	if c.Debug {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}
