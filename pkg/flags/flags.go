package flags

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// Config holds all command-line configuration
type Config struct {
	EnvFile string
	Timeout time.Duration
	Help    bool
	// Args are the positional arguments naming the command to run.
	Args []string
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		EnvFile: ".env",
		Timeout: 30 * time.Second,
	}
}

// Usage writes the command summary to w
func Usage(w io.Writer) {
	fmt.Fprintf(w, "Wolf Cafe ordering backend\n\n")
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  wolfcafe [--env-file <path>] [--timeout <duration>] <command> [args...]\n")
	fmt.Fprintf(w, "  wolfcafe --help\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  init                            Create the schema and the inventory.\n")
	fmt.Fprintf(w, "  health                          Check the storage backend.\n")
	fmt.Fprintf(w, "  inventory                       Show ingredient stock and tax rate.\n")
	fmt.Fprintf(w, "  inventory set <name=qty>...     Resync ingredients to absolute quantities.\n")
	fmt.Fprintf(w, "  inventory add <name> <delta>    Add to or take from one ingredient.\n")
	fmt.Fprintf(w, "  inventory history [limit]       Show recent stock movements.\n")
	fmt.Fprintf(w, "  tax [rate]                      Show or set the tax rate.\n")
	fmt.Fprintf(w, "  menu                            List menu items.\n")
	fmt.Fprintf(w, "  menu show <name>                Show one menu item.\n")
	fmt.Fprintf(w, "  menu add                        Add a menu item read as JSON from stdin.\n")
	fmt.Fprintf(w, "  menu update <id>                Replace a menu item read as JSON from stdin.\n")
	fmt.Fprintf(w, "  menu delete <id>                Delete a menu item no order uses.\n")
	fmt.Fprintf(w, "  orders                          List all orders.\n")
	fmt.Fprintf(w, "  orders today | on <date>        List orders placed on a day.\n")
	fmt.Fprintf(w, "  orders customer <id>            List a customer's orders.\n")
	fmt.Fprintf(w, "  order <id>                      Show one order.\n")
	fmt.Fprintf(w, "  order create                    Place an order read as JSON from stdin.\n")
	fmt.Fprintf(w, "  order status <id> <status>      Change an order's status.\n")
	fmt.Fprintf(w, "  order demand <id>               Show the ingredients an order needs.\n")
	fmt.Fprintf(w, "  order delete <id>               Delete an order.\n")
	fmt.Fprintf(w, "  report sales                    Sum completed orders.\n")
	fmt.Fprintf(w, "  report popular [limit]          Rank menu items by units sold.\n\n")
	fmt.Fprintf(w, "Options:\n")
	fmt.Fprintf(w, "  --env-file PATH   Environment file to load (default .env).\n")
	fmt.Fprintf(w, "  --timeout D       Deadline for the whole command (default 30s).\n")
	fmt.Fprintf(w, "  --help            Show this screen.\n")
}

// Parse parses command-line flags and returns configuration
func Parse(args []string, stderr io.Writer) (Config, error) {
	config := DefaultConfig()

	fs := flag.NewFlagSet("wolfcafe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&config.EnvFile, "env-file", config.EnvFile, "Environment file")
	fs.DurationVar(&config.Timeout, "timeout", config.Timeout, "Command deadline")
	fs.BoolVar(&config.Help, "help", false, "Show this screen")
	fs.Usage = func() { Usage(stderr) }

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	config.Args = fs.Args()

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate validates the parsed configuration
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if !c.Help && len(c.Args) == 0 {
		return fmt.Errorf("no command given")
	}
	return nil
}
