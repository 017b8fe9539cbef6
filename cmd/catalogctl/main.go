// Command catalogctl is the admin tool for the catalog: password hashing,
// migrations, token minting and ad-hoc item queries.
package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"gocatalog/internal/common"
	"gocatalog/internal/config"
)

type globalOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Enable debug logging"`
}

func newParser(opts *globalOptions, cfg func() *config.Config) *flags.Parser {
	parser := flags.NewParser(opts, flags.Default)

	parser.AddCommand("hash-password", "Print a bcrypt hash",
		"Hashes the given password for use as APP_PASSWORD_HASH.", &hashPasswordCommand{})
	parser.AddCommand("migrate", "Apply database migrations",
		"Runs every pending schema migration against POSTGRES_*.", &migrateCommand{cfg: cfg})
	parser.AddCommand("token", "Issue a session token",
		"Mints a session token with JWT_SECRET, skipping the password login.", &tokenCommand{cfg: cfg})
	parser.AddCommand("items", "Query items",
		"Runs a catalog listing query and prints the result as JSON.", &itemsCommand{cfg: cfg})

	parser.CommandHandler = func(command flags.Commander, args []string) error {
		level := "warn"
		if opts.Verbose {
			level = "debug"
		}
		common.SetupLogger(level, "text", "stderr")
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}
	return parser
}

func main() {
	var opts globalOptions
	parser := newParser(&opts, config.LoadConfig)

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		logrus.WithError(err).Debug("command failed")
		os.Exit(1)
	}
}
