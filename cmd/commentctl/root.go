package main

import (
	"os"

	"github.com/blog-comments-api/internal/client"
	"github.com/blog-comments-api/internal/config"
	"github.com/blog-comments-api/pkg/logger"
	"github.com/spf13/cobra"
)

type options struct {
	apiURL   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "commentctl",
		Short: "commentctl - Blog Comments command line client",
		Long: `commentctl reads and posts blog comments through the comments API,
and manages the database schema.

Use "commentctl [command] --help" to see the flags of a command.`,
		SilenceUsage: true,
	}

	defaultURL := os.Getenv("COMMENTS_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", defaultURL, "comments API base URL")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newPostCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	return root
}

func (o *options) consumer() *client.Consumer {
	log := logger.NewWithWriter(config.LogConfig{Level: o.logLevel, Format: "pretty"}, os.Stderr)
	return client.NewConsumer(client.NewClient(o.apiURL), log)
}
