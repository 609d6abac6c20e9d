// Package cli implements the popularity command line: serving the API,
// classifying a single repository and applying the database schema.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"repo-popularity/internal/config"
	"repo-popularity/internal/database"
	"repo-popularity/internal/logger"
	"repo-popularity/internal/server"
)

// NewRootCommand builds the popularity command tree. Command output goes to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "popularity",
		Short:         "Track GitHub repositories and classify their popularity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	newLogger := func(cfg *config.LogConfig) *logrus.Logger {
		log := logger.NewWithOutput(cfg, os.Stderr)
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
		return log
	}

	root.AddCommand(serveCommand(newLogger))
	root.AddCommand(checkCommand(newLogger))
	root.AddCommand(migrateCommand(newLogger))

	return root
}

type loggerFactory func(cfg *config.LogConfig) *logrus.Logger

func serveCommand(newLogger loggerFactory) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(&cfg.Log)

			if os.Getenv("GIN_MODE") == "" {
				gin.SetMode(gin.ReleaseMode)
			}

			srv, err := server.New(cfg, log)
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the database schema before serving")

	return cmd
}

func checkCommand(newLogger loggerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "check <owner/name | github url>",
		Short: "Classify one repository without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Read()
			if err := cfg.GitHub.Validate(); err != nil {
				return err
			}
			log := newLogger(&cfg.Log)

			svc, err := server.NewPopularityService(&cfg.GitHub, nil, server.NewDispatcher(log), log)
			if err != nil {
				return err
			}

			outcome, err := svc.ClassifyRepository(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", outcome.Status())
			if metrics, ok := outcome.Metrics(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "stars: %d\nforks: %d\nscore: %d\n", metrics.Stars, metrics.Forks, metrics.Score())
				fmt.Fprintf(cmd.OutOrStdout(), "result: %s\n", outcome.Message())
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "reason: %s\n", outcome.Message())
			return fmt.Errorf("classification failed with HTTP status %d", outcome.HTTPStatus())
		},
	}
}

func migrateCommand(newLogger loggerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Read()
			if cfg.Database.DSN == "" {
				return fmt.Errorf("DB_DSN is required")
			}
			log := newLogger(&cfg.Log)

			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info("schema applied")
			return nil
		},
	}
}
