// Package cli implements the herocatalog commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"HeroCatalog/internal/config"
	"HeroCatalog/pkg/kit"
)

const service = "catalog"

// app carries what every command needs once flags and config are resolved.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
}

// NewRootCmd builds a fresh command tree. Running it without a subcommand
// serves the HTTP API.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:           "herocatalog",
		Short:         "Superhero catalog service",
		Long:          "A superhero catalog with simulated latency, a debounced search view and an HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (yaml); HEROCAT_* env vars override it")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("seed", "builtin", "seed source: builtin, yaml or sql")
	pf.String("seed-path", "", "yaml seed file")
	pf.String("seed-driver", "sqlite", "sql seed driver: pgx or sqlite")
	pf.String("seed-dsn", "", "sql seed data source name")
	a.bind(pf.Lookup("log-level"), "log_level")
	a.bind(pf.Lookup("seed"), "seed.source")
	a.bind(pf.Lookup("seed-path"), "seed.path")
	a.bind(pf.Lookup("seed-driver"), "seed.driver")
	a.bind(pf.Lookup("seed-dsn"), "seed.dsn")

	serve := newServeCmd(a)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newBrowseCmd(a), newTokenCmd(a))
	return root
}

// Execute runs the command tree until ctx is cancelled or the command ends.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) load() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = kit.NewLogger(service, cfg.LogLevel)
	return nil
}
