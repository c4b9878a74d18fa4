package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/ocf/pkg/config"
)

// newRootCommand builds the command tree. Every flag is bound to viper, so it
// can also be given as an OCF_ environment variable: --page-size is
// OCF_PAGE_SIZE.
func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("OCF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "ocf",
		Short: "Browse and export the assets of a property server",
		Long: `ocf connects to a property server, loads an asset and pages through the
elements attached to it: comments, tags, ratings, schema attributes and more.

Configuration comes from a YAML file (--config), overridden by flags and
OCF_ environment variables.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a YAML configuration file")
	pf.String("backend", "", "Property server backend (see 'ocf backends')")
	pf.String("url", "", "Base URL of a rest property server")
	pf.String("dsn", "", "Connection string of a database backend")
	pf.String("database", "", "MongoDB database name")
	pf.String("fixture", "", "JSON fixture loaded into the memory backend")
	pf.Duration("timeout", 0, "Timeout of every property server call")
	pf.Int("page-size", 0, "Elements fetched per page")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("log-encoding", "", "Log encoding (json, console)")
	pf.Bool("tracing", false, "Print trace spans to stdout")
	_ = v.BindPFlags(pf)

	root.AddCommand(
		newVersionCommand(),
		newBackendsCommand(),
		newAssetCommand(v),
		newBrowseCommand(v),
		newExportCommand(v),
		newServeCommand(v),
	)
	return root
}

// loadConfig reads the configuration file, if any, and applies the flags and
// environment variables that were set explicitly.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	setString(v, "backend", &cfg.PropertyServer.Type)
	setString(v, "url", &cfg.PropertyServer.URL)
	setString(v, "dsn", &cfg.PropertyServer.DSN)
	setString(v, "database", &cfg.PropertyServer.Database)
	setString(v, "fixture", &cfg.PropertyServer.Fixture)
	if v.IsSet("timeout") {
		cfg.PropertyServer.Timeout = v.GetDuration("timeout")
	}
	if v.IsSet("page-size") {
		cfg.Paging.MaxCacheSize = v.GetInt("page-size")
	}
	setString(v, "log-level", &cfg.Observability.LogLevel)
	setString(v, "log-encoding", &cfg.Observability.LogEncoding)
	if v.IsSet("tracing") {
		cfg.Observability.EnableTracing = v.GetBool("tracing")
	}

	setString(v, "sink", &cfg.Export.Sink)
	setString(v, "path", &cfg.Export.Path)
	setString(v, "bucket", &cfg.Export.Bucket)
	setString(v, "prefix", &cfg.Export.Prefix)
	setString(v, "region", &cfg.Export.Region)
	setString(v, "endpoint", &cfg.Export.Endpoint)
	setString(v, "compression", &cfg.Export.Compression)
	setString(v, "listen", &cfg.Observability.MetricsAddress)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}
