package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datadrivenconstruction/skillmig/pkg/config"
	"github.com/datadrivenconstruction/skillmig/pkg/keywords"
	"github.com/datadrivenconstruction/skillmig/pkg/logger"
	"github.com/datadrivenconstruction/skillmig/pkg/migrate"
	"github.com/datadrivenconstruction/skillmig/pkg/skills"
)

var configFile string

func initConfig() {
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME/.skillmig")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "failed to read config: %s\n", err)
			os.Exit(1)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "skillmig [root]",
	Short: "Migrate skill directories to the openclaw 2.0 format",
	Long: `skillmig walks a tree of skill directories and migrates every SKILL.md it
finds: the header is rewritten with a homepage and an openclaw metadata record,
and claw.json and instructions.md are created when missing.

Skills whose header already has a homepage are skipped, so the command can be
run repeatedly. Running without a subcommand is the same as "skillmig migrate".`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Configure(viper.GetString("log_level"), viper.GetString("log_format")); err != nil {
			return errors.Wrap(err, "invalid log level")
		}
		shutdown, err := initTracing(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "failed to initialize tracing")
		}
		tracingShutdown = shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		return shutdownTracing(cmd.Context())
	},
	Run: func(cmd *cobra.Command, args []string) {
		migrateCmd.Run(cmd, args)
	},
}

// loadConfig decodes the effective configuration, letting a positional
// argument override the root
func loadConfig(v *viper.Viper, args []string) (config.Config, error) {
	if len(args) > 0 {
		v.Set("root", args[0])
	}
	return config.Load(v)
}

func newDiscovery(cfg config.Config) (*skills.Discovery, error) {
	return skills.NewDiscovery(cfg.Root,
		skills.WithInclude(cfg.Include...),
		skills.WithExclude(cfg.Exclude...),
		skills.WithNameFilter(cfg.Only...),
	)
}

func newMigrator(cfg config.Config) (*migrate.Migrator, error) {
	tables, err := keywords.Load(cfg.Tables)
	if err != nil {
		return nil, err
	}
	return migrate.New(tables,
		migrate.WithHomepage(cfg.Homepage),
		migrate.WithManifestSettings(cfg.ManifestSettings()),
		migrate.WithDryRun(cfg.DryRun),
		migrate.WithWorkers(cfg.Workers),
	)
}

func main() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default $HOME/.skillmig/config.yaml or ./config.yaml)")
	flags.String("root", ".", "Root directory containing the skill tree")
	flags.String("homepage", "", "Homepage written into every header")
	flags.String("tables", "", "YAML file replacing the built-in keyword tables")
	flags.StringSlice("include", skills.DefaultInclude, "Glob patterns selecting SKILL.md files, relative to the root")
	flags.StringSlice("exclude", skills.DefaultExclude, "Glob patterns of SKILL.md files to ignore")
	flags.StringSlice("only", nil, "Only process skills whose directory name matches one of these globs")
	flags.String("log-level", "info", "Log level (panic, fatal, error, warn, info, debug, trace)")
	flags.String("log-format", "fmt", "Log format (fmt, json)")
	flags.BoolP("quiet", "q", false, "Only print errors")

	viper.BindPFlag("root", flags.Lookup("root"))
	viper.BindPFlag("homepage", flags.Lookup("homepage"))
	viper.BindPFlag("tables", flags.Lookup("tables"))
	viper.BindPFlag("include", flags.Lookup("include"))
	viper.BindPFlag("exclude", flags.Lookup("exclude"))
	viper.BindPFlag("only", flags.Lookup("only"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("quiet", flags.Lookup("quiet"))

	addMigrateFlags(rootCmd)

	rootCmd.AddCommand(withTracing(migrateCmd))
	rootCmd.AddCommand(withTracing(verifyCmd))
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
