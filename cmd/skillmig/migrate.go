package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datadrivenconstruction/skillmig/pkg/migrate"
	"github.com/datadrivenconstruction/skillmig/pkg/presenter"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [root]",
	Short: "Migrate every skill under the root",
	Long: `Discover every SKILL.md under the root and migrate it. Each skill is reported
as OK, SKIP or ERROR, followed by a tally. A failing skill never stops the run.

Examples:
  skillmig migrate ./skills
  skillmig migrate --dry-run --only 'cwicr-*'
  SKILLMIG_WORKERS=8 skillmig migrate`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if code := runMigrate(ctx, viper.GetViper(), presenter.Default(), args); code != 0 {
			_ = shutdownTracing(cmd.Context())
			os.Exit(code)
		}
	},
}

func addMigrateFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.Bool("dry-run", false, "Print the header diff and the files that would be created without writing")
	flags.IntP("workers", "w", 1, "Number of skills processed concurrently (0 uses every CPU)")
	flags.Bool("fail-on-error", false, "Exit with status 1 when any skill fails")

	viper.BindPFlag("dry_run", flags.Lookup("dry-run"))
	viper.BindPFlag("workers", flags.Lookup("workers"))
	viper.BindPFlag("fail_on_error", flags.Lookup("fail-on-error"))
}

// runMigrate performs a migration run and returns the process exit code
func runMigrate(ctx context.Context, v *viper.Viper, p presenter.Presenter, args []string) int {
	cfg, err := loadConfig(v, args)
	if err != nil {
		p.Error(err, "Invalid configuration")
		return 1
	}
	p.SetQuiet(cfg.Quiet)

	discovery, err := newDiscovery(cfg)
	if err != nil {
		p.Error(err, "Failed to set up skill discovery")
		return 1
	}
	found, err := discovery.Discover()
	if err != nil {
		p.Error(err, "Failed to discover skills")
		return 1
	}

	m, err := newMigrator(cfg)
	if err != nil {
		p.Error(err, "Failed to load keyword tables")
		return 1
	}

	if cfg.DryRun {
		p.Warning("Dry run: no files will be written")
	}
	p.Info(fmt.Sprintf("Found %d skills total", len(found)))
	p.Rule()

	report, runErr := m.Run(ctx, found)
	for _, res := range report.Results {
		p.Line(lineStatus(res.Outcome), res.Line())
		if report.DryRun && res.Outcome == migrate.Updated {
			p.Diff(res.Diff)
			if len(res.Created) > 0 {
				p.Info("  would create: " + strings.Join(res.Created, ", "))
			}
		}
	}

	p.Rule()
	updated, skipped, failed := report.Counts()
	p.Summary(presenter.Summary{Updated: updated, Skipped: skipped, Errors: failed})

	if runErr != nil {
		p.Error(runErr, "Migration interrupted")
		return 1
	}
	if failed > 0 && cfg.FailOnError {
		p.Error(report.Err(), "Migration failed")
		return 1
	}
	return 0
}

func lineStatus(o migrate.Outcome) presenter.Status {
	switch o {
	case migrate.Updated:
		return presenter.StatusOK
	case migrate.SkippedNoHeader, migrate.SkippedMigrated:
		return presenter.StatusSkip
	default:
		return presenter.StatusError
	}
}
