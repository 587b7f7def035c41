package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datadrivenconstruction/skillmig/pkg/migrate"
	"github.com/datadrivenconstruction/skillmig/pkg/presenter"
	"github.com/datadrivenconstruction/skillmig/pkg/skills"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [root]",
	Short: "Check that every skill under the root is fully migrated",
	Long: `Re-read every discovered skill and check that its header parses as YAML and
carries the homepage and openclaw metadata, that claw.json is a valid manifest
and that instructions.md exists. Exits with status 1 when any check fails.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if code := runVerify(cmd.Context(), viper.GetViper(), presenter.Default(), args); code != 0 {
			_ = shutdownTracing(cmd.Context())
			os.Exit(code)
		}
	},
}

func runVerify(ctx context.Context, v *viper.Viper, p presenter.Presenter, args []string) int {
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

	problems := migrate.Verify(ctx, found)
	if len(problems) == 0 {
		p.Success(fmt.Sprintf("All %d skills are migrated", len(found)))
		return 0
	}

	p.Section("Verification failures")
	failing := make(map[*skills.Skill]struct{})
	for _, problem := range problems {
		p.Line(presenter.StatusError, problem.String())
		failing[problem.Skill] = struct{}{}
	}
	p.Warning(fmt.Sprintf("%d problems found in %d of %d skills", len(problems), len(failing), len(found)))
	return 1
}
