package migrate

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/datadrivenconstruction/skillmig/pkg/skills"
)

// Outcome is the classification of a processed skill
type Outcome int

const (
	// Updated means the header was rewritten
	Updated Outcome = iota
	// SkippedNoHeader means SKILL.md has no header block
	SkippedNoHeader
	// SkippedMigrated means the header already carries a homepage
	SkippedMigrated
	// Failed means processing raised an error
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case SkippedNoHeader:
		return "skipped_no_header"
	case SkippedMigrated:
		return "skipped_migrated"
	default:
		return "failed"
	}
}

// Result is the outcome of processing one skill
type Result struct {
	Skill   *skills.Skill
	Outcome Outcome
	// Name is the resolved skill name; set for updated skills.
	Name string
	Err  error
	// Created lists the companion files written, or that would be written
	// in dry-run mode.
	Created []string
	// Diff is the unified diff of SKILL.md; set in dry-run mode only.
	Diff string
}

// Line renders the per-skill report line
func (r Result) Line() string {
	switch r.Outcome {
	case Updated:
		return "OK: " + r.Name
	case SkippedNoHeader:
		return "SKIP (no frontmatter): " + r.Skill.DirName()
	case SkippedMigrated:
		return "SKIP (already updated): " + r.Skill.DirName()
	default:
		return fmt.Sprintf("ERROR: %s - %v", r.Skill.DirName(), r.Err)
	}
}

// Report collects the results of a run in discovery order
type Report struct {
	RunID   string
	DryRun  bool
	Results []Result
}

// Counts returns the number of updated, skipped and failed skills
func (r *Report) Counts() (updated, skipped, failed int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case Updated:
			updated++
		case SkippedNoHeader, SkippedMigrated:
			skipped++
		default:
			failed++
		}
	}
	return updated, skipped, failed
}

// Err aggregates the errors of all failed skills, or returns nil
func (r *Report) Err() error {
	var result *multierror.Error
	for _, res := range r.Results {
		if res.Outcome == Failed {
			result = multierror.Append(result, errors.Wrap(res.Err, res.Skill.RelPath))
		}
	}
	return result.ErrorOrNil()
}
