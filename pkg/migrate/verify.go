package migrate

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/datadrivenconstruction/skillmig/pkg/frontmatter"
	"github.com/datadrivenconstruction/skillmig/pkg/instructions"
	"github.com/datadrivenconstruction/skillmig/pkg/logger"
	"github.com/datadrivenconstruction/skillmig/pkg/manifest"
	"github.com/datadrivenconstruction/skillmig/pkg/skills"
)

// Problem is a defect found in a migrated skill
type Problem struct {
	Skill *skills.Skill
	Err   error
}

func (p Problem) String() string {
	return p.Skill.RelPath + ": " + p.Err.Error()
}

// Verify checks that every skill is fully migrated: the header must parse
// as YAML and carry the homepage and openclaw metadata, claw.json must be a
// valid manifest and instructions.md must exist. It returns one Problem per
// defect; an empty result means every skill passed.
func Verify(ctx context.Context, found []*skills.Skill) []Problem {
	var problems []Problem
	for _, skill := range found {
		for _, err := range verifySkill(skill) {
			logger.G(ctx).WithField("skill_dir", skill.RelPath).WithError(err).Warn("verification failed")
			problems = append(problems, Problem{Skill: skill, Err: err})
		}
	}
	return problems
}

func verifySkill(skill *skills.Skill) []error {
	var errs []error

	content, err := os.ReadFile(skill.File())
	if err != nil {
		return []error{errors.Wrapf(err, "failed to read %s", skills.FileName)}
	}
	if _, err := frontmatter.ReadMigrated(content); err != nil {
		errs = append(errs, errors.Wrap(err, skills.FileName))
	}

	data, err := os.ReadFile(skill.Path(manifest.FileName))
	if err != nil {
		errs = append(errs, errors.Wrapf(err, "failed to read %s", manifest.FileName))
	} else if _, err := manifest.Decode(data); err != nil {
		errs = append(errs, errors.Wrap(err, manifest.FileName))
	}

	if _, err := os.Stat(skill.Path(instructions.FileName)); err != nil {
		errs = append(errs, errors.Wrapf(err, "missing %s", instructions.FileName))
	}
	return errs
}
