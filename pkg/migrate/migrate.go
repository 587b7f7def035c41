// Package migrate rewrites skill directories into the openclaw 2.0 layout.
// For every skill it rewrites the SKILL.md header and creates claw.json and
// instructions.md when they are missing.
package migrate

import (
	"context"
	"os"
	"path"
	"sync"

	"github.com/aymanbagabas/go-udiff"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/renameio"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/datadrivenconstruction/skillmig/pkg/classify"
	"github.com/datadrivenconstruction/skillmig/pkg/frontmatter"
	"github.com/datadrivenconstruction/skillmig/pkg/instructions"
	"github.com/datadrivenconstruction/skillmig/pkg/keywords"
	"github.com/datadrivenconstruction/skillmig/pkg/logger"
	"github.com/datadrivenconstruction/skillmig/pkg/manifest"
	"github.com/datadrivenconstruction/skillmig/pkg/skills"
	"github.com/datadrivenconstruction/skillmig/pkg/telemetry"
)

// Migrator processes skills with a fixed set of tables and settings. It is
// safe for concurrent use.
type Migrator struct {
	classifier  *classify.Classifier
	synthesizer *instructions.Synthesizer
	homepage    string
	settings    manifest.Settings
	dryRun      bool
	workers     int
}

// Option configures a Migrator
type Option func(*Migrator)

// WithHomepage sets the homepage written into headers
func WithHomepage(homepage string) Option {
	return func(m *Migrator) {
		m.homepage = homepage
	}
}

// WithManifestSettings sets the fixed claw.json values
func WithManifestSettings(s manifest.Settings) Option {
	return func(m *Migrator) {
		m.settings = s
	}
}

// WithDryRun disables all writes. Results carry a diff instead.
func WithDryRun(dryRun bool) Option {
	return func(m *Migrator) {
		m.dryRun = dryRun
	}
}

// WithWorkers sets how many skills are processed concurrently
func WithWorkers(n int) Option {
	return func(m *Migrator) {
		if n > 0 {
			m.workers = n
		}
	}
}

// New creates a Migrator over the given keyword tables
func New(tables *keywords.Tables, opts ...Option) (*Migrator, error) {
	synthesizer, err := instructions.New(tables)
	if err != nil {
		return nil, err
	}

	m := &Migrator{
		classifier:  classify.New(tables),
		synthesizer: synthesizer,
		homepage:    manifest.DefaultHomepage,
		settings:    manifest.DefaultSettings(),
		workers:     1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Run processes skills and returns their results in input order. A failing
// skill never stops the others. Run returns an error only when ctx is
// cancelled; skills not yet started are then absent from the report.
func (m *Migrator) Run(ctx context.Context, found []*skills.Skill) (*Report, error) {
	report := &Report{RunID: uuid.New().String(), DryRun: m.dryRun}
	ctx = logger.WithFields(ctx, logrus.Fields{"run_id": report.RunID})

	results := make([]Result, len(found))
	done := make([]bool, len(found))

	err := telemetry.WithSpan(ctx, "migrate.run", func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(m.workers)

		var mu sync.Mutex
		for i, skill := range found {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res := m.Process(gctx, skill)
				mu.Lock()
				results[i] = res
				done[i] = true
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		return ctx.Err()
	}, attribute.Int("skills.count", len(found)), attribute.Bool("dry_run", m.dryRun))

	for i := range results {
		if done[i] {
			report.Results = append(report.Results, results[i])
		}
	}

	updated, skipped, failed := report.Counts()
	logger.G(ctx).WithFields(logrus.Fields{
		"updated": updated,
		"skipped": skipped,
		"errors":  failed,
	}).Info("migration finished")

	return report, err
}

// Process migrates a single skill directory
func (m *Migrator) Process(ctx context.Context, skill *skills.Skill) Result {
	ctx = logger.WithFields(ctx, logrus.Fields{"skill_dir": skill.RelPath})

	var res Result
	_ = telemetry.WithSpan(ctx, "migrate.skill", func(ctx context.Context) error {
		res = m.process(ctx, skill)
		telemetry.SetAttributes(ctx, attribute.String("skill.outcome", res.Outcome.String()))
		return res.Err
	}, attribute.String("skill.dir", skill.RelPath))

	log := logger.G(ctx).WithField("outcome", res.Outcome.String())
	if res.Err != nil {
		log.WithError(res.Err).Error("failed to migrate skill")
	} else {
		log.Debug("processed skill")
	}
	return res
}

func (m *Migrator) process(ctx context.Context, skill *skills.Skill) Result {
	res := Result{Skill: skill}
	fail := func(err error) Result {
		res.Outcome = Failed
		res.Err = err
		return res
	}

	file := skill.File()
	info, err := os.Stat(file)
	if err != nil {
		return fail(errors.Wrapf(err, "failed to stat %s", skills.FileName))
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return fail(errors.Wrapf(err, "failed to read %s", skills.FileName))
	}
	content := string(raw)

	header, body := frontmatter.Parse(content)
	if header == nil {
		res.Outcome = SkippedNoHeader
		return res
	}
	if header.Has(frontmatter.HomepageKey) {
		res.Outcome = SkippedMigrated
		return res
	}

	top, sub, err := skill.Categories()
	if err != nil {
		return fail(err)
	}
	id := classify.Identity{
		Name:        resolveName(header, skill),
		TopCategory: top,
		SubCategory: sub,
		RawText:     content,
	}
	id.Description, _ = header.Get("description")
	res.Name = id.Name

	meta := m.classifier.Classify(id)
	blob, err := manifest.BuildMetadataBlob(meta.Emoji, meta.OS, m.homepage, meta.Requirements)
	if err != nil {
		return fail(err)
	}
	rewritten, err := frontmatter.Render(frontmatter.Migrated{
		Name:        id.Name,
		Description: id.Description,
		Homepage:    m.homepage,
		Metadata:    blob,
	}, body)
	if err != nil {
		return fail(err)
	}

	companions := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{manifest.FileName, func() ([]byte, error) {
			return manifest.Build(id, meta.Permissions, meta.Tags, m.settings).Encode()
		}},
		{instructions.FileName, func() ([]byte, error) {
			s, err := m.synthesizer.Synthesize(id, meta)
			return []byte(s), err
		}},
	}

	// Companion files go first so that a failed header write leaves the
	// skill unmigrated and a rerun completes it.
	for _, c := range companions {
		target := skill.Path(c.name)
		exists, err := fileExists(target)
		if err != nil {
			return fail(err)
		}
		if exists {
			logger.G(ctx).WithField("file", c.name).Debug("keeping existing file")
			continue
		}

		data, err := c.render()
		if err != nil {
			return fail(err)
		}
		if !m.dryRun {
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fail(errors.Wrapf(err, "failed to write %s", c.name))
			}
		}
		res.Created = append(res.Created, c.name)
	}

	// SKILL.md is replaced atomically; a partial file would read as migrated.
	if m.dryRun {
		label := path.Join(skill.RelPath, skills.FileName)
		res.Diff = udiff.Unified("a/"+label, "b/"+label, content, rewritten)
	} else if err := renameio.WriteFile(file, []byte(rewritten), info.Mode().Perm()); err != nil {
		return fail(errors.Wrapf(err, "failed to write %s", skills.FileName))
	}

	res.Outcome = Updated
	return res
}

// resolveName prefers the name field, then slug, then the directory name.
// A present but empty field still wins.
func resolveName(h *frontmatter.Header, skill *skills.Skill) string {
	if name, ok := h.Get("name"); ok {
		return name
	}
	if slug, ok := h.Get("slug"); ok {
		return slug
	}
	return skill.DirName()
}

func fileExists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to stat %s", p)
}
