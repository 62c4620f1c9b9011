package build

import (
	"context"
	"fmt"

	"github.com/oshokin/pkgsmith/internal/command"
	"github.com/oshokin/pkgsmith/internal/config"
	"github.com/oshokin/pkgsmith/internal/logger"
	"github.com/oshokin/pkgsmith/internal/metadata"
	"github.com/oshokin/pkgsmith/internal/packager"
)

// Options contains inputs for the build entry point.
type Options struct {
	// ProjectPath is the path to the project metadata YAML file.
	ProjectPath string
	// ConfigPath is an optional path to the global settings YAML file.
	ConfigPath string
	// Formats lists the package formats to produce, in build order.
	Formats []string
	// Runner overrides the external tool runner; nil means native execution.
	Runner command.Runner
}

// Run executes the packaging workflow: load settings and metadata, validate
// everything up front, then build each requested format sequentially.
// Each format owns its own staging subtree, so ordering is for readable log
// interleaving, not correctness.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "pkgsmith")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Load validates all required fields at once, so a broken project file
	// reports every missing field in a single run.
	project, err := metadata.Load(opts.ProjectPath)
	if err != nil {
		return fmt.Errorf("load project metadata: %w", err)
	}

	runner := opts.Runner
	if runner == nil {
		runner = command.NewExecRunner()
	}

	packagers, err := selectPackagers(project, settings, opts.Formats, runner)
	if err != nil {
		return err
	}

	// Preflight: artifact names are pure functions of metadata, so they can
	// be logged and checked before any build step runs.
	for _, p := range packagers {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("validate %s package: %w", p.Format(), err)
		}

		logger.InfoKV(ctx, "Planned artifact", "format", p.Format(), "artifact", p.ArtifactName())
	}

	for _, p := range packagers {
		artifact, err := p.Build(ctx)
		if err != nil {
			return fmt.Errorf("build %s package: %w", p.Format(), err)
		}

		logger.InfoKV(ctx, "Package built", "format", p.Format(), "artifact", artifact)
	}

	logger.Info(ctx, "All packages built successfully")

	return nil
}

// selectPackagers instantiates a backend per requested format. Unknown
// formats fail here, before any filesystem work.
func selectPackagers(project *metadata.Project, settings *config.Settings, formats []string, runner command.Runner) ([]packager.Packager, error) {
	if len(formats) == 0 {
		return nil, fmt.Errorf("no package formats requested (supported: %v)", packager.Formats())
	}

	packagers := make([]packager.Packager, 0, len(formats))

	for _, format := range formats {
		p, err := packager.New(format, project, settings, runner)
		if err != nil {
			return nil, err
		}

		packagers = append(packagers, p)
	}

	return packagers, nil
}
