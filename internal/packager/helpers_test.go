package packager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pkgsmith/internal/command"
	"github.com/oshokin/pkgsmith/internal/config"
	"github.com/oshokin/pkgsmith/internal/metadata"
)

// fakeRunner records rendered tool invocations instead of executing them.
type fakeRunner struct {
	// rendered holds each command line in invocation order.
	rendered []string
	// failProgram, when set, makes that program fail with ExternalToolError.
	failProgram string
}

// Run implements command.Runner.
func (r *fakeRunner) Run(_ context.Context, cmd *command.Command) (string, error) {
	r.rendered = append(r.rendered, cmd.Render())

	if r.failProgram != "" && cmd.Program == r.failProgram {
		return "", &command.ExternalToolError{
			Program:  cmd.Program,
			ExitCode: 1,
			Output:   "simulated tool failure",
		}
	}

	return "", nil
}

// testFixture bundles a project, settings and staged files under a temp dir.
type testFixture struct {
	project  *metadata.Project
	settings *config.Settings
	runner   *fakeRunner
}

// newFixture stages a small install tree and returns ready-to-use metadata.
func newFixture(t *testing.T) *testFixture {
	t.Helper()

	dir := t.TempDir()
	filesPath := filepath.Join(dir, "install")
	scriptsPath := filepath.Join(dir, "scripts")

	require.NoError(t, os.MkdirAll(filepath.Join(filesPath, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(filesPath, "bin", "myproject"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(filesPath, "README"), []byte("readme\n"), 0o644))
	require.NoError(t, os.MkdirAll(scriptsPath, 0o755))

	return &testFixture{
		project: &metadata.Project{
			Name:               "myproject",
			FriendlyName:       "My Project",
			Version:            "23.4.2",
			Iteration:          4,
			Maintainer:         "Jane Doe <jane@example.com>",
			InstallDir:         "/opt/myproject",
			FilesPath:          filesPath,
			PackageScriptsPath: scriptsPath,
		},
		settings: &config.Settings{
			PackageDir: filepath.Join(dir, "pkg"),
			PackageTmp: filepath.Join(dir, "pkg-tmp"),
		},
		runner: &fakeRunner{},
	}
}

// mustBuild runs Build on the given format and returns the artifact path.
func (f *testFixture) mustBuild(t *testing.T, format string) string {
	t.Helper()

	p, err := New(format, f.project, f.settings, f.runner)
	require.NoError(t, err)

	artifact, err := p.Build(context.Background())
	require.NoError(t, err)

	return artifact
}
