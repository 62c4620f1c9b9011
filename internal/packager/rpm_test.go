package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// stageBuiltRPM places the file rpmbuild would produce under RPMS/<arch>/,
// so the publish step has something to copy.
func stageBuiltRPM(t *testing.T, f *testFixture) string {
	t.Helper()

	tempDir, err := filepath.Abs(filepath.Join(f.settings.PackageTmp, FormatRPM))
	require.NoError(t, err)

	archDir := filepath.Join(tempDir, "RPMS", rpmArch())
	require.NoError(t, os.MkdirAll(archDir, 0o755))

	builtPath := filepath.Join(archDir, fmt.Sprintf("%s-%s-%d.%s.rpm",
		f.project.Name, f.project.Version, f.project.Iteration, rpmArch()))
	require.NoError(t, os.WriteFile(builtPath, []byte("rpm payload"), 0o644))

	return builtPath
}

// TestRPMBuildScenario checks topdir layout, spec contents, the rpmbuild
// invocation and artifact publication.
func TestRPMBuildScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	stageBuiltRPM(t, f)

	artifact := f.mustBuild(t, FormatRPM)
	require.Len(t, f.runner.rendered, 1)

	// The built package is published into the package directory.
	require.FileExists(t, artifact)
	require.Equal(t, filepath.Join(f.settings.PackageDir, "myproject-23.4.2-4."+rpmArch()+".rpm"), artifact)

	tempDir, err := filepath.Abs(filepath.Join(f.settings.PackageTmp, FormatRPM))
	require.NoError(t, err)

	for _, dir := range []string{"BUILD", "RPMS", "SOURCES", "SPECS", "SRPMS"} {
		require.DirExists(t, filepath.Join(tempDir, dir))
	}

	specPath := filepath.Join(tempDir, "SPECS", "myproject.spec")
	require.FileExists(t, specPath)

	contents, err := os.ReadFile(specPath)
	require.NoError(t, err)

	spec := string(contents)
	require.Contains(t, spec, "Name: myproject\n")
	require.Contains(t, spec, "Version: 23.4.2\n")
	require.Contains(t, spec, "Release: 4\n")
	require.Contains(t, spec, "BuildArch: "+rpmArch()+"\n")
	require.Contains(t, spec, "Prefix: /opt/myproject\n")
	require.Contains(t, spec, "%dir /opt/myproject\n")

	expected := fmt.Sprintf("rpmbuild -bb --buildroot %s --define '_topdir %s' %s",
		filepath.Join(tempDir, "staging"), tempDir, specPath)
	require.Equal(t, expected, f.runner.rendered[0])
}

// TestRPMSpecEmbedsScriptlets checks scriptlet files become spec sections in
// a fixed order.
func TestRPMSpecEmbedsScriptlets(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.NoError(t, os.WriteFile(
		filepath.Join(f.project.PackageScriptsPath, "post"), []byte("ldconfig\n"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(f.project.PackageScriptsPath, "preun"), []byte("echo removing\n"), 0o644))

	stageBuiltRPM(t, f)
	f.mustBuild(t, FormatRPM)

	tempDir, err := filepath.Abs(filepath.Join(f.settings.PackageTmp, FormatRPM))
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(tempDir, "SPECS", "myproject.spec"))
	require.NoError(t, err)

	spec := string(contents)
	require.Contains(t, spec, "%post\nldconfig\n")
	require.Contains(t, spec, "%preun\necho removing\n")
	require.Less(t, strings.Index(spec, "%post"), strings.Index(spec, "%preun"))
}

// TestRPMBuildFailsWithoutBuiltArtifact ensures a clean rpmbuild exit with no
// package under RPMS/<arch>/ is reported as an error instead of a path to a
// file that does not exist.
func TestRPMBuildFailsWithoutBuiltArtifact(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	p, err := New(FormatRPM, f.project, f.settings, f.runner)
	require.NoError(t, err)

	artifact, err := p.Build(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Contains(t, err.Error(), filepath.Join("RPMS", rpmArch()))
	require.Empty(t, artifact)
}

// TestRPMSpecIsIdempotent checks regenerating the spec yields identical bytes.
func TestRPMSpecIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	p, err := New(FormatRPM, f.project, f.settings, f.runner)
	require.NoError(t, err)

	backend, ok := p.(*rpm)
	require.True(t, ok)

	first, err := backend.renderSpec()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := backend.renderSpec()
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}
