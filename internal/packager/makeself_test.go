package packager

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMakeselfBuildScenario checks the installer script and the makeself
// invocation.
func TestMakeselfBuildScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	artifact := f.mustBuild(t, FormatMakeself)
	require.Len(t, f.runner.rendered, 1)

	tempDir, err := filepath.Abs(filepath.Join(f.settings.PackageTmp, FormatMakeself))
	require.NoError(t, err)

	stagingDir := filepath.Join(tempDir, "staging")

	// Payload and installer script are staged together.
	require.FileExists(t, filepath.Join(stagingDir, "bin", "myproject"))

	scriptPath := filepath.Join(stagingDir, "makeselfinst")
	require.FileExists(t, scriptPath)

	info, err := os.Stat(scriptPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	contents, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	require.Contains(t, string(contents), `DEST="/opt/myproject"`)
	require.NotContains(t, string(contents), "postinstall")

	expected := fmt.Sprintf("makeself.sh --gzip --nomd5 --nocrc %s %s 'My Project' ./makeselfinst",
		stagingDir, artifact)
	require.Equal(t, expected, f.runner.rendered[0])
	require.Equal(t, "myproject-23.4.2_4.sh", filepath.Base(artifact))
}

// TestMakeselfScriptRunsPostinstallHook checks the hook call appears only
// when a postinstall script is staged.
func TestMakeselfScriptRunsPostinstallHook(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.NoError(t, os.WriteFile(
		filepath.Join(f.project.PackageScriptsPath, "postinstall"), []byte("#!/bin/sh\n"), 0o755))

	f.mustBuild(t, FormatMakeself)

	tempDir, err := filepath.Abs(filepath.Join(f.settings.PackageTmp, FormatMakeself))
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(tempDir, "staging", "makeselfinst"))
	require.NoError(t, err)
	require.Contains(t, string(contents), `"$DEST/postinstall"`)

	// The hook itself travels inside the archive.
	require.FileExists(t, filepath.Join(tempDir, "staging", "postinstall"))
}
