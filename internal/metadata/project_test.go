package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// validProject returns a fully populated project for tests.
func validProject() *Project {
	return &Project{
		Name:               "myproject",
		FriendlyName:       "My Project",
		Version:            "23.4.2",
		Iteration:          4,
		Maintainer:         "Jane Doe <jane@example.com>",
		InstallDir:         "/opt/myproject",
		FilesPath:          "/var/cache/build/install",
		PackageScriptsPath: "/var/cache/build/scripts",
	}
}

// TestValidateCollectsAllMissingFields ensures every absent required field is
// reported in a single combined error, each carrying an example value.
func TestValidateCollectsAllMissingFields(t *testing.T) {
	t.Parallel()

	project := new(Project)

	err := project.Validate()
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 5)

	fields := make([]string, 0, len(errs))

	for _, e := range errs {
		var missing *MissingFieldError

		require.ErrorAs(t, e, &missing)
		require.NotEmpty(t, missing.Example)

		fields = append(fields, missing.Field)
	}

	require.ElementsMatch(t,
		[]string{"name", "version", "maintainer", "install_dir", "files_path"},
		fields)
}

// TestValidateDoesNotMutate ensures validation is a pure check on the
// borrowed view; defaults are applied at load time only.
func TestValidateDoesNotMutate(t *testing.T) {
	t.Parallel()

	project := validProject()
	project.Iteration = 0
	project.FriendlyName = ""

	require.NoError(t, project.Validate())
	require.Equal(t, 0, project.Iteration)
	require.Empty(t, project.FriendlyName)
}

// TestLoadAppliesDefaults checks iteration and friendly name fallbacks for a
// minimal project file.
func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")

	contents := `name: myproject
version: 23.4.2
maintainer: Jane Doe <jane@example.com>
install_dir: /opt/myproject
files_path: /var/cache/build/install
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	project, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, project.Iteration)
	require.Equal(t, "myproject", project.FriendlyName)
}

// TestLoadRoundtrip ensures a project YAML file is read back correctly.
func TestLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")

	contents := `name: myproject
friendly_name: My Project
version: 23.4.2
iteration: 4
maintainer: Jane Doe <jane@example.com>
install_dir: /opt/myproject
files_path: /var/cache/build/install
identifiers:
  pkg: com.example.myproject
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	project, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "myproject", project.Name)
	require.Equal(t, 4, project.Iteration)
	require.Equal(t, "com.example.myproject", project.Identifiers["pkg"])
}

// TestLoadMissingFile checks a readable error for a nonexistent path.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
