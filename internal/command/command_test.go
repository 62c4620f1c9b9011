package command

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRenderPreservesCallerOrder ensures flags are rendered exactly as supplied.
func TestRenderPreservesCallerOrder(t *testing.T) {
	t.Parallel()

	cmd := New("pkgbuild").
		WithFlag("--identifier", "com.example.myproject").
		WithFlag("--version", "23.4.2").
		WithFlag("--root", "/staging/root").
		WithArgs("myproject-core.pkg")

	require.Equal(t,
		"pkgbuild --identifier com.example.myproject --version 23.4.2 --root /staging/root myproject-core.pkg",
		cmd.Render())
}

// TestRenderIsDeterministic checks repeated rendering yields identical output.
func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	cmd := New("dpkg-deb").
		WithSwitch("-z9").
		WithSwitch("-D").
		WithFlag("--build", "/tmp/deb/staging")

	first := cmd.Render()
	for i := 0; i < 10; i++ {
		require.Equal(t, first, cmd.Render())
	}
}

// TestRenderQuotesSpecialValues checks values with spaces or shell
// metacharacters are quoted, and plain values are not.
func TestRenderQuotesSpecialValues(t *testing.T) {
	t.Parallel()

	cmd := New("productbuild").
		WithFlag("--sign", "Developer ID Installer: Example Corp (ABC123)").
		WithArgs("/pkg/my project.pkg")

	require.Equal(t,
		`productbuild --sign 'Developer ID Installer: Example Corp (ABC123)' '/pkg/my project.pkg'`,
		cmd.Render())

	// Embedded single quotes are escaped the POSIX way.
	require.Equal(t, `echo 'Joe'\''s Software'`, New("echo").WithArgs("Joe's Software").Render())
}

// TestSwitchOmitsEmptyValue ensures a bare flag never renders an empty token.
func TestSwitchOmitsEmptyValue(t *testing.T) {
	t.Parallel()

	cmd := New("candle.exe").WithSwitch("-nologo").WithArgs("product.wxs")
	require.Equal(t, []string{"-nologo", "product.wxs"}, cmd.Argv())
}

// TestArgvKeepsVerbPosition ensures subcommand verbs stay where the caller
// put them relative to flags.
func TestArgvKeepsVerbPosition(t *testing.T) {
	t.Parallel()

	cmd := New("hdiutil").
		WithArgs("create").
		WithFlag("-srcfolder", "/staged/install").
		WithArgs("/pkg/myproject-1.0-1.dmg")

	require.Equal(t,
		[]string{"create", "-srcfolder", "/staged/install", "/pkg/myproject-1.0-1.dmg"},
		cmd.Argv())
}

// TestExecRunnerSuccess runs a real process and captures its output.
func TestExecRunnerSuccess(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("test relies on a POSIX shell")
	}

	out, err := NewExecRunner().Run(context.Background(), New("sh").WithFlag("-c", "echo staged"))
	require.NoError(t, err)
	require.Contains(t, out, "staged")
}

// TestExecRunnerFailureCarriesOutput ensures a non-zero exit is reported as
// ExternalToolError with exit code and captured output attached.
func TestExecRunnerFailureCarriesOutput(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("test relies on a POSIX shell")
	}

	_, err := NewExecRunner().Run(context.Background(),
		New("sh").WithFlag("-c", "echo broken staging; exit 3"))
	require.Error(t, err)

	var toolErr *ExternalToolError

	require.ErrorAs(t, err, &toolErr)
	require.Equal(t, "sh", toolErr.Program)
	require.Equal(t, 3, toolErr.ExitCode)
	require.Contains(t, toolErr.Output, "broken staging")
}
