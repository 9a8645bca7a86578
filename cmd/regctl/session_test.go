package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkit/pkg/registry"
	"github.com/joshuapare/regkit/pkg/types"
)

func TestOpenSession_File(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	file := filepath.Join(t.TempDir(), "hive.reg")

	s, err := openSession(settings{Debug: "strict", LongNames: true, File: file})
	require.NoError(t, err)
	defer s.close()

	assert.Equal(t, registry.DebugStrict, s.client.Debug())
	assert.Equal(t, types.LongNames, s.client.NameForm())
	assert.Equal(t, registry.EncodingUTF8, s.encoding)

	created, err := s.client.CreateKey(`HKCU:Software\Vendor`)
	require.NoError(t, err)
	assert.Equal(t, `HKEY_CURRENT_USER\Software\Vendor`, created)
}

func TestOpenSession_BadDebug(t *testing.T) {
	_, err := openSession(settings{Debug: "loud", File: filepath.Join(t.TempDir(), "x.reg")})
	assert.ErrorIs(t, err, types.ErrUnsupported)
}

func TestSessionCommitRoundTrip(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	file := filepath.Join(t.TempDir(), "hive.reg")

	s, err := openSession(settings{File: file, Encoding: registry.EncodingUTF16LE})
	require.NoError(t, err)
	_, err = s.client.SaveValue(`HKCU:Software\Vendor`, "Version", types.StringValue("1.0"))
	require.NoError(t, err)
	_, err = s.client.SaveValue(`HKLM:SOFTWARE\Vendor`, "Installed", types.DWordValue(1))
	require.NoError(t, err)
	require.NoError(t, s.commit())
	s.close()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFE}, data[:2])

	reopened, err := openSession(settings{File: file})
	require.NoError(t, err)
	defer reopened.close()

	v, err := reopened.client.LoadValue(`HKCU:Software\Vendor`, "Version")
	require.NoError(t, err)
	text, err := v.Text()
	require.NoError(t, err)
	assert.Equal(t, "1.0", text)

	v, err = reopened.client.LoadValue(`HKLM:SOFTWARE\Vendor`, "Installed")
	require.NoError(t, err)
	n, err := v.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)

	keys, err := reopened.client.ListSubkeys(`HKCU:`, registry.DepthUnbounded)
	require.NoError(t, err)
	assert.Equal(t, []string{`HKCU:Software`, `HKCU:Software\Vendor`}, keys)
}

func TestCommandsWriteBackToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "hive.reg")
	newTestSession(t, file)

	_, err := captureOutput(t, func() error {
		return runSet([]string{`HKCU:Software\Vendor`, "Name", "x"})
	})
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assertContains(t, string(data), []string{
		"[HKEY_CURRENT_USER]",
		`[HKEY_CURRENT_USER\Software\Vendor]`,
		`"Name"="x"`,
	})
	assertNotContains(t, string(data), []string{"HKEY_LOCAL_MACHINE"})
}

func TestNeedsSession(t *testing.T) {
	assert.False(t, needsSession(versionCmd))

	keys, _, err := rootCmd.Find([]string{"keys"})
	require.NoError(t, err)
	assert.True(t, needsSession(keys))
}
