package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeIndex lays out a fake registry index: one JSON line per published
// version under user/<name>.index.
func writeIndex(t *testing.T, root, name string, lines ...string) {
	t.Helper()
	path := filepath.Join(root, "user", filepath.FromSlash(name)+".index")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadAll(t *testing.T) {
	root := t.TempDir()
	writeIndex(t, root, "a/b",
		`{"version":"1.0.0"}`,
		`{"version":"2.0.0"}`,
	)
	writeIndex(t, root, "a/c",
		`{"version":"0.1.0"}`,
	)
	writeIndex(t, root, "t/fixture",
		`{"version":"0.0.1","keywords":["mooncakes-test"]}`,
	)

	db, err := LoadAll(root)
	require.NoError(t, err)

	require.Equal(t, []string{"1.0.0", "2.0.0"}, db.Versions["a/b"])
	require.Equal(t, []string{"0.1.0"}, db.Versions["a/c"])
	require.NotContains(t, db.Versions, "t/fixture", "mooncakes-test packages are dropped")
}

func TestLatestVersions(t *testing.T) {
	db := &DB{Versions: map[string][]string{
		"a/b": {"1.0.0", "2.0.0"},
		"a/c": {"0.1.0"},
	}}

	latest := db.LatestVersions(nil)
	require.Equal(t, []Latest{
		{Name: "a/b", Version: "2.0.0"},
		{Name: "a/c", Version: "0.1.0"},
	}, latest)
}

func TestLatestVersionsExclusion(t *testing.T) {
	db := &DB{Versions: map[string][]string{
		"a/b": {"1.0.0", "2.0.0"},
		"a/c": {"0.1.0"},
	}}

	latest := db.LatestVersions(map[string]struct{}{"a/b": {}})
	require.Equal(t, []Latest{{Name: "a/c", Version: "0.1.0"}}, latest)
}

func TestLatestVersion(t *testing.T) {
	db := &DB{Versions: map[string][]string{"a/b": {"1.0.0", "2.0.0"}}}

	v, err := db.LatestVersion("a/b")
	require.NoError(t, err)
	require.Equal(t, "2.0.0", v)

	_, err = db.LatestVersion("missing/pkg")
	require.Error(t, err)
}

func TestHomeRespectsEnv(t *testing.T) {
	t.Setenv("MOON_HOME", "/tmp/custom-moon-home")

	home, err := Home()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom-moon-home", home)

	index, err := Index()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/tmp/custom-moon-home", "registry", "index"), index)
}
