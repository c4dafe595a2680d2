package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/blmreader/pkg/api"
	"github.com/ssargent/blmreader/pkg/blm"
	"github.com/ssargent/blmreader/pkg/config"
	"github.com/ssargent/blmreader/pkg/di"
)

const testBLM = "#HEADER#\n" +
	"Version : 3\n" +
	"EOF : '^'\n" +
	"EOR : '~'\n" +
	"Property Count : 3\n" +
	"Generated Date : 13-Jan-2024 15:12\n" +
	"#DEFINITION#\n" +
	"AGENT_REF^ADDRESS_1^PRICE^MEDIA_IMAGE_00^~\n" +
	"#DATA#\n" +
	"1_001^Fox Cottage^250000^a.jpg, b.jpg^~\n" +
	"1_002^Mill House^325000^^~\n" +
	"1_003^The Old Forge^410000^missing.jpg^~\n" +
	"#END#\n"

// resetFlags restores every flag of c and its subcommands to its default so
// one test's flags do not leak into the next
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type fixture struct {
	dir        string
	blmPath    string
	configPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:        dir,
		blmPath:    filepath.Join(dir, "feed.blm"),
		configPath: filepath.Join(dir, "config.yaml"),
	}
	require.NoError(t, os.WriteFile(f.blmPath, []byte(testBLM), 0600))

	cfg := config.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	require.NoError(t, config.SaveConfig(cfg, f.configPath))

	SetContainer(di.NewContainer())
	return f
}

// run executes the root command with args and returns what it wrote to stdout
func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--config", f.configPath))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCount(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "count", f.blmPath)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = f.run(t, "count", f.blmPath, "--preview")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestInfo(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "info", f.blmPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Version:        3\n")
	assert.Contains(t, out, "EOF:            \"^\"\n")
	assert.Contains(t, out, "Records:        3\n")
	assert.Contains(t, out, "AGENT_REF, ADDRESS_1, PRICE, MEDIA_IMAGE_00")
	assert.Contains(t, out, "DATA")

	out, err = f.run(t, "info", f.blmPath, "--preview")
	require.NoError(t, err)
	assert.Contains(t, out, "Records:        2 (preview)\n")
}

func TestGet(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "get", f.blmPath, "1")
	require.NoError(t, err)
	assert.Equal(t, "AGENT_REF: 1_002\nADDRESS_1: Mill House\nPRICE: 325000\nMEDIA_IMAGE_00: \n", out)

	out, err = f.run(t, "get", f.blmPath, "0", "--json")
	require.NoError(t, err)
	var row map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &row))
	assert.Equal(t, "Fox Cottage", row["ADDRESS_1"])

	_, err = f.run(t, "get", f.blmPath, "3")
	assert.ErrorIs(t, err, blm.ErrOutOfRange)

	_, err = f.run(t, "get", f.blmPath, "first")
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "query", f.blmPath, "2", "PRICE")
	require.NoError(t, err)
	assert.Equal(t, "410000\n", out)

	_, err = f.run(t, "query", f.blmPath, "2", "BEDROOMS")
	assert.ErrorIs(t, err, blm.ErrUnknownField)
}

func TestFind(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "find", f.blmPath, "PRICE", ">=", "300000")
	require.NoError(t, err)
	assert.Equal(t, "1\t325000\n2\t410000\n", out)

	out, err = f.run(t, "find", f.blmPath, "ADDRESS_1", "~", "o", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, "0\tFox Cottage\n", out)

	_, err = f.run(t, "find", f.blmPath, "PRICE", "<>", "1")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	outPath := filepath.Join(f.dir, "feed.json")

	stdout, err := f.run(t, "export", f.blmPath, "--out", outPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "1_003", rows[2]["AGENT_REF"])

	stdout, err = f.run(t, "export", f.blmPath, "--preview")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	assert.Len(t, rows, 2)
}

func TestAttachments(t *testing.T) {
	f := newFixture(t)

	zf, err := os.Create(blm.CompanionZipPath(f.blmPath))
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	for _, name := range []string{"a.jpg", "b.jpg"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("image " + name))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	dest := filepath.Join(f.dir, "media")
	out, err := f.run(t, "attachments", f.blmPath, "0", "MEDIA_IMAGE_00", "--dest", dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "a.jpg")+"\n"+filepath.Join(dest, "b.jpg")+"\n", out)

	data, err := os.ReadFile(filepath.Join(dest, "b.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "image b.jpg", string(data))

	out, err = f.run(t, "attachments", f.blmPath, "2", "MEDIA_IMAGE_00", "--dest", dest)
	require.NoError(t, err)
	assert.Equal(t, "(missing)\n", out)
}

func TestInit(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.dir, "fresh", "blm.yaml")

	out, err := f.runWithConfig(t, path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to "+path)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Server.APIKey, 64)

	_, err = f.runWithConfig(t, path, "init")
	assert.Error(t, err)

	_, err = f.runWithConfig(t, path, "init", "--force")
	require.NoError(t, err)
	again, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.NotEqual(t, cfg.Server.APIKey, again.Server.APIKey)
}

// runWithConfig is run with a config path other than the fixture's
func (f *fixture) runWithConfig(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	saved := f.configPath
	f.configPath = configPath
	defer func() { f.configPath = saved }()
	return f.run(t, args...)
}

type captureStarter struct {
	config   api.ServerConfig
	sessions *api.SessionRegistry
}

func (s *captureStarter) StartServer(ctx context.Context, sessions *api.SessionRegistry, config api.ServerConfig) error {
	s.config = config
	s.sessions = sessions
	return nil
}

type captureFactory struct{ starter *captureStarter }

func (f *captureFactory) CreateServerStarter() api.ServerStarter { return f.starter }

func TestServe(t *testing.T) {
	f := newFixture(t)
	starter := &captureStarter{}
	container.SetServerFactory(&captureFactory{starter: starter})

	// The fixture config still holds the "auto" placeholder key
	_, err := f.run(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blm init")

	_, err = f.run(t, "serve", "--api-key", "secret", "--port", "9090")
	require.NoError(t, err)
	assert.Equal(t, "secret", starter.config.APIKey)
	assert.Equal(t, 9090, starter.config.Port)
	assert.Equal(t, "127.0.0.1", starter.config.Bind)
	require.NotNil(t, starter.sessions)

	s, err := starter.sessions.Open(context.Background(), f.blmPath, false)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Summary().Records)
	require.NoError(t, starter.sessions.CloseAll())
}

func TestConfigOverrides(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "count", f.blmPath, "--log-level", "verbose")
	assert.Error(t, err)

	_, err = f.run(t, "count", f.blmPath, "--chunk-size", "0")
	assert.Error(t, err)

	out, err := f.run(t, "count", f.blmPath, "--chunk-size", "3", "--log-format", "json")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	_, err = f.runWithConfig(t, filepath.Join(f.dir, "absent.yaml"), "count", f.blmPath)
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	f := newFixture(t)
	cacheDir := filepath.Join(f.dir, "index-cache")

	for i := 0; i < 2; i++ {
		out, err := f.run(t, "count", f.blmPath, "--cache", "--cache-dir", cacheDir)
		require.NoError(t, err)
		assert.Equal(t, "3\n", out)
	}
	assert.DirExists(t, cacheDir)
}

func TestRange(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "range", f.blmPath, "PRICE", "250000", "325000")
	require.NoError(t, err)
	assert.Equal(t, "0\t250000\n1\t325000\n", out)

	out, err = f.run(t, "range", f.blmPath, "PRICE", "0", "1000000", "--limit", "2")
	require.NoError(t, err)
	assert.Equal(t, "0\t250000\n1\t325000\n", out)

	_, err = f.run(t, "range", f.blmPath, "BEDROOMS", "1", "3")
	assert.ErrorIs(t, err, blm.ErrUnknownField)
}

func TestCacheListAndClear(t *testing.T) {
	f := newFixture(t)
	cacheDir := filepath.Join(f.dir, "index-cache")

	other := filepath.Join(f.dir, "other.blm")
	require.NoError(t, os.WriteFile(other, []byte(testBLM), 0600))

	for _, path := range []string{f.blmPath, other} {
		_, err := f.run(t, "count", path, "--cache", "--cache-dir", cacheDir)
		require.NoError(t, err)
	}
	_, err := f.run(t, "count", f.blmPath, "--preview", "--cache", "--cache-dir", cacheDir)
	require.NoError(t, err)

	out, err := f.run(t, "cache", "list", "--cache-dir", cacheDir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, out, "|preview|1048576")

	out, err = f.run(t, "cache", "clear", f.blmPath, "--cache-dir", cacheDir)
	require.NoError(t, err)
	assert.Equal(t, "Removed 2 snapshot(s)\n", out)

	out, err = f.run(t, "cache", "list", "--cache", "--cache-dir", cacheDir)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, other+"|")

	out, err = f.run(t, "cache", "clear", "--cache-dir", cacheDir)
	require.NoError(t, err)
	assert.Equal(t, "Removed 1 snapshot(s)\n", out)
}
