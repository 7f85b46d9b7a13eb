package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"submerge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Merge.ResetDelaySeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLanguage sets the default merge language on the test config.
func WithLanguage(code string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Merge.DefaultLanguage = code
	}
}

// WithResetDelay sets the observation window in seconds.
func WithResetDelay(seconds float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Merge.ResetDelaySeconds = seconds
	}
}

// WithTimeout sets the mkvmerge timeout in seconds.
func WithTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Mkvmerge.TimeoutSeconds = seconds
	}
}

// WithMkvmergeScript writes body as a shell script stub and points
// mkvmerge.binary at its absolute path.
func WithMkvmergeScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Mkvmerge.Binary = WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "mkvmerge", body)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, mkvmerge is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"mkvmerge"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, StubVersionScript)
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
