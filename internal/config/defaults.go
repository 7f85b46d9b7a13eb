package config

const (
	defaultConfigPath        = "~/.config/submerge/config.toml"
	defaultStateDir          = "~/.local/share/submerge"
	defaultLogDir            = "~/.local/share/submerge/logs"
	defaultMkvmergeBinary    = "mkvmerge"
	defaultOutputSuffix      = "merged"
	defaultOutputExtension   = "mkv"
	defaultLanguage          = "eng"
	defaultResetDelaySeconds = 2
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Mkvmerge: Mkvmerge{
			Binary:          defaultMkvmergeBinary,
			OutputSuffix:    defaultOutputSuffix,
			OutputExtension: defaultOutputExtension,
		},
		Merge: Merge{
			DefaultLanguage:   defaultLanguage,
			ResetDelaySeconds: defaultResetDelaySeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
