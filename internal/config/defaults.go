package config

const (
	defaultStateFile          = "~/.local/share/lms/catalog.txt"
	defaultLockTimeoutSeconds = 5
	defaultLogFormat          = "auto"
	defaultLogLevel           = "warn"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateFile: defaultStateFile,
		},
		Lock: Lock{
			TimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
