package config

const (
	defaultStateDir                = "~/.local/share/optdrive/state"
	defaultLogDir                  = "~/.local/share/optdrive/logs"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultDriverName              = "optdrive"
	defaultProgressIntervalSeconds = 30
	defaultCommandTimeoutSeconds   = 600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Driver: Driver{
			Name: defaultDriverName,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Commands: Commands{
			TimeoutSeconds: defaultCommandTimeoutSeconds,
		},
		Workflow: Workflow{
			ProgressIntervalSeconds: defaultProgressIntervalSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
