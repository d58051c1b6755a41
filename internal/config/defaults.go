package config

const (
	defaultAuthURL            = "https://api.clipo.app/api"
	defaultVideoURL           = "https://api.clipo.app/api"
	defaultTimeoutSeconds     = 30
	defaultDataDir            = "~/.local/share/clipo"
	defaultDownloadDir        = "~/clips"
	defaultLogDir             = "~/.local/share/clipo/logs"
	defaultStatusPollInterval = 2
	defaultWatchTimeout       = 60
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			AuthURL:        defaultAuthURL,
			VideoURL:       defaultVideoURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Paths: Paths{
			DataDir:     defaultDataDir,
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
		},
		Workflow: Workflow{
			StatusPollInterval: defaultStatusPollInterval,
			WatchTimeout:       defaultWatchTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
