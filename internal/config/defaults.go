package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Addr:               "localhost:8081",
			ConnectTimeoutMS:   5000,
			ReplyTimeoutMS:     5000,
			ReceiveBufferBytes: 1024,
		},
		Demo: DemoConfig{
			StartupSettleMS:       3000,
			LoadSettleMS:          2000,
			MidLoadPercent:        50,
			RestrictedLoadPercent: 10,
		},
		Watch: WatchConfig{IntervalMS: 2000},
		Shell: ShellConfig{HistoryLimit: 500},
	}
}
