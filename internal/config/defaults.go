package config

// Scanner mode values accepted by [scanner] mode.
const (
	ModeDualScan    = "dual_scan"
	ModeSingleSplit = "single_split"
)

// Default returns the repository default configuration.
func Default() Config {
	return Config{
		Cities: map[string]string{},
		Scanner: Scanner{
			Mode:                 ModeDualScan,
			StabilizePollMS:      100,
			StabilizeMaxPolls:    30,
			NavigationDebounceMS: 300,
			StatsWindowSeconds:   300,
			StatsWindowEvents:    50,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
