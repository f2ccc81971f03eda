package config

import (
	"fmt"
	"os"
	"strings"

	"folio/internal/services"
)

var cityCodeDigits = func(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Validate checks structural requirements that must hold before the pipeline
// starts. Failures here are fatal at startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.ScanDir) == "" {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "scan_folder is required", nil)
	}
	if info, err := os.Stat(c.Paths.ScanDir); err != nil || !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			fmt.Sprintf("scan_folder %q is not a readable directory", c.Paths.ScanDir), err)
	}
	if strings.TrimSpace(c.Paths.BooksDir) == "" {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "todays_books_folder is required", nil)
	}

	switch c.Scanner.Mode {
	case ModeDualScan, ModeSingleSplit:
	default:
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			fmt.Sprintf("scanner mode %q is not one of %q, %q", c.Scanner.Mode, ModeDualScan, ModeSingleSplit), nil)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			fmt.Sprintf("log format %q is not one of console, json", c.Logging.Format), nil)
	}

	for code := range c.Cities {
		if !cityCodeDigits(code) {
			return services.Wrap(services.ErrConfiguration, "config", "validate",
				fmt.Sprintf("city code %q must be exactly three digits", code), nil)
		}
	}
	return nil
}
