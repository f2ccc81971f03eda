package config

import (
	"path/filepath"
	"strings"
)

// normalize expands paths, fills derived defaults, and canonicalizes values
// before validation runs.
func (c *Config) normalize() error {
	var err error
	if c.Paths.ScanDir, err = expandPath(c.Paths.ScanDir); err != nil {
		return err
	}
	if c.Paths.BooksDir, err = expandPath(c.Paths.BooksDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.BackupDir, err = expandPath(c.Paths.BackupDir); err != nil {
		return err
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return err
	}

	if c.Paths.LogDir == "" {
		if home, homeErr := expandPath("~/.local/share/folio/logs"); homeErr == nil {
			c.Paths.LogDir = home
		}
	}
	if c.Paths.BackupDir == "" && c.Paths.ScanDir != "" {
		c.Paths.BackupDir = filepath.Join(c.Paths.ScanDir, ".backups")
	}
	if c.Paths.LedgerPath == "" && c.Paths.BooksDir != "" {
		c.Paths.LedgerPath = filepath.Join(c.Paths.BooksDir, "books_complete_log.json")
	}

	c.Scanner.Mode = strings.ToLower(strings.TrimSpace(c.Scanner.Mode))
	if c.Scanner.Mode == "" {
		c.Scanner.Mode = ModeDualScan
	}
	if c.Scanner.StabilizePollMS <= 0 {
		c.Scanner.StabilizePollMS = Default().Scanner.StabilizePollMS
	}
	if c.Scanner.StabilizeMaxPolls <= 0 {
		c.Scanner.StabilizeMaxPolls = Default().Scanner.StabilizeMaxPolls
	}
	if c.Scanner.NavigationDebounceMS <= 0 {
		c.Scanner.NavigationDebounceMS = Default().Scanner.NavigationDebounceMS
	}
	if c.Scanner.StatsWindowSeconds <= 0 {
		c.Scanner.StatsWindowSeconds = Default().Scanner.StatsWindowSeconds
	}
	if c.Scanner.StatsWindowEvents <= 0 {
		c.Scanner.StatsWindowEvents = Default().Scanner.StatsWindowEvents
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Cities == nil {
		c.Cities = map[string]string{}
	}
	for code, root := range c.Cities {
		expanded, err := expandPath(root)
		if err != nil {
			return err
		}
		c.Cities[code] = expanded
	}
	return nil
}
