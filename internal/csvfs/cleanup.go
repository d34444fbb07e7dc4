package csvfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Cleanup deletes CSV files under dir, recursively, that are older than
// the retention window. A missing directory is not an error; there is
// simply nothing to clean.
func Cleanup(dir string, retentionDays int, log zerolog.Logger) (deleted int, err error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Warn().Str("dir", dir).Msg("Directory does not exist, skipping cleanup")
		return 0, nil
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".csv") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Failed to stat file")
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.Error().Err(err).Str("file", path).Msg("Failed to delete old file")
			return nil
		}
		deleted++
		log.Info().Str("file", path).Msg("Deleted old file")
		return nil
	})
	return deleted, nil
}
