package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFileAtomic replaces filename with data. The snapshot is staged next
// to the save file and renamed into place, so a crash mid-save leaves the
// previous game loadable.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	staged, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to stage save: %w", err)
	}
	stagedPath := staged.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(stagedPath)
		}
	}()

	if _, err = staged.Write(data); err != nil {
		_ = staged.Close()
		return fmt.Errorf("failed to write staged save: %w", err)
	}
	if err = staged.Sync(); err != nil {
		_ = staged.Close()
		return fmt.Errorf("failed to sync staged save: %w", err)
	}
	if err = staged.Close(); err != nil {
		return fmt.Errorf("failed to close staged save: %w", err)
	}
	if err = os.Chmod(stagedPath, perm); err != nil {
		return fmt.Errorf("failed to set save permissions: %w", err)
	}
	if err = os.Rename(stagedPath, filename); err != nil {
		return fmt.Errorf("failed to move save into place: %w", err)
	}
	return nil
}
