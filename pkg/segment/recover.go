package segment

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// RecoverStale renames the temporary segments found in dir to their final paths.
// Temporary segments are left behind when the process is killed.
// It returns the final paths of recovered segments.
func RecoverStale(dir string, tempSuffix string) ([]string, error) {
	if tempSuffix == "" {
		tempSuffix = DefaultTempSuffix
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var ret []string

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}

		name, ok := strings.CutSuffix(e.Name(), tempSuffix)
		if !ok || !strings.HasSuffix(name, ".ts") {
			continue
		}

		finalPath := filepath.Join(dir, name)

		_, err = os.Stat(finalPath)
		if err == nil {
			continue
		}

		err = os.Rename(filepath.Join(dir, e.Name()), finalPath)
		if err != nil {
			return ret, err
		}

		ret = append(ret, finalPath)
	}

	return ret, nil
}
