package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// mainFileExtensions is the whitelist of payload file types the portal's
// report archives are known to contain.
var mainFileExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".txt":  true,
}

// LocateMainFile finds the payload file inside an extraction directory. It
// scans the top level first and then descends exactly one level into
// subdirectories; the first matching file wins.
func LocateMainFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read extraction dir: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() && isMainFile(e.Name()) {
			return filepath.Join(dir, e.Name()), nil
		}
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		subEntries, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		for _, se := range subEntries {
			if !se.IsDir() && isMainFile(se.Name()) {
				return filepath.Join(sub, se.Name()), nil
			}
		}
	}

	return "", fmt.Errorf("no file with extension %v found in %s", extensionList(), dir)
}

func isMainFile(name string) bool {
	return mainFileExtensions[strings.ToLower(filepath.Ext(name))]
}

func extensionList() []string {
	exts := make([]string, 0, len(mainFileExtensions))
	for ext := range mainFileExtensions {
		exts = append(exts, ext)
	}
	return exts
}
