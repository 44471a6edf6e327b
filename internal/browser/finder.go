package browser

import (
	"os"
	"path/filepath"
	"runtime"
)

// chromeCandidates returns the places a system Chrome/Chromium install is
// commonly found on the current platform, in preference order.
func chromeCandidates() []string {
	switch runtime.GOOS {
	case "windows":
		var paths []string
		for _, base := range []string{
			os.Getenv("PROGRAMFILES"),
			os.Getenv("PROGRAMFILES(X86)"),
			os.Getenv("LOCALAPPDATA"),
		} {
			if base == "" {
				continue
			}
			paths = append(paths, filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"))
		}
		return paths
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	}
}

// FindChrome locates a usable Chrome executable. An explicit path wins when
// it exists; otherwise the platform candidates are probed in order. Returns
// "" when nothing is found.
func FindChrome(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
	}
	for _, p := range chromeCandidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
