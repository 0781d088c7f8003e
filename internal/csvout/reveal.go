package csvout

import (
	"os/exec"
	"path/filepath"
	"runtime"
)

// command is swapped in tests so nothing is launched.
var command = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Reveal opens the folder containing path in the platform's file browser.
// It does not wait for the browser to exit.
func Reveal(path string) error {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return err
	}

	name, args := revealCommand(runtime.GOOS, dir)
	return command(name, args...)
}

func revealCommand(goos, dir string) (string, []string) {
	switch goos {
	case "windows":
		return "explorer", []string{dir}
	case "darwin":
		return "open", []string{dir}
	default:
		return "xdg-open", []string{dir}
	}
}
