package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	if res, ok := checkIsDir(name, path); !ok {
		return res
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckCreatableDirectory verifies that path is a writable directory, or that
// its nearest existing ancestor is, so the directory can be created.
func CheckCreatableDirectory(name, path string) Result {
	existing := path
	for {
		info, err := os.Stat(existing)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, existing)}
			}
			break
		}
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
		}
		existing = parent
	}

	if err := unix.Access(existing, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s not writable: %v)", path, existing, err)}
	}
	if existing == path {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (write ok)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created under %s)", path, existing)}
}

func checkIsDir(name, path string) (Result, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}, false
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}, false
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}, false
	}
	return Result{}, true
}
