package utils

import "path/filepath"

// GetPathInfo resolves relPath (a source file passed on the command line,
// possibly relative) to an absolute path and the directory it lives in, so
// callers can load sibling files without depending on the process's current
// working directory.
func GetPathInfo(relPath string) (fullPath, parentDir string, err error) {
	abs, err := filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	return abs, filepath.Dir(abs), nil
}
