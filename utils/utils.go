package utils

import (
	"errors"
	"io/fs"
	"os"
)

// FileExists reports whether 'filePath' exists. Errors other than
// the file not existing are returned as is.
func FileExists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func CreateDirIfNotExist(dir string) error {
	return os.MkdirAll(dir, 0755)
}
