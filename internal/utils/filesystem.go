package utils

import "os"

func DirectoryExists(path string) bool {
	info, error := os.Stat(path)
	if os.IsNotExist(error) {
		return false
	}
	return true && info.IsDir()
}
