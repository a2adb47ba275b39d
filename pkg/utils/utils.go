package utils

import (
	"os"
)

func PathExists(d string) bool {
	_, err := os.Stat(d)
	if err != nil && os.IsNotExist(err) {
		return false
	}
	return true
}

func IsDir(d string) bool {
	s, err := os.Stat(d)
	if err != nil {
		return false
	}
	return s.IsDir()
}
