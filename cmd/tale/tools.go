package main

import (
	"os"
	"path/filepath"
)

// defaultTools returns tools.yaml beside the story when it exists.
func defaultTools(story string) string {
	candidate := filepath.Join(filepath.Dir(story), "tools.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}
