package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Getwd finds the project root (the directory holding go.mod).
// go-test changes the working directory to the package being tested, so walk up from there.
// Falls back to the working directory when no go.mod is found (eg. a deployed binary).
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

// CleanTags trims tags and drops empty & duplicate ones, keeping the original order.
func CleanTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	cleaned := lo.Uniq(lo.Map(tags, func(t string, _ int) string { return CleanString(t) }))
	return lo.Filter(cleaned, func(t string, _ int) bool { return t != "" })
}
