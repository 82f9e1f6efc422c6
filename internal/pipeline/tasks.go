package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/bol-annotator/constants"
)

// vlmTask is one page's work item for a VLM-backed stage. Paths that a
// given stage does not consume stay empty.
type vlmTask struct {
	Stem     string
	Image    string
	OCR      string
	Grouping string
	Output   string
}

// findImage resolves the page image for an artifact stem, probing the
// known extensions in order.
func findImage(imageDir, stem string) (string, bool) {
	for _, ext := range constants.ImageExtensions {
		candidate := filepath.Join(imageDir, stem+ext)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// listByExt returns the files under dir (recursively) whose extension is in
// exts, sorted for deterministic processing order.
func listByExt(dir string, exts []string) ([]string, error) {
	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = struct{}{}
	}

	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; ok {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// exists reports whether the output artifact is already on disk, which is
// the skip test every stage shares.
func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
