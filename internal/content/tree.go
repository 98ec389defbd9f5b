package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Source files whose contents are worth showing to the model.
var allowedExtensions = []string{".json", ".js", ".ts", ".html", ".css"}

// Dependency cache folder that is never worth traversing.
const depsDir = "node_modules"

// WalkTree renders the directory structure under root as an indented
// outline, pruning node_modules and listing only allow-listed source files.
// With includeContents, each listed file's full text follows the outline,
// labeled with its path relative to root. A file that cannot be read gets
// an inline error message instead; the walk never aborts part-way.
func WalkTree(root string, includeContents bool) string {
	var tree []string
	var contents strings.Builder

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are dropped from the outline; partial
			// results are still useful to the model.
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		level := 0
		if rel != "." {
			level = strings.Count(rel, string(os.PathSeparator)) + 1
		}
		indent := strings.Repeat("  ", level)

		if d.IsDir() {
			if rel != "." && d.Name() == depsDir {
				return fs.SkipDir
			}
			tree = append(tree, indent+"* "+d.Name())
			return nil
		}

		if !allowedExtension(d.Name()) {
			return nil
		}
		tree = append(tree, indent+"* "+d.Name())

		if includeContents {
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				fmt.Fprintf(&contents, "\nError reading file %s: %s\n", rel, readErr)
			} else {
				fmt.Fprintf(&contents, "\n%s:\n%s\n", rel, data)
			}
		}

		return nil
	})

	out := "Directory Tree: \n" + strings.Join(tree, "\n")
	if includeContents {
		out += "\n\nFile contents: \n" + contents.String()
	}
	return out
}

func allowedExtension(name string) bool {
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
