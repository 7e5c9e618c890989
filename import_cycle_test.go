//go:build unit

package xmldsig

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePath = "github.com/philiph/xmldsig"

// TestImportCycle_NoInternalImportsRoot verifies that no internal package
// imports the root package, which would create an import cycle
// (root -> internal -> root).
func TestImportCycle_NoInternalImportsRoot(t *testing.T) {
	violations := findImports(t, "internal", func(imp string) bool {
		return imp == modulePath
	})

	if len(violations) > 0 {
		t.Errorf("Found %d internal package files that import root package:", len(violations))
		for file, imports := range violations {
			t.Errorf("  - %s imports: %v", file, imports)
		}
		t.Errorf("Root package re-exports are for external consumers, not for internal packages.")
	}
}

// TestImportBoundary_CoreDoesNotImportAdapters verifies the core packages
// depend only on ports, never on concrete adapters.
func TestImportBoundary_CoreDoesNotImportAdapters(t *testing.T) {
	adapters := modulePath + "/internal/adapters/"
	violations := findImports(t, filepath.Join("internal", "core"), func(imp string) bool {
		return strings.HasPrefix(imp, adapters)
	})

	if len(violations) > 0 {
		t.Errorf("Found %d core files that import adapters:", len(violations))
		for file, imports := range violations {
			t.Errorf("  - %s imports: %v", file, imports)
		}
		t.Errorf("Core packages must depend on ports; adapters are wired by callers.")
	}
}

// findImports returns, per non-test Go file under dir, the imports that
// match.
func findImports(t *testing.T, dir string, match func(string) bool) map[string][]string {
	t.Helper()

	files, err := findGoFiles(dir)
	if err != nil {
		t.Fatalf("Failed to find files under %s: %v", dir, err)
	}
	if len(files) == 0 {
		t.Fatalf("No Go files found under %s", dir)
	}

	violations := make(map[string][]string)
	for _, file := range files {
		imports, err := parseImports(file)
		if err != nil {
			t.Logf("Warning: Failed to parse %s: %v", file, err)
			continue
		}
		for _, imp := range imports {
			if match(imp) {
				violations[file] = append(violations[file], imp)
			}
		}
	}
	return violations
}

// findGoFiles finds all non-test .go files in a directory recursively.
func findGoFiles(rootDir string) ([]string, error) {
	var goFiles []string

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			goFiles = append(goFiles, path)
		}
		return nil
	})

	return goFiles, err
}

// parseImports extracts import paths from a Go source file.
func parseImports(filePath string) ([]string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}

	var imports []string
	for _, imp := range file.Imports {
		imports = append(imports, strings.Trim(imp.Path.Value, `"`))
	}
	return imports, nil
}
