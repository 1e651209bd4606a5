package loader_test

import (
	"os"
	"path/filepath"

	"github.com/bazelbuild/rules_go/go/tools/bazel"
)

// testdata returns the path of a fixture. Under Bazel the fixture comes
// from runfiles, otherwise from the package directory.
func testdata(name string) string {
	if p, err := bazel.Runfile(filepath.Join("internal/loader/testdata", name)); err == nil {
		return p
	}
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join("testdata", name)
	}
	return filepath.Join(cwd, "testdata", name)
}
