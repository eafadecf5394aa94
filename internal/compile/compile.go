// Package compile builds C++ sources (solutions, checkers, validators) on
// the host and caches the executables by source sha256, so re-verifying an
// unchanged package never recompiles.
package compile

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/puzpuzpuz/xsync/v3"
)

// Command template from the contest toolchain; testlib.h is on the include
// path for checkers and validators.
const compilerBin = "g++"

var compilerArgs = []string{"--std=c++14", "-O2"}

// Error reports a failed compilation, as opposed to a broken compiler
// invocation. Holds the compiler's combined output for the report.
type Error struct {
	Src    string
	Output string
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to compile %s:\n%s", e.Src, e.Output)
}

type cacheEntry struct {
	done chan struct{}

	execPath string
	err      error
}

type Compiler struct {
	cacheDir   string
	testlibDir string
	entries    *xsync.MapOf[string, *cacheEntry]
}

// New creates a compiler caching executables under cacheDir. testlibDir is
// added to the include path.
func New(cacheDir string, testlibDir string) (*Compiler, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create compile cache dir: %w", err)
	}
	return &Compiler{
		cacheDir:   cacheDir,
		testlibDir: testlibDir,
		entries:    xsync.NewMapOf[string, *cacheEntry](),
	}, nil
}

// Compile returns the path of the executable built from srcPath. Concurrent
// calls for the same source share one compilation; the first caller
// compiles, the rest wait on it.
func (c *Compiler) Compile(srcPath string) (string, error) {
	code, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to read source %s: %w", srcPath, err)
	}
	key := fmt.Sprintf("%x", sha256.Sum256(code))

	entry := &cacheEntry{done: make(chan struct{})}
	if actual, loaded := c.entries.LoadOrStore(key, entry); loaded {
		<-actual.done
		return actual.execPath, actual.err
	}

	entry.execPath, entry.err = c.compile(srcPath, key)
	close(entry.done)
	return entry.execPath, entry.err
}

func (c *Compiler) compile(srcPath string, key string) (string, error) {
	execPath := filepath.Join(c.cacheDir, key)
	if _, err := os.Stat(execPath); err == nil {
		slog.Debug("compile cache hit", "src", srcPath, "sha256", key)
		return execPath, nil
	}

	args := append([]string{srcPath}, compilerArgs...)
	args = append(args, "-I", c.testlibDir, "-o", execPath)

	slog.Info("compiling", "src", srcPath)
	cmd := exec.Command(compilerBin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("failed to run compiler: %w", err)
		}
		return "", &Error{Src: srcPath, Output: string(out)}
	}
	return execPath, nil
}
