//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/huangsam/seobench/schema"
	"github.com/stretchr/testify/require"
)

var (
	// sharedSeobenchPath holds the path to a shared seobench binary built once for all tests.
	sharedSeobenchPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getSeobenchBinary returns the path to the seobench binary, building it once if needed.
func getSeobenchBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "seobench-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		seobenchPath := filepath.Join(tempDir, "seobench")
		buildCmd := exec.Command("go", "build", "-o", seobenchPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build seobench: %v", err))
		}

		sharedSeobenchPath = seobenchPath
	})

	return sharedSeobenchPath
}

const perfHeader = "Page,Clicks (current),Clicks (prior),Impressions (current),Impressions (prior),New users (current),New users (prior),Key events (current),Key events (prior)\n"

var perfRows = map[schema.Bucket]string{
	schema.ServiceBucket:    "https://example.com/services/drains/,40,32,900,800,12,10,3,2\n",
	schema.LocationBucket:   "https://example.com/locations/austin/,15,15,300,250,4,5,1,0\n",
	schema.SupportingBucket: "https://example.com/blog/clogged-drain/,5,10,120,200,2,3,0,0\n",
}

const metadataCSV = `Address,Type,Title 1,Meta Description 1,H1-1
https://example.com/services/drains/,Service,Drain Cleaning Services,Drain cleaning,Drain Cleaning
https://example.com/locations/austin/,Location,Austin Plumbers,Our Austin office,Austin Office
https://example.com/blog/clogged-drain/,Supporting,Clogged Drain Tips,How to fix,Clogged Drain Tips
`

// writeFixtures writes nine performance exports and a metadata export under a temp dir.
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, w := range schema.AllWindows {
		for _, b := range schema.AllBuckets {
			path := filepath.Join(dir, schema.DefaultInputFile(w, b))
			require.NoError(t, os.WriteFile(path, []byte(perfHeader+perfRows[b]), 0o644))
		}
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, schema.DefaultMetadataFile), []byte(metadataCSV), 0o644))
	return dir
}

// runSeobench runs the binary from dir and returns its stdout.
func runSeobench(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getSeobenchBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
		return stdout.String(), err
	}
	return stdout.String(), nil
}
