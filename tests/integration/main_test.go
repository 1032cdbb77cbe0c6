//go:build integration

// Package integration provides integration tests for the Quill SDK.
package integration

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petal-labs/quill/providers/openai"
)

// buildVersion is stamped into the test binary so the version command can be
// checked end to end.
const buildVersion = "integration"

var (
	// cliBinary is the quill binary every CLI test runs. QUILL_CLI_BINARY
	// selects a prebuilt one; otherwise TestMain builds it.
	cliBinary string

	// cliHome is HOME for CLI runs, so ~/.quill/config.yaml of the machine
	// running the tests is never read.
	cliHome string
)

func TestMain(m *testing.M) {
	os.Exit(runIntegration(m))
}

func runIntegration(m *testing.M) int {
	tmpDir, err := os.MkdirTemp("", "quill-integration")
	if err != nil {
		log.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cliHome = filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(cliHome, 0o755); err != nil {
		log.Fatalf("create home: %v", err)
	}

	cliBinary = os.Getenv("QUILL_CLI_BINARY")
	if cliBinary == "" {
		cliBinary, err = buildCLI(tmpDir)
		if err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("integration: binary=%s model=%s edits=%t token=%t",
		cliBinary, completionModel(), editsEnabled(), os.Getenv(openai.DefaultAPIKeyEnvVar) != "")
	return m.Run()
}

// buildCLI compiles ./cli/cmd/quill with the version stamped.
func buildCLI(dir string) (string, error) {
	root, err := moduleRoot()
	if err != nil {
		return "", err
	}

	bin := filepath.Join(dir, "quill")
	ldflags := "-X github.com/petal-labs/quill/cli/commands.Version=" + buildVersion
	cmd := exec.Command("go", "build", "-ldflags", ldflags, "-o", bin, "./cli/cmd/quill")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("build quill: %v\n%s", err, out)
	}
	return bin, nil
}

// moduleRoot asks the go tool for the directory of the main module.
func moduleRoot() (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command("go", "list", "-m", "-f", "{{.Dir}}")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("locate module root: %v\n%s", err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}
