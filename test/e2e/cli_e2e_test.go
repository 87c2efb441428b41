package e2e

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// newBlogServer serves post 1 by user 7, who wrote three posts. Post 2
// references a user the server does not know.
func newBlogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":1,"userId":7,"title":"hello"}`)
	})
	mux.HandleFunc("/posts/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":2,"userId":99,"title":"orphan"}`)
	})
	mux.HandleFunc("/users/7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":7,"name":"Ada Lovelace","email":"ada@example.com"}`)
	})
	mux.HandleFunc("/users/7/posts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":1,"userId":7},{"id":3,"userId":7},{"id":4,"userId":7}]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestCLI_E2E verifies the built binary against a local blog API.
func TestCLI_E2E(t *testing.T) {
	tmpDir := t.TempDir()
	binName := "postchain"
	if runtime.GOOS == "windows" {
		binName = "postchain.exe"
	}
	binPath := filepath.Join(tmpDir, binName)

	// go test runs in test/e2e; build from the module root.
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/postchain")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build postchain: %v", err)
	}

	base := newBlogServer(t).URL

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring match (case-insensitive)
		wantCode int
	}{
		{
			name:     "Main-safe chain",
			args:     []string{"--base-url", base},
			wantOut:  "User Ada Lovelace made 3 posts",
			wantCode: 0,
		},
		{
			name:     "All variants",
			args:     []string{"--base-url", base, "--variant", "all"},
			wantOut:  "Run Summary",
			wantCode: 0,
		},
		{
			name:     "Quiet callback chain",
			args:     []string{"--base-url", base, "--variant", "callback", "--quiet"},
			wantOut:  "User Ada Lovelace made 3 posts",
			wantCode: 0,
		},
		{
			name:     "Missing author",
			args:     []string{"--base-url", base, "--post-id", "2", "--variant", "structured"},
			wantOut:  "chain failed",
			wantCode: 3,
		},
		{
			name:     "Prime task",
			args:     []string{"--prime", "--prime-bits", "256", "--quiet"},
			wantOut:  "Time taken (ms):",
			wantCode: 0,
		},
		{
			name:     "Help",
			args:     []string{"--help"},
			wantOut:  "usage",
			wantCode: 0,
		},
		{
			name:     "Invalid variant",
			args:     []string{"--variant", "threads"},
			wantOut:  "unknown variant",
			wantCode: 4,
		},
		{
			name:     "Version Flag",
			args:     []string{"--version"},
			wantOut:  "postchain",
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			code := 0
			if exitErr, ok := err.(*exec.ExitError); ok {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput: %s", code, tt.wantCode, outStr)
			}
			if !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}
		})
	}
}
