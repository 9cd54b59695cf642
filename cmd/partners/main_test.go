package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"partners-cli/internal/cli"
)

func TestRun(t *testing.T) {
	t.Setenv("PARTNERS_CONFIG_DIR", t.TempDir())
	t.Setenv("PARTNERS_FORMAT", "")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "countries",
			args:       []string{"users", "countries"},
			wantCode:   cli.ExitOK,
			wantStdout: `"Argentina"`,
		},
		{
			name:       "unknown flag is printed once",
			args:       []string{"users", "list", "--bogus"},
			wantCode:   cli.ExitFailure,
			wantStderr: "Error: unknown flag: --bogus",
		},
		{
			name:       "missing argument",
			args:       []string{"users", "show"},
			wantCode:   cli.ExitFailure,
			wantStderr: "accepts 1 arg(s), received 0",
		},
		{
			name:       "invalid input",
			args:       []string{"--endpoint", "http://127.0.0.1:1", "users", "create"},
			wantCode:   cli.ExitInvalid,
			wantStderr: "User Name is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(context.Background(), tc.args, &out, &errOut)
			if code != tc.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr=%s)", code, tc.wantCode, errOut.String())
			}
			if tc.wantStdout != "" && !strings.Contains(out.String(), tc.wantStdout) {
				t.Fatalf("stdout missing %q:\n%s", tc.wantStdout, out.String())
			}
			if tc.wantStderr != "" && !strings.Contains(errOut.String(), tc.wantStderr) {
				t.Fatalf("stderr missing %q:\n%s", tc.wantStderr, errOut.String())
			}
			if strings.Count(errOut.String(), "Error:") > 1 {
				t.Fatalf("error printed more than once:\n%s", errOut.String())
			}
		})
	}
}
