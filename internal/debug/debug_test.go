package debug

import (
	"bytes"
	"testing"
)

// capture redirects both streams for the duration of the test.
func capture(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	oldOut, oldErr := stdout, stderr
	oldEnabled, oldVerbose, oldQuiet := enabled, verboseMode, quietMode
	t.Cleanup(func() {
		stdout, stderr = oldOut, oldErr
		enabled, verboseMode, quietMode = oldEnabled, oldVerbose, oldQuiet
	})
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	stdout, stderr = out, errOut
	enabled, verboseMode, quietMode = false, false, false
	return out, errOut
}

func TestLogfAndPrintf(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		verbose bool
		want    string
	}{
		{"silent by default", false, false, ""},
		{"env enabled", true, false, "msg: hello\n"},
		{"verbose flag", false, true, "msg: hello\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := capture(t)
			enabled = tt.enabled
			SetVerbose(tt.verbose)

			Logf("msg: %s\n", "hello")
			Printf("msg: %s\n", "hello")

			if errOut.String() != tt.want {
				t.Errorf("Logf wrote %q, want %q", errOut.String(), tt.want)
			}
			if out.String() != tt.want {
				t.Errorf("Printf wrote %q, want %q", out.String(), tt.want)
			}
			if Enabled() != (tt.want != "") {
				t.Errorf("Enabled() = %v", Enabled())
			}
		})
	}
}

func TestQuietSuppressesNormalOutput(t *testing.T) {
	out, _ := capture(t)

	PrintNormal("synced %d\n", 3)
	PrintlnNormal("done")
	if out.String() != "synced 3\ndone\n" {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	SetQuiet(true)
	if !IsQuiet() {
		t.Fatal("IsQuiet() = false after SetQuiet(true)")
	}
	PrintNormal("synced %d\n", 3)
	PrintlnNormal("done")
	if out.Len() != 0 {
		t.Errorf("quiet mode wrote %q", out.String())
	}
}
