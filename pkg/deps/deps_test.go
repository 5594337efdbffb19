package deps

import (
	"bufio"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

var mockCmdExitStatus = 0

func fakeExecCommand(command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.Command(os.Args[0], cs...)
	es := strconv.Itoa(mockCmdExitStatus)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "EXIT_STATUS=" + es}
	return cmd
}

// TestHelperProcess is not a real test. It is a helper process for faking exec.Command.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	es, err := strconv.Atoi(os.Getenv("EXIT_STATUS"))
	if err != nil {
		t.Fatalf("Failed to convert EXIT_STATUS to int: %v", err)
	}
	os.Exit(es)
}

func TestCheckRoot(t *testing.T) {
	origGeteuid := geteuid
	defer func() { geteuid = origGeteuid }()

	geteuid = func() int { return 0 }
	if err := CheckRoot(); err != nil {
		t.Errorf("Unexpected error for euid 0: %v", err)
	}

	geteuid = func() int { return 1000 }
	if err := CheckRoot(); err == nil {
		t.Errorf("Expected error for euid 1000")
	}
}

func TestEnsureTools(t *testing.T) {
	origLookPath := lookPath
	origExecCommand := execCommand
	defer func() {
		lookPath = origLookPath
		execCommand = origExecCommand
		mockCmdExitStatus = 0
	}()
	execCommand = fakeExecCommand

	for _, tc := range []struct {
		testName      string
		missing       bool
		input         string
		installStatus int
		expectError   bool
	}{
		{"TestAllPresent", false, "", 0, false},
		{"TestMissingRefused", true, "n\n", 0, true},
		{"TestMissingInstalled", true, "y\n", 0, false},
		{"TestMissingInstallFails", true, "y\n", 1, true},
	} {
		t.Run(tc.testName, func(t *testing.T) {
			lookPath = func(file string) (string, error) {
				if tc.missing {
					return "", errors.Errorf("%s not found", file)
				}
				return "/usr/bin/" + file, nil
			}
			mockCmdExitStatus = tc.installStatus

			// Each missing tool consumes one answer.
			input := strings.Repeat(tc.input, len(RequiredTools))
			err := EnsureTools(bufio.NewReader(strings.NewReader(input)))
			if tc.expectError && err == nil {
				t.Errorf("Expected error, got nil")
			}
			if !tc.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestRequiredToolsHavePackages(t *testing.T) {
	for _, tool := range RequiredTools {
		if tool.Executable == "" || tool.Package == "" {
			t.Errorf("Incomplete tool entry: %+v", tool)
		}
	}
}
