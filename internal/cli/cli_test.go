package cli

import (
	"testing"

	"github.com/artifactrelay/connector/internal/descriptor"
)

func TestNewGetCmd(t *testing.T) {
	cmd := newGetCmd()
	if cmd == nil {
		t.Fatal("newGetCmd() returned nil")
	}
	if cmd.Use != "get <remote-path> <local-path> [remote-path local-path]..." {
		t.Errorf("Use = %q", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description is empty")
	}
	if cmd.RunE == nil {
		t.Error("RunE function is nil")
	}
	if cmd.Flags().Lookup("existence-check") == nil {
		t.Error("--existence-check flag not found")
	}
}

func TestNewPutCmd(t *testing.T) {
	cmd := newPutCmd()
	if cmd == nil {
		t.Fatal("newPutCmd() returned nil")
	}
	if cmd.Use != "put <local-path> <remote-path> [local-path remote-path]..." {
		t.Errorf("Use = %q", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description is empty")
	}
	if cmd.RunE == nil {
		t.Error("RunE function is nil")
	}
}

func TestGetCmdRejectsOddArgCount(t *testing.T) {
	cmd := newGetCmd()
	if err := cmd.Args(cmd, []string{"only-one"}); err == nil {
		t.Error("Args() = nil, want error for an odd number of path arguments")
	}
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("Args() = nil, want error for zero path arguments")
	}
	if err := cmd.Args(cmd, []string{"remote", "local"}); err != nil {
		t.Errorf("Args() error = %v, want nil for a matched pair", err)
	}
}

func TestPutCmdRejectsOddArgCount(t *testing.T) {
	cmd := newPutCmd()
	if err := cmd.Args(cmd, []string{"only-one"}); err == nil {
		t.Error("Args() = nil, want error for an odd number of path arguments")
	}
	if err := cmd.Args(cmd, []string{"local", "remote"}); err != nil {
		t.Errorf("Args() error = %v, want nil for a matched pair", err)
	}
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	if cmd == nil {
		t.Fatal("NewRootCmd() returned nil")
	}
	if cmd.Use != "artifact-connector" {
		t.Errorf("Use = %q", cmd.Use)
	}

	found := map[string]bool{}
	for _, sub := range cmd.Commands() {
		found[sub.Name()] = true
	}
	for _, want := range []string{"get", "put"} {
		if !found[want] {
			t.Errorf("subcommand %q not registered on root", want)
		}
	}

	for _, flag := range []string{"url", "content-type", "checksum-policy", "disable-resume", "max-retries"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s not found", flag)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in   string
		want descriptor.ChecksumPolicy
	}{
		{"strict", descriptor.PolicyStrict},
		{"warn", descriptor.PolicyWarn},
		{"ignore", descriptor.PolicyIgnore},
		{"bogus", descriptor.PolicyStrict},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			if got := parsePolicy(c.in); got != c.want {
				t.Errorf("parsePolicy(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}
