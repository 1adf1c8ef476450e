package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func Test_Execute(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		errPrefix string
	}{
		{
			name:      "help",
			args:      []string{"help"},
			errPrefix: "",
		},
		{
			name:      "completion bash",
			args:      []string{"completion", "bash"},
			errPrefix: "",
		},
		{
			name:      "report help",
			args:      []string{"report", "--help"},
			errPrefix: "",
		},
		{
			name:      "unknown command",
			args:      []string{"__nope__"},
			errPrefix: "unknown command",
		},
	}

	origOut := rootCmd.OutOrStdout()
	origErr := rootCmd.ErrOrStderr()
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)

	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(origOut)
		rootCmd.SetErr(origErr)
	}()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd.SetArgs(tt.args)

			err := rootCmd.Execute()
			if tt.errPrefix != "" {
				if err == nil {
					t.Errorf("err = nil, want \"%s...\"", tt.errPrefix)
				} else if !strings.HasPrefix(err.Error(), tt.errPrefix) {
					t.Errorf("err = %v, want \"%s...\"", err, tt.errPrefix)
				}
			} else if err != nil {
				t.Errorf("err = %v, want nil", err)
			}
		})
	}
}

func Test_Version(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--version"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if want := "loomctl version dev (revision HEAD)\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
