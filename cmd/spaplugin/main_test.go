package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestListCmdMissingLibraryReportsError(t *testing.T) {
	var libPath string
	cmd := newListCmd(&libPath)
	cmd.SetArgs(nil)
	var out bytes.Buffer
	cmd.SetOut(&out)

	libPath = "/no/such/plugin.so"
	err := cmd.RunE(cmd, nil)
	if err == nil {
		t.Fatal("expected an error for a nonexistent library")
	}
	if !strings.Contains(err.Error(), "/no/such/plugin.so") {
		t.Fatalf("error %q does not mention the missing path", err)
	}
}

func TestInitCmdMissingLibraryReportsError(t *testing.T) {
	var libPath string
	cmd := newInitCmd(&libPath)
	var out bytes.Buffer
	cmd.SetOut(&out)

	libPath = "/no/such/plugin.so"
	err := cmd.RunE(cmd, nil)
	if err == nil {
		t.Fatal("expected an error for a nonexistent library")
	}
}

func TestNewLoaderUsesProcessEnvironment(t *testing.T) {
	l := newLoader()
	if l == nil {
		t.Fatal("newLoader returned nil")
	}
}
