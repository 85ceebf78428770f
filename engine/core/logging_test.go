package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestErrorsWithPercentSignsAreLoggedVerbatim(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(io.Discard)

	err := fmt.Errorf("resource cache at 100%% of %d bytes", 64)
	LogError("%v", err)
	if out := buf.String(); !strings.Contains(out, "resource cache at 100% of 64 bytes") || strings.Contains(out, "%!") {
		t.Errorf("unexpected log line %q", out)
	}
}

func TestSetLogLevel(t *testing.T) {
	SetLogOutput(io.Discard)
	defer SetLogLevel("info")

	if !SetLogLevel(" DEBUG ") {
		t.Errorf("expected debug to be accepted")
	}
	if SetLogLevel("chatty") {
		t.Errorf("expected an unknown level to be refused")
	}
}
