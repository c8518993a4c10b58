package main

import (
	"testing"

	"subgate/cmd"
)

func TestDefaultVersion(t *testing.T) {
	if version != "dev" {
		t.Errorf("default version = %q, want dev", version)
	}
}

func TestSetVersion(t *testing.T) {
	for _, v := range []string{"dev", "1.0.0", "v2.1.0-beta"} {
		cmd.SetVersion(v)
		if got := cmd.GetVersion(); got != v {
			t.Errorf("GetVersion() = %q, want %q", got, v)
		}
	}
}
