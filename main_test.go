package main

import (
	"testing"

	"teamdocs/cmd"
)

func TestVersion(t *testing.T) {
	if version != "dev" {
		t.Errorf("Expected default version to be 'dev', got %s", version)
	}
}

func TestSetVersionPropagates(t *testing.T) {
	original := version
	defer func() {
		version = original
		cmd.SetVersion(original)
	}()

	for _, v := range []string{"1.0.0", "v2.0.0-rc1"} {
		version = v
		cmd.SetVersion(version)
		if got := cmd.GetVersion(); got != v {
			t.Errorf("Expected cmd version %s, got %s", v, got)
		}
	}
}
