package feather_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/feather-lang/feather"
)

func TestLoadYAMLConfig(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	src := []byte("name: sample\ncount: 3\nenabled: true\n")
	if err := interp.LoadYAMLConfig(src); err != nil {
		t.Fatalf("LoadYAMLConfig failed: %v", err)
	}

	got := map[string]string{
		"name":    interp.Var("name").String(),
		"count":   interp.Var("count").String(),
		"enabled": interp.Var("enabled").String(),
	}
	want := map[string]string{
		"name":    "sample",
		"count":   "3",
		"enabled": "1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadYAMLConfig variables mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAMLConfigRejectsMalformedDocument(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	err := interp.LoadYAMLConfig([]byte("not: [valid: yaml"))
	if err == nil {
		t.Fatal("expected an error for malformed YAML, got nil")
	}
}
