package paramconfig

import (
	"io/fs"
	"strings"
	"testing"
)

func TestRuntimeAssetsFSContainsRuntime(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), RuntimeScript)
	if err != nil {
		t.Fatalf("expected runtime script to be readable: %v", err)
	}
	for _, want := range []string{"paramconfig-form", `type: "input"`, `type: "click"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("runtime script missing %q", want)
		}
	}
}
