package main

import "testing"

func TestConfigName(t *testing.T) {
	if got := configName(""); got != "built-in reference config" {
		t.Fatalf("configName(\"\") = %q; want the built-in label", got)
	}
	if got := configName("configs/pipeline.json"); got != "configs/pipeline.json" {
		t.Fatalf("configName(path) = %q; want the path echoed", got)
	}
}
