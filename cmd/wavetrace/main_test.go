package main

import (
	"reflect"
	"testing"
)

func TestParseDefinesSplitsKeyValue(t *testing.T) {
	got := parseDefines([]string{"width=64", "name=cam", "malformed"})
	want := map[string]string{"width": "64", "name": "cam"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parseDefines = %v, want %v", got, want)
	}
}

func TestParseDefinesEmpty(t *testing.T) {
	got := parseDefines(nil)
	if len(got) != 0 {
		t.Fatalf("parseDefines(nil) = %v, want empty map", got)
	}
}
