package loader

import (
	"strings"
	"testing"
)

func TestParseNestedElements(t *testing.T) {
	src := `<scene><shape type="mesh" name="floor"><bsdf type="lambertian"/></shape></scene>`
	root, err := Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Name != "scene" {
		t.Fatalf("root.Name = %q, want scene", root.Name)
	}
	shape := root.Find("shape")
	if shape == nil {
		t.Fatal("expected a shape child")
	}
	if v, _ := shape.Attr("name"); v != "floor" {
		t.Fatalf("shape name = %q, want floor", v)
	}
	if shape.Find("bsdf") == nil {
		t.Fatal("expected a bsdf child of shape")
	}
}

func TestParseDefineSubstitution(t *testing.T) {
	src := `<scene><shape width="$w"/></scene>`
	root, err := Parse(strings.NewReader(src), map[string]string{"w": "4"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, _ := root.Find("shape").Attr("width")
	if got != "4" {
		t.Fatalf("width = %q, want 4", got)
	}
}

func TestParseInFileDefine(t *testing.T) {
	src := `<scene><define name="n" value="64"/><sensor width="$n"/></scene>`
	root, err := Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, _ := root.Find("sensor").Attr("width")
	if got != "64" {
		t.Fatalf("width = %q, want 64", got)
	}
}

func TestParseUndefinedSubstitutionErrors(t *testing.T) {
	src := `<scene><shape width="$missing"/></scene>`
	if _, err := Parse(strings.NewReader(src), nil); err == nil {
		t.Fatal("expected an error for an undefined $missing reference")
	}
}

func TestParseUnbalancedTagsErrors(t *testing.T) {
	src := `<scene><shape></scene>`
	if _, err := Parse(strings.NewReader(src), nil); err == nil {
		t.Fatal("expected an error for unbalanced tags")
	}
}

func TestFindAllReturnsEveryMatch(t *testing.T) {
	src := `<scene><shape name="a"/><shape name="b"/><sensor/></scene>`
	root, err := Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	shapes := root.FindAll("shape")
	if len(shapes) != 2 {
		t.Fatalf("len(shapes) = %d, want 2", len(shapes))
	}
}
