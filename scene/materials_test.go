package scene

import (
	"strings"
	"testing"

	"github.com/sixy6e/wavetrace/bsdf"
	"github.com/sixy6e/wavetrace/scene/loader"
)

func TestNewMaterialsDecodesEveryMaterialElement(t *testing.T) {
	src := `<scene>
		<material name="glass" ior="1.5" ior_k="0" alpha="0.02"/>
		<material name="mirror" ior="100" ior_k="5" reflectance="0.9"/>
	</scene>`
	root, err := loader.Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	mats, err := NewMaterials(root)
	if err != nil {
		t.Fatalf("NewMaterials: %v", err)
	}

	glass, ok := mats.Lookup("glass")
	if !ok {
		t.Fatal("expected a \"glass\" material")
	}
	spm, ok := glass.(*bsdf.SurfaceSPM)
	if !ok {
		t.Fatalf("glass material is %T, want *bsdf.SurfaceSPM", glass)
	}
	if _, ok := spm.Profile.(bsdf.Gaussian); !ok {
		t.Fatalf("glass profile = %T, want Gaussian (alpha>0)", spm.Profile)
	}

	mirror, ok := mats.Lookup("mirror")
	if !ok {
		t.Fatal("expected a \"mirror\" material")
	}
	spm2 := mirror.(*bsdf.SurfaceSPM)
	if _, ok := spm2.Profile.(bsdf.Dirac); !ok {
		t.Fatalf("mirror profile = %T, want Dirac (alpha defaults to 0)", spm2.Profile)
	}
}

func TestNewMaterialsRejectsMissingName(t *testing.T) {
	src := `<scene><material ior="1.5"/></scene>`
	root, err := loader.Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := NewMaterials(root); err == nil {
		t.Fatal("expected an error for a <material> with no name")
	}
}

func TestMaterialsLookupMiss(t *testing.T) {
	root, err := loader.Parse(strings.NewReader(`<scene/>`), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	mats, err := NewMaterials(root)
	if err != nil {
		t.Fatalf("NewMaterials: %v", err)
	}
	if _, ok := mats.Lookup("nope"); ok {
		t.Fatal("expected Lookup miss for an undeclared material")
	}
}
