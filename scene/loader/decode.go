package loader

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	stgpsr "github.com/yuin/stagparser"

	"github.com/sixy6e/wavetrace/quantity"
)

// sceneTag is the struct-tag name every decodable parameter struct
// uses: each field names the scene-file attribute key it binds to and,
// optionally, a default literal used when the attribute is absent.
const sceneTag = "scene"

// defMap flattens a stagparser.ParseStruct() field entry into a
// key->value map: a `name=value` tag segment parses to a Definition
// whose Name() is the key and whose Attribute(key) is the value.
func defMap(defs []stgpsr.Definition) map[string]string {
	m := make(map[string]string, len(defs))
	for _, d := range defs {
		v, _ := d.Attribute(d.Name())
		m[d.Name()] = v
	}
	return m
}

// Decode fills dst (a pointer to a struct) from node's attribute set,
// per field's `scene:"name=...,default=..."` tag. Unrecognized
// attributes on the node are not an error: they are ignored, and
// scene.Build does not report them either.
func Decode(n *Node, dst any) error {
	defs, err := stgpsr.ParseStruct(dst, sceneTag)
	if err != nil {
		return fmt.Errorf("scene: parsing %T's scene tags: %w", dst, err)
	}

	values := reflect.ValueOf(dst).Elem()
	types := values.Type()

	for i := 0; i < values.NumField(); i++ {
		field := types.Field(i)
		if !field.IsExported() {
			continue
		}
		fdefs, ok := defs[field.Name]
		if !ok {
			continue
		}
		m := defMap(fdefs)
		attrName, ok := m["name"]
		if !ok {
			continue
		}

		raw, present := n.Attr(attrName)
		if !present {
			raw, present = m["default"]
			if !present {
				continue
			}
		}

		if err := setField(values.Field(i), raw); err != nil {
			return fmt.Errorf("scene: attribute %q on <%s>: %w", attrName, n.Name, err)
		}
	}
	return nil
}

func setField(v reflect.Value, raw string) error {
	switch v.Interface().(type) {
	case quantity.Angle:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(quantity.Angle(f * math.Pi / 180)))
		return nil
	case quantity.Vec3:
		p, err := parseVec3(raw)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(p))
		return nil
	case quantity.Unit3:
		p, err := parseVec3(raw)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(quantity.NewUnit3(float64(p.X), float64(p.Y), float64(p.Z))))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetUint(n)
	default:
		return fmt.Errorf("unsupported field kind %s", v.Kind())
	}
	return nil
}

// parseVec3 accepts "x,y,z" (comma- or whitespace-separated).
func parseVec3(raw string) (quantity.Vec3, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 3 {
		return quantity.Vec3{}, fmt.Errorf("want 3 components \"x,y,z\", got %q", raw)
	}
	var out [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return quantity.Vec3{}, err
		}
		out[i] = v
	}
	return quantity.Vec3{X: quantity.Length(out[0]), Y: quantity.Length(out[1]), Z: quantity.Length(out[2])}, nil
}
