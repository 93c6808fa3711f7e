// Package loader parses the scene file's XML-like element tree and
// decodes each element's attribute set into a tagged Go struct.
//
// Grounded on original_source/src/scene/loader/bootstrap.hpp and
// scene/loader/xml/loader.cpp: the scene description is an XML tree of
// named elements ("shape", "material", "emitter", "sensor", ...), each
// with a flat attribute set, plus top-level `-D key=value` defines
// substituted into `$key` references anywhere in an attribute value.
// encoding/xml parses the tree; stagparser (see decode.go) replaces
// the source's hand-rolled attribute-type dispatch.
package loader

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed is returned when the scene file is not well-formed XML
// or references an undefined `$name` substitution.
var ErrMalformed = errors.New("scene: malformed scene file")

// Node is one element of the parsed scene tree: its tag name, its
// attribute set (after define substitution), and its children in
// document order.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
}

// Attr returns an attribute's value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Find returns the first direct child with the given tag name.
func (n *Node) Find(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindAll returns every direct child with the given tag name.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// substitute replaces every `$key` occurrence in s with defines[key].
func substitute(s string, defines map[string]string) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '$' {
			b.WriteByte(s[i])
			continue
		}
		j := i + 1
		for j < len(s) && (isAlnum(s[j]) || s[j] == '_') {
			j++
		}
		if j == i+1 {
			b.WriteByte(s[i])
			continue
		}
		key := s[i+1 : j]
		val, ok := defines[key]
		if !ok {
			return "", fmt.Errorf("%w: undefined define $%s", ErrMalformed, key)
		}
		b.WriteString(val)
		i = j - 1
	}
	return b.String(), nil
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Parse reads a scene file's XML element tree, substituting `-D`
// defines into every attribute value, and returns its root element.
// defines is mutated: a top-level `<define name="..." value="..."/>`
// element adds to it, the same way the source's `-D key=value` CLI
// flag and in-file defines share one namespace.
func Parse(r io.Reader, defines map[string]string) (*Node, error) {
	if defines == nil {
		defines = map[string]string{}
	}
	dec := xml.NewDecoder(r)

	var stack []*Node
	var root *Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				val, serr := substitute(a.Value, defines)
				if serr != nil {
					return nil, serr
				}
				n.Attrs[a.Name.Local] = val
			}
			if n.Name == "define" {
				if name, ok := n.Attr("name"); ok {
					defines[name] = n.Attrs["value"]
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unbalanced closing tag </%s>", ErrMalformed, t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	return root, nil
}
