// Package load reads schema declarations from YAML.
//
// A document lists the composite types in dependency order, their
// attributes, and the relationships between them:
//
//	scalars:
//	  - name: Email
//	    base: Key
//	traits:
//	  - name: Named
//	    attributes:
//	      handle: Email
//	entities:
//	  - name: Node
//	    supers: Named
//	    attributes:
//	      index: Num
//	relationships:
//	  - left:  {type: Node, cardinality: many, name: children, orderBy: index, cascadeDestroy: true}
//	    right: {type: Node, cardinality: one, name: parent}
//
// Scalars declared in YAML reuse the validation and serialization of a
// built-in base type; types needing custom functions are registered on
// the Builder before Apply.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/syssam/entgraph/schema"
)

type (
	// Document is the YAML form of a schema.
	Document struct {
		Scalars       []Scalar       `yaml:"scalars,omitempty"`
		Traits        []Composite    `yaml:"traits,omitempty"`
		Entities      []Composite    `yaml:"entities,omitempty"`
		Relationships []Relationship `yaml:"relationships,omitempty"`
	}

	// Scalar declares a scalar type derived from a registered one.
	Scalar struct {
		Name string `yaml:"name"`
		Base string `yaml:"base"`
		// Indexed makes the scalar feed unique indexes even if the base
		// does not.
		Indexed bool `yaml:"indexed,omitempty"`
	}

	// Composite declares a trait or an entity.
	Composite struct {
		Name       string            `yaml:"name"`
		Supers     StringList        `yaml:"supers,omitempty"`
		Attributes map[string]string `yaml:"attributes,omitempty"`
	}

	// Relationship declares both ends of a relationship.
	Relationship struct {
		Left  End `yaml:"left"`
		Right End `yaml:"right"`
	}

	// End is one side of a relationship.
	End struct {
		Type        string `yaml:"type"`
		Cardinality string `yaml:"cardinality"`
		Name        string `yaml:"name"`
		// OrderBy names a scalar attribute of the related type ordering
		// the members of a many end.
		OrderBy        string `yaml:"orderBy,omitempty"`
		CascadeDestroy bool   `yaml:"cascadeDestroy,omitempty"`
	}
)

// StringList is a YAML value that is either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler for StringList.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// Parse decodes a document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return &doc, nil
}

// Marshal encodes a document.
func (d *Document) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// File reads the document at path and finalizes it on a new Builder.
func File(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Apply(schema.NewBuilder(), doc)
}

// Apply registers the document's types on b and finalizes it. Types
// already registered on b may be referenced by name.
func Apply(b *schema.Builder, doc *Document) (*schema.Schema, error) {
	for _, s := range doc.Scalars {
		t, ok := b.Type(s.Base)
		base, isScalar := t.(*schema.Scalar)
		if !ok || !isScalar {
			return nil, fmt.Errorf("scalar %s: unknown base scalar %q", s.Name, s.Base)
		}
		var opts []schema.ScalarOption
		if s.Indexed || base.Indexed() {
			opts = append(opts, schema.Indexed())
		}
		if _, err := b.Scalar(s.Name, base.Validate, base.Serialize, opts...); err != nil {
			return nil, err
		}
	}
	for _, c := range doc.Traits {
		if _, err := b.Trait(c.Name, refs(c.Supers)...); err != nil {
			return nil, err
		}
	}
	for _, c := range doc.Entities {
		if _, err := b.Entity(c.Name, refs(c.Supers)...); err != nil {
			return nil, err
		}
	}
	var d schema.Declarations
	for _, c := range slices.Concat(doc.Traits, doc.Entities) {
		names := make([]string, 0, len(c.Attributes))
		for name := range c.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			d.Attributes = append(d.Attributes, schema.Attribute{
				Type:   schema.Named(c.Name),
				Name:   name,
				Scalar: schema.Named(c.Attributes[name]),
			})
		}
	}
	for i, r := range doc.Relationships {
		left, err := r.Left.end()
		if err != nil {
			return nil, fmt.Errorf("relationship %d: %w", i, err)
		}
		right, err := r.Right.end()
		if err != nil {
			return nil, fmt.Errorf("relationship %d: %w", i, err)
		}
		d.Relationships = append(d.Relationships, schema.Relationship{Left: left, Right: right})
	}
	return b.Finalize(d)
}

func (e End) end() (schema.End, error) {
	card, ok := schema.ParseCardinality(e.Cardinality)
	if !ok {
		return schema.End{}, fmt.Errorf("field %s: invalid cardinality %q", e.Name, e.Cardinality)
	}
	end := schema.End{
		Type:           schema.Named(e.Type),
		Cardinality:    card,
		Name:           e.Name,
		CascadeDestroy: e.CascadeDestroy,
	}
	if e.OrderBy != "" {
		end.Compare = schema.ByAttribute(e.OrderBy)
	}
	return end, nil
}

func refs(names []string) []schema.TypeRef {
	out := make([]schema.TypeRef, len(names))
	for i, name := range names {
		out[i] = schema.Named(name)
	}
	return out
}
