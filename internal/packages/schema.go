// Package packages turns a package's self-described configuration schema
// into a cell-specific options file for the package manager.
//
// The pipeline is pure up to the final file writes:
//
//	ParseSchema -> Compile (prune + placeholder rewrite) -> Render -> Merge
package packages

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node is one node of a configuration schema. It is one of *Object,
// *ScalarWithDefault or *ScalarNoDefault.
type Node interface {
	isNode()
}

// Object is a schema node with named children.
type Object struct {
	Children map[string]Node
}

// ScalarWithDefault is a string property declaring a default value.
type ScalarWithDefault struct {
	Value string
}

// ScalarNoDefault is any other leaf; it never reaches a template.
type ScalarNoDefault struct{}

func (*Object) isNode()            {}
func (*ScalarWithDefault) isNode() {}
func (*ScalarNoDefault) isNode()   {}

type rawNode struct {
	Type       json.RawMessage    `json:"type"`
	Properties map[string]rawNode `json:"properties"`
	Default    interface{}        `json:"default"`
}

// ParseSchema parses a JSON schema document as printed by
// `dcos package describe --config`.
func ParseSchema(data []byte) (Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse package schema: %w", err)
	}
	return convert(raw), nil
}

// typeName returns the node's type keyword. A type union such as
// ["string","null"] has no single name and returns ok=false.
func (raw rawNode) typeName() (name string, ok bool) {
	if len(raw.Type) == 0 {
		return "", true
	}
	if err := json.Unmarshal(raw.Type, &name); err != nil {
		return "", false
	}
	return name, true
}

func convert(raw rawNode) Node {
	typ, ok := raw.typeName()
	if !ok {
		return &ScalarNoDefault{}
	}
	switch {
	case typ == "object" || (typ == "" && raw.Properties != nil):
		obj := &Object{Children: make(map[string]Node, len(raw.Properties))}
		for name, child := range raw.Properties {
			obj.Children[name] = convert(child)
		}
		return obj
	case typ == "string":
		if s, ok := raw.Default.(string); ok {
			return &ScalarWithDefault{Value: s}
		}
	}
	return &ScalarNoDefault{}
}

// Replacement rewrites one well-known internal endpoint into a placeholder.
type Replacement struct {
	Old string
	New string
}

// Replacements are applied in order.
type Replacements []Replacement

// DefaultReplacements map the package manager's internal service
// addresses onto cell placeholders.
var DefaultReplacements = Replacements{
	{Old: "master.mesos:2181", New: "{{zk}}"},
	{Old: "master.mesos:5050", New: "{{mesos}}"},
	{Old: "master.mesos:8080", New: "{{marathon}}"},
	{Old: ".marathon.mesos", New: ".{{dns}}"},
}

// Apply runs every replacement over s.
func (r Replacements) Apply(s string) string {
	for _, rep := range r {
		s = strings.ReplaceAll(s, rep.Old, rep.New)
	}
	return s
}

// Compile builds the options template of a schema: objects are kept only
// when something below them is, strings with a default are kept with the
// replacements applied, everything else is dropped. A non-object root
// yields an empty template.
func Compile(n Node, r Replacements) map[string]interface{} {
	obj, ok := n.(*Object)
	if !ok {
		return map[string]interface{}{}
	}
	return compileObject(obj, r)
}

func compileObject(obj *Object, r Replacements) map[string]interface{} {
	out := make(map[string]interface{})
	for name, child := range obj.Children {
		switch c := child.(type) {
		case *Object:
			if sub := compileObject(c, r); len(sub) > 0 {
				out[name] = sub
			}
		case *ScalarWithDefault:
			out[name] = r.Apply(c.Value)
		}
	}
	return out
}
