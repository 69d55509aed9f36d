// Package sensor models the hardware monitor's sensor tree. A tree is a
// recursive Text/Value/Children document (LibreHardwareMonitor's
// data.json) with no schema beyond that shape: every field may be missing
// and nesting depth varies between machines and tool versions.
//
// The package also provides the two leaf utilities the detectors and
// extractors are built on: ParseValue, which pulls the leading number out
// of a "45.2 °C" style value string, and the tree walker (Find, Lookup,
// LookupIn) which searches the sensor groups below a hardware node.
package sensor

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// Node is one entry in the sensor tree. Nodes are immutable once decoded
// or constructed; the accessors never expose internal state.
type Node struct {
	text     string
	value    string
	hasText  bool
	hasValue bool
	children []*Node
}

// New builds a node with a label, a value string and children. Intended
// for fixtures and tests; production trees come from Decode.
func New(text, value string, children ...*Node) *Node {
	return &Node{
		text:     text,
		value:    value,
		hasText:  true,
		hasValue: value != "",
		children: slices.Clone(children),
	}
}

// Branch builds a node that has a label and children but no value.
func Branch(text string, children ...*Node) *Node {
	return New(text, "", children...)
}

// Text returns the node label and whether the source carried one.
func (n *Node) Text() (string, bool) {
	if n == nil {
		return "", false
	}
	return n.text, n.hasText
}

// Label returns the node label, or "" when absent.
func (n *Node) Label() string {
	if n == nil {
		return ""
	}
	return n.text
}

// Value returns the raw value string and whether the source carried one.
func (n *Node) Value() (string, bool) {
	if n == nil {
		return "", false
	}
	return n.value, n.hasValue
}

// Number parses the node's value string with ParseValue.
func (n *Node) Number() (float64, bool) {
	v, ok := n.Value()
	if !ok {
		return 0, false
	}
	return ParseValue(v)
}

// Children returns a copy of the node's children in tree order.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return slices.Clone(n.children)
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.children)
}

// Empty reports whether the node has no children at all.
func (n *Node) Empty() bool {
	return n.Len() == 0
}

// Decode parses a sensor tree document. Only malformed JSON is an error;
// a document of the wrong shape (an array, a string, an object without
// Children) decodes to an empty node.
func Decode(data []byte) (*Node, error) {
	root := &Node{}
	if err := json.Unmarshal(data, root); err != nil {
		return nil, err
	}
	return root, nil
}

// UnmarshalJSON decodes leniently: unknown fields are ignored, a field of
// an unexpected type is treated as absent, and non-object children are
// skipped. Syntax errors are caught by encoding/json before this runs.
func (n *Node) UnmarshalJSON(data []byte) error {
	*n = Node{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	for key, raw := range fields {
		switch strings.ToLower(key) {
		case "text":
			n.text, n.hasText = scalarString(raw)
		case "value":
			n.value, n.hasValue = scalarString(raw)
		case "children":
			n.children = decodeChildren(raw)
		}
	}
	return nil
}

func decodeChildren(raw json.RawMessage) []*Node {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	children := make([]*Node, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		child := &Node{}
		if err := child.UnmarshalJSON(item); err != nil {
			continue
		}
		children = append(children, child)
	}
	return children
}

// scalarString accepts a JSON string or number; anything else is absent.
func scalarString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw), true
	}
	return "", false
}
