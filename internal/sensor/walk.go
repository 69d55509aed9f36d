package sensor

import "strings"

// Hit is a sensor located by the tree walker together with its parsed
// value.
type Hit struct {
	Sensor *Node
	Group  *Node
	Value  float64
}

// Raw returns the hit sensor's raw value string.
func (h Hit) Raw() string {
	v, _ := h.Sensor.Value()
	return v
}

// Find searches exactly two levels below node (sensor group, then
// sensor) for a label containing one of patterns, case-insensitively.
// Patterns are tried in order; within a pattern the first node in tree
// order wins. Sensors whose value does not parse are skipped.
func Find(node *Node, patterns ...string) (float64, bool) {
	hit, ok := Lookup(node, patterns...)
	return hit.Value, ok
}

// Lookup is Find returning the matched sensor as well as its value.
func Lookup(node *Node, patterns ...string) (Hit, bool) {
	return search(node.Children(), patterns)
}

// LookupIn restricts the search to the sensor groups whose label contains
// one of kinds ("temperatures", "load", ...). A node with no group of
// that kind is searched in full, so trees with unconventional group
// names still resolve.
func LookupIn(node *Node, kinds []string, patterns ...string) (Hit, bool) {
	return search(Groups(node, kinds...), patterns)
}

// FindIn is LookupIn returning only the value.
func FindIn(node *Node, kinds []string, patterns ...string) (float64, bool) {
	hit, ok := LookupIn(node, kinds, patterns...)
	return hit.Value, ok
}

// Groups returns the children of node whose label matches one of kinds,
// or all children when none match or no kinds are given.
func Groups(node *Node, kinds ...string) []*Node {
	all := node.Children()
	if len(kinds) == 0 {
		return all
	}
	var scoped []*Node
	for _, g := range all {
		if ContainsAny(g.Label(), kinds) {
			scoped = append(scoped, g)
		}
	}
	if len(scoped) == 0 {
		return all
	}
	return scoped
}

func search(groups []*Node, patterns []string) (Hit, bool) {
	for _, pattern := range patterns {
		pattern = strings.ToLower(pattern)
		for _, group := range groups {
			for _, s := range group.Children() {
				if !strings.Contains(strings.ToLower(s.Label()), pattern) {
					continue
				}
				if v, ok := s.Number(); ok {
					return Hit{Sensor: s, Group: group, Value: v}, true
				}
			}
		}
	}
	return Hit{}, false
}

// ContainsAny reports whether label contains any of keywords,
// case-insensitively. Keywords are expected in lower case.
func ContainsAny(label string, keywords []string) bool {
	lower := strings.ToLower(label)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
