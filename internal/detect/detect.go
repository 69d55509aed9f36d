// Package detect locates the hardware node behind each metric category
// in a sensor tree. Every category is described by the same Detector
// shape (include keywords, exclude keywords, tie-break strategy) and
// classified by one routine, so the tree is walked the same way for CPU,
// GPU, memory, storage, network and motherboard.
package detect

import (
	"github.com/luki/hwtelemetry/internal/sensor"
)

// Category names a hardware class.
type Category string

const (
	CPU         Category = "cpu"
	GPU         Category = "gpu"
	Memory      Category = "memory"
	Storage     Category = "storage"
	Network     Category = "network"
	Motherboard Category = "motherboard"
)

// Categories lists every category in detection order. Earlier categories
// claim their node first.
var Categories = []Category{CPU, GPU, Memory, Storage, Network, Motherboard}

// Detector classifies hardware branches as one category.
type Detector struct {
	Category Category
	Include  []string
	Exclude  []string
	Strategy Strategy
}

// Match is a detected hardware node.
type Match struct {
	Category Category
	Node     *sensor.Node
	Name     string
}

// Strategy picks one node among the candidates that passed the keyword
// filter. Candidates arrive in tree order.
type Strategy interface {
	Pick(candidates []*sensor.Node) (*sensor.Node, bool)
}

// Candidates returns, in tree order, every hardware node (children of the
// machine-level nodes under root) whose label contains an include keyword
// and no exclude keyword. Nodes present in claimed are skipped.
func (d Detector) Candidates(root *sensor.Node, claimed map[*sensor.Node]bool) []*sensor.Node {
	var out []*sensor.Node
	for _, machine := range root.Children() {
		for _, hw := range machine.Children() {
			if claimed[hw] {
				continue
			}
			label := hw.Label()
			if !sensor.ContainsAny(label, d.Include) || sensor.ContainsAny(label, d.Exclude) {
				continue
			}
			out = append(out, hw)
		}
	}
	return out
}

// Detect runs the keyword filter and the tie-break strategy.
func (d Detector) Detect(root *sensor.Node, claimed map[*sensor.Node]bool) (Match, bool) {
	candidates := d.Candidates(root, claimed)
	if len(candidates) == 0 {
		return Match{}, false
	}
	strategy := d.Strategy
	if strategy == nil {
		strategy = First{}
	}
	node, ok := strategy.Pick(candidates)
	if !ok {
		return Match{}, false
	}
	return Match{Category: d.Category, Node: node, Name: node.Label()}, true
}

// Result holds the outcome of one detection pass.
type Result struct {
	matches map[Category]Match
}

// Get returns the match for a category.
func (r Result) Get(c Category) (Match, bool) {
	m, ok := r.matches[c]
	return m, ok
}

// Missing lists the categories that were not detected, in detection
// order.
func (r Result) Missing() []Category {
	var out []Category
	for _, c := range Categories {
		if _, ok := r.matches[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Classifier runs a detector set over a tree.
type Classifier struct {
	detectors []Detector
}

// NewClassifier returns a classifier for the given detectors, run in the
// order given.
func NewClassifier(detectors ...Detector) *Classifier {
	return &Classifier{detectors: detectors}
}

// Default returns a classifier built from the default rule tables and the
// given tuning.
func Default(t Tuning) *Classifier {
	return NewClassifier(Rules(t)...)
}

// Classify detects every category. A node matched by one detector is not
// offered to the detectors after it.
func (c *Classifier) Classify(root *sensor.Node) Result {
	res := Result{matches: make(map[Category]Match, len(c.detectors))}
	claimed := make(map[*sensor.Node]bool)
	for _, d := range c.detectors {
		m, ok := d.Detect(root, claimed)
		if !ok {
			continue
		}
		claimed[m.Node] = true
		res.matches[d.Category] = m
	}
	return res
}
