package scene

import "time"

// Node is one drawn shape. Its numeric and color attributes animate; string
// attributes change immediately.
type Node struct {
	Key string

	// Datum is the value last bound to the node by its view.
	Datum any

	nums   map[string]*Num
	colors map[string]*Color
	strs   map[string]string
}

func newNode(key string) *Node {
	return &Node{
		Key:    key,
		nums:   make(map[string]*Num),
		colors: make(map[string]*Color),
		strs:   make(map[string]string),
	}
}

// SetNum animates attribute name toward v.
func (n *Node) SetNum(name string, v float64, tr Transition) {
	a, ok := n.nums[name]
	if !ok {
		a = &Num{}
		n.nums[name] = a
	}
	a.Set(v, tr)
}

// Num returns attribute name at now, or 0 when unset.
func (n *Node) Num(name string, now time.Time) float64 {
	if a, ok := n.nums[name]; ok {
		return a.At(now)
	}
	return 0
}

// NumTarget returns the final value of attribute name.
func (n *Node) NumTarget(name string) float64 {
	if a, ok := n.nums[name]; ok {
		return a.Target()
	}
	return 0
}

// SetColor animates color attribute name toward hex.
func (n *Node) SetColor(name, hex string, tr Transition) {
	a, ok := n.colors[name]
	if !ok {
		a = &Color{}
		n.colors[name] = a
	}
	a.Set(hex, tr)
}

// Color returns color attribute name at now, or "" when unset.
func (n *Node) Color(name string, now time.Time) string {
	if a, ok := n.colors[name]; ok {
		return a.At(now)
	}
	return ""
}

// ColorTarget returns the final value of color attribute name.
func (n *Node) ColorTarget(name string) string {
	if a, ok := n.colors[name]; ok {
		return a.Target()
	}
	return ""
}

// SetStr sets a string attribute.
func (n *Node) SetStr(name, v string) { n.strs[name] = v }

// Str returns a string attribute.
func (n *Node) Str(name string) string { return n.strs[name] }

// Join reports how a Layer changed during one reconciliation.
type Join struct {
	Enter  []string
	Update []string
	Exit   []string
}

// Layer is an ordered set of nodes keyed by a data identity.
type Layer struct {
	nodes map[string]*Node
	order []string
}

// NewLayer returns an empty layer.
func NewLayer() *Layer {
	return &Layer{nodes: make(map[string]*Node)}
}

// Join reconciles the layer against keys: a node is created for every new
// key, kept for every known key, and dropped for every key no longer
// present. Afterwards the layer is ordered like keys. Repeated keys are
// joined once.
func (l *Layer) Join(keys []string) Join {
	var j Join
	next := make(map[string]*Node, len(keys))
	order := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, dup := next[k]; dup {
			continue
		}
		n, ok := l.nodes[k]
		if ok {
			j.Update = append(j.Update, k)
		} else {
			n = newNode(k)
			j.Enter = append(j.Enter, k)
		}
		next[k] = n
		order = append(order, k)
	}
	for _, k := range l.order {
		if _, ok := next[k]; !ok {
			j.Exit = append(j.Exit, k)
		}
	}
	l.nodes = next
	l.order = order
	return j
}

// Node returns the node for key, or nil.
func (l *Layer) Node(key string) *Node { return l.nodes[key] }

// Nodes returns the nodes in join order.
func (l *Layer) Nodes() []*Node {
	out := make([]*Node, len(l.order))
	for i, k := range l.order {
		out[i] = l.nodes[k]
	}
	return out
}

// Len returns the number of nodes.
func (l *Layer) Len() int { return len(l.order) }
