package ingest

import (
	"sort"
	"strings"
)

// node is an entry of the walked repository
type node struct {
	name     string
	rel      string // slash-separated, relative to the walk root
	dir      bool
	size     int64
	children []*node
}

func (n *node) hidden() bool {
	return strings.HasPrefix(n.name, ".")
}

// rank orders READMEs first, then files, hidden files, directories and
// hidden directories.
func (n *node) rank() int {
	switch {
	case !n.dir && strings.HasPrefix(strings.ToLower(n.name), "readme"):
		return 0
	case !n.dir && !n.hidden():
		return 1
	case !n.dir:
		return 2
	case !n.hidden():
		return 3
	default:
		return 4
	}
}

func sortChildren(children []*node) {
	sort.SliceStable(children, func(i, j int) bool {
		ri, rj := children[i].rank(), children[j].rank()
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(children[i].name) < strings.ToLower(children[j].name)
	})
}

// files returns the file nodes below n in tree order
func (n *node) files() []*node {
	if !n.dir {
		return []*node{n}
	}
	var out []*node
	for _, c := range n.children {
		out = append(out, c.files()...)
	}
	return out
}

// renderTree draws n with box-drawing connectors
func renderTree(root *node) string {
	var b strings.Builder
	b.WriteString("Directory structure:\n")
	writeNode(&b, root, "", true)
	return b.String()
}

func writeNode(b *strings.Builder, n *node, prefix string, last bool) {
	connector := "├── "
	if last {
		connector = "└── "
	}
	b.WriteString(prefix)
	b.WriteString(connector)
	b.WriteString(n.name)
	if n.dir {
		b.WriteString("/")
	}
	b.WriteString("\n")

	childPrefix := prefix + "│   "
	if last {
		childPrefix = prefix + "    "
	}
	for i, c := range n.children {
		writeNode(b, c, childPrefix, i == len(n.children)-1)
	}
}
