// Package linktree parses the indentation-formatted keyword tree and matches
// tagged procedure records against it.
package linktree

import (
	"errors"
	"os"
	"strings"
)

// IndentUnit is the number of leading spaces per nesting level.
const IndentUnit = 4

// Node is a keyword in the tree. Children are owned and ordered; Parent is a
// non-owning back-reference for traversal only and is excluded from JSON to
// keep the structure acyclic when serialized.
type Node struct {
	Keyword  string  `json:"keyword"`
	Depth    int     `json:"depth"`
	Children []*Node `json:"children"`
	Parent   *Node   `json:"-"`
}

func (n *Node) addChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AllKeywords returns the set of this node's keyword plus the keywords of all
// descendants.
func (n *Node) AllKeywords() map[string]struct{} {
	set := make(map[string]struct{})
	n.collect(set)
	return set
}

func (n *Node) collect(set map[string]struct{}) {
	set[n.Keyword] = struct{}{}
	for _, c := range n.Children {
		c.collect(set)
	}
}

// Parse builds the keyword forest from indentation-formatted text. Each
// non-blank line's leading-space count divided by IndentUnit is its depth;
// the trimmed remainder is the keyword. A stack of ancestors seeded with a
// synthetic root at depth -1 resolves nesting: the parser pops until the top
// is strictly shallower than the current line, so dedents may jump several
// levels at once. Blank lines are skipped and do not reset depth tracking.
//
// Indentation that is not an exact multiple of IndentUnit rounds its depth
// down. Misaligned input is therefore silently reinterpreted rather than
// rejected; this tolerance is part of the accepted format.
func Parse(content string) []*Node {
	root := &Node{Keyword: "ROOT", Depth: -1}
	stack := []*Node{root}

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		depth := (len(line) - len(strings.TrimLeft(line, " "))) / IndentUnit
		node := &Node{Keyword: strings.TrimSpace(line), Depth: depth}

		for len(stack) > 1 && stack[len(stack)-1].Depth >= depth {
			stack = stack[:len(stack)-1]
		}
		stack[len(stack)-1].addChild(node)
		stack = append(stack, node)
	}

	return root.Children
}

// ParseFile reads and parses the tree file at path. A missing file yields an
// empty forest, not an error.
func ParseFile(path string) ([]*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return Parse(string(data)), nil
}

// Find returns the first node in the forest whose keyword equals keyword,
// searching depth-first, or nil.
func Find(forest []*Node, keyword string) *Node {
	for _, n := range forest {
		if n.Keyword == keyword {
			return n
		}
		if found := Find(n.Children, keyword); found != nil {
			return found
		}
	}
	return nil
}
