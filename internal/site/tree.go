package site

import (
	"fmt"
	"sort"
	"strings"
)

// Tree is a node in the directory tree of a batch run.
type Tree struct {
	Name     string
	Path     string // slash-separated path relative to the batch root
	Entry    *Entry // nil for directories
	Children []*Tree
}

// IsDir reports whether the node is a directory.
func (t *Tree) IsDir() bool { return t.Entry == nil }

// BuildTree arranges entries by directory.
func BuildTree(entries []Entry) *Tree {
	root := &Tree{}

	for i := range entries {
		parts := strings.Split(entries[i].RelPath, "/")
		current := root
		for j, part := range parts {
			if j == len(parts)-1 {
				current.Children = append(current.Children, &Tree{
					Name:  part,
					Path:  entries[i].RelPath,
					Entry: &entries[i],
				})
				break
			}
			current = current.dir(part, strings.Join(parts[:j+1], "/"))
		}
	}

	sortTree(root)
	return root
}

func (t *Tree) dir(name, path string) *Tree {
	for _, child := range t.Children {
		if child.IsDir() && child.Name == name {
			return child
		}
	}
	node := &Tree{Name: name, Path: path}
	t.Children = append(t.Children, node)
	return node
}

// sortTree recursively sorts tree children: directories first, then files, alphabetically.
func sortTree(node *Tree) {
	sort.Slice(node.Children, func(i, j int) bool {
		if node.Children[i].IsDir() != node.Children[j].IsDir() {
			return node.Children[i].IsDir()
		}
		return node.Children[i].Name < node.Children[j].Name
	})
	for _, child := range node.Children {
		if child.IsDir() {
			sortTree(child)
		}
	}
}

// writeMarkdown renders the children of t as a nested Markdown list.
func (t *Tree) writeMarkdown(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, child := range t.Children {
		switch {
		case child.IsDir():
			fmt.Fprintf(b, "%s- **%s/**\n", indent, escape(child.Name))
			child.writeMarkdown(b, depth+1)
		case child.Entry.Err != nil:
			fmt.Fprintf(b, "%s- %s (failed)\n", indent, escape(child.Name))
		default:
			fmt.Fprintf(b, "%s- [%s](%s)\n", indent, escape(child.Name), link(child.Entry.Document))
		}
	}
}
