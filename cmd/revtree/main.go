package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/forestrie/go-revtree/revid"
	"github.com/forestrie/go-revtree/revtree"
)

func main() {
	root := &cobra.Command{
		Use:   "revtree",
		Short: "Inspect encoded document revision tree blobs",
	}
	root.AddCommand(newDumpCmd(), newInfoCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadTree(path string) (*revtree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := revtree.Decode(data, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	return tree, nil
}

func nodeLabel(n *revtree.Node) string {
	label := string(revid.Expand(n.RevID))
	if n.IsLeaf() {
		if n.IsDeleted() {
			label += " [deleted leaf]"
		} else {
			label += " [leaf]"
		}
	}
	if n.Sequence > 0 {
		label += fmt.Sprintf(" #%d", n.Sequence)
	}
	if len(n.Body) > 0 {
		label += fmt.Sprintf(" (%d body bytes)", len(n.Body))
	} else if n.OldBodyOffset > 0 {
		label += fmt.Sprintf(" (body @%d)", n.OldBodyOffset)
	}
	return label
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <blobfile>",
		Short: "Render the revision graph of an encoded tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadTree(args[0])
			if err != nil {
				return err
			}

			children := map[int][]int{}
			var roots []int
			for i := 0; i < tree.Len(); i++ {
				if p := tree.Get(i).ParentIndex; p == revtree.NoParent {
					roots = append(roots, i)
				} else {
					children[int(p)] = append(children[int(p)], i)
				}
			}

			var addBranch func(branch treeprint.Tree, idx int)
			addBranch = func(branch treeprint.Tree, idx int) {
				node := branch.AddBranch(nodeLabel(tree.Get(idx)))
				for _, child := range children[idx] {
					addBranch(node, child)
				}
			}

			out := treeprint.New()
			out.SetValue(args[0])
			for _, idx := range roots {
				addBranch(out, idx)
			}
			cmd.Println(out.String())
			return nil
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <blobfile>",
		Short: "Summarize an encoded tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadTree(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("revisions: %d\n", tree.Len())
			cmd.Printf("leaves:    %d\n", len(tree.CurrentLeaves()))
			if cur := tree.CurrentNode(); cur != nil {
				cmd.Printf("current:   %s\n", revid.Expand(cur.RevID))
				cmd.Printf("deleted:   %v\n", cur.IsDeleted())
			}
			cmd.Printf("conflict:  %v\n", tree.HasConflict())
			return nil
		},
	}
}
