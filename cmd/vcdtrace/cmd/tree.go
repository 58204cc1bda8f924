package cmd

import (
	"fmt"

	"github.com/readm/vcdtrace/symtab"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Index a trace and print its scope/signal hierarchy",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	p, _, err := runIndexing(args[0])
	if err != nil {
		return err
	}
	printScope(p.ScopeTree(), p.Signals(), "")
	return nil
}

func printScope(node *symtab.ScopeNode, signals []symtab.Signal, prefix string) {
	if node == nil {
		return
	}
	for _, idx := range node.SignalIndices {
		sig := signals[idx]
		fmt.Printf("%s%s [%d] %s (%s, width %d)\n", prefix, sig.Name, idx, sig.IDCode, sig.Type, sig.Width)
	}
	for _, child := range node.Children {
		fmt.Printf("%s%s %s/\n", prefix, child.Kind, child.Name)
		printScope(child, signals, prefix+"  ")
	}
}
