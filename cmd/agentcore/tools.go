package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newToolsCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect the registered tools",
	}
	cmd.AddCommand(newToolsListCmd(root))
	return cmd
}

func newToolsListCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tools and their default risk class",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(root)
			if err != nil {
				return err
			}
			for _, def := range a.registry.ListMetadata() {
				risk, requiresApproval := a.risk.Resolve("", def.Name)
				fmt.Printf("%-16s %-10s requires_approval=%-5t %s\n", def.Name, risk, requiresApproval, def.Description)
			}
			return nil
		},
	}
}
