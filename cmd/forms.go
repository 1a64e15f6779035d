package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carmarket/carmarket/internal/catalog"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List the forms in the built-in catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.Default()
		if err != nil {
			return err
		}
		for _, line := range c.Summary() {
			fmt.Println(line)
		}
		return nil
	},
}
