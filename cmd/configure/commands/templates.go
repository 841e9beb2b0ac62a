package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/habito/habito-api/internal/templates"
)

// NewTemplatesCmd creates the templates command
func NewTemplatesCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List built-in habit templates",
		Long:  "List the built-in habit templates users can create habits from",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := templates.Catalog
			if category != "" {
				catalog = templates.ByCategory(templates.Category(category))
				if len(catalog) == 0 {
					return fmt.Errorf("unknown category: %s", category)
				}
			}

			fmt.Printf("Available templates (%d):\n", len(catalog))
			var lastCategory templates.Category
			for _, tmpl := range catalog {
				if tmpl.Category != lastCategory {
					fmt.Printf("\n[%s]\n", tmpl.Category)
					lastCategory = tmpl.Category
				}
				fmt.Printf("  - %s: %s\n", tmpl.ID, tmpl.Name)
				fmt.Printf("    %s (%s, %s)\n", tmpl.Description, tmpl.TimeOfDay, tmpl.Occurrence)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Filter by category (MIND, BODY, VITALITY, PRESENCE, GROWTH, RELATIONS)")

	return cmd
}
