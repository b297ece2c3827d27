package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/diskplan/internal/templates"
)

var templatesDefaults bool

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the volume templates of a product",
	Long: `List the volume templates configured by a product, in configuration order.

With --defaults only the volumes proposed by default are listed.

Example:
  diskplan templates --product product.yaml -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		product, err := loadProduct()
		if err != nil {
			return err
		}

		formatter, err := newFormatter()
		if err != nil {
			return err
		}

		vols := templates.All(product)
		if templatesDefaults {
			vols = templates.Defaults(product)
		}

		result, err := formatter.FormatVolumes(vols)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}

func init() {
	addProductFlag(templatesCmd)
	templatesCmd.Flags().BoolVar(&templatesDefaults, "defaults", false, "Only list the volumes proposed by default")
}
