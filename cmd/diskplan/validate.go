package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jbweber/diskplan/internal/loader"
	"github.com/jbweber/diskplan/internal/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <settings.yaml>",
	Short: "Validate a settings document",
	Long: `Validate a storage proposal settings document (YAML or JSON) against the
settings schema. Every offending field is reported.

Example:
  diskplan validate settings.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		if _, err := loader.LoadFromFile(path); err != nil {
			var verr *schema.ValidationError
			if !errors.As(err, &verr) {
				return err
			}
			for _, fe := range verr.Errors {
				color.New(color.FgYellow).Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Description)
			}
			return fmt.Errorf("%s is not valid (%d error(s))", path, len(verr.Errors))
		}

		color.Green("✓ %s is valid", path)
		return nil
	},
}
