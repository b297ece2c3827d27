package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/diskplan/api/v1alpha1"
	"github.com/jbweber/diskplan/internal/codec"
	"github.com/jbweber/diskplan/internal/loader"
)

var (
	convertEngine     bool
	convertNoValidate bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [settings.yaml]",
	Short: "Convert settings through the internal model",
	Long: `Decode a settings document with the product defaults and print the result.

Without a settings file the product defaults are shown. By default the
decoded settings are encoded back to the wire form, so missing fields show
the values they resolve to. With --engine the input of the proposal engine
is printed instead.

Example:
  diskplan convert settings.yaml --product product.yaml
  diskplan convert settings.yaml --product product.yaml --engine -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		product, err := loadProduct()
		if err != nil {
			return err
		}

		var wire *v1alpha1.Settings
		if len(args) == 1 {
			wire, err = readSettings(args[0], convertNoValidate)
			if err != nil {
				return err
			}
		}

		settings := codec.Decode(wire, product)

		if convertEngine {
			return printEngineSettings(codec.ToEngine(settings, product))
		}

		formatter, err := newFormatter()
		if err != nil {
			return err
		}
		result, err := formatter.FormatSettings(codec.Encode(settings))
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}

func init() {
	addProductFlag(convertCmd)
	convertCmd.Flags().BoolVar(&convertEngine, "engine", false, "Print the engine input instead of the wire settings")
	convertCmd.Flags().BoolVar(&convertNoValidate, "no-validate", false, "Skip schema validation and drop malformed sections")
}

// printEngineSettings prints v as JSON for -o json and YAML otherwise.
func printEngineSettings(v interface{}) error {
	var (
		data []byte
		err  error
	)
	if outputFormat == "json" {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal engine settings: %w", err)
	}

	fmt.Print(string(data))
	return nil
}

func readSettings(path string, noValidate bool) (*v1alpha1.Settings, error) {
	if !noValidate {
		return loader.LoadFromFile(path)
	}
	return loader.ParseFile(path)
}
