package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jbweber/diskplan/internal/config"
	"github.com/jbweber/diskplan/internal/output"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Global flags
var (
	logLevel     string
	outputFormat string
	noHeaders    bool
	productPath  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "diskplan",
	Short: "diskplan - storage proposal settings tool",
	Long: `diskplan converts storage proposal settings between their JSON/YAML wire
form, the internal settings model and the input of a proposal engine.

It validates settings documents, shows the volume templates of a product
and calculates proposals against a fixture backend.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("DISKPLAN_LOG", "warn"), "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, yaml, json)")
	rootCmd.PersistentFlags().BoolVar(&noHeaders, "no-headers", false, "Omit table headers")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(calculateCmd)
}

// newLogger returns a console logger on stderr at the configured level.
func newLogger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: color.NoColor}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}

func newFormatter() (output.Formatter, error) {
	if err := output.ValidateFormat(outputFormat); err != nil {
		return nil, err
	}
	return output.NewFormatter(output.Options{
		Format:    output.Format(outputFormat),
		NoHeaders: noHeaders,
	})
}

// loadProduct loads the product configuration named by --product.
func loadProduct() (*config.Product, error) {
	if productPath == "" {
		return nil, fmt.Errorf("--product is required")
	}
	product, err := config.LoadFromFile(productPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load product configuration: %w", err)
	}
	return product, nil
}

func addProductFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&productPath, "product", envOr("DISKPLAN_PRODUCT", ""), "Product configuration file")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
