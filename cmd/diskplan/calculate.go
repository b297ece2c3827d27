package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jbweber/diskplan/internal/codec"
	"github.com/jbweber/diskplan/internal/engine"
	"github.com/jbweber/diskplan/internal/issue"
	"github.com/jbweber/diskplan/internal/output"
	"github.com/jbweber/diskplan/internal/proposal"
)

var (
	fixturePath         string
	calculateNoValidate bool
	calculateDevices    bool
	calculateMetrics    bool
)

var calculateCmd = &cobra.Command{
	Use:   "calculate [settings.yaml]",
	Short: "Calculate a proposal against a fixture backend",
	Long: `Calculate a storage proposal for a settings document.

The disks and the engine outcome come from a YAML fixture. The issues and
actions of the proposal are printed. The command fails when the proposal
is not successful.

Example:
  diskplan calculate settings.yaml --product product.yaml --fixture disks.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}

		product, err := loadProduct()
		if err != nil {
			return err
		}

		if fixturePath == "" {
			return fmt.Errorf("--fixture is required")
		}
		fixture, err := engine.LoadFixture(fixturePath)
		if err != nil {
			return err
		}

		formatter, err := newFormatter()
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		p := proposal.New(fixture, product,
			proposal.WithLogger(logger),
			proposal.WithMetrics(proposal.NewMetrics(reg)),
		)
		if calculateMetrics {
			defer func() {
				if err := writeMetrics(os.Stderr, reg); err != nil {
					logger.Warn().Err(err).Msg("Failed to write metrics")
				}
			}()
		}

		if calculateDevices {
			result, err := formatter.FormatDevices(p.AvailableDevices())
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			fmt.Print(result)
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if len(args) == 1 {
			wire, err := readSettings(args[0], calculateNoValidate)
			if err != nil {
				return err
			}
			_, err = p.CalculateSchema(ctx, wire)
			if err != nil {
				return err
			}
		} else {
			if _, err := p.Calculate(ctx, codec.DefaultSettings(product)); err != nil {
				return err
			}
		}

		issues := p.Issues()
		result, err := formatter.FormatReport(&output.Report{
			ID:       p.ID(),
			Success:  p.Success(),
			Settings: p.SchemaSettings(),
			Issues:   issues,
			Actions:  p.Actions(),
		})
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Print(result)

		if !p.Success() {
			return fmt.Errorf("proposal failed with %d issue(s)", len(issues))
		}
		if issue.HasErrors(issues) {
			return fmt.Errorf("proposal has errors")
		}

		color.New(color.FgGreen).Fprintln(os.Stderr, "✓ Proposal calculated successfully")
		return nil
	},
}

func init() {
	addProductFlag(calculateCmd)
	calculateCmd.Flags().StringVar(&fixturePath, "fixture", "", "Fixture with the disks and engine outcome")
	calculateCmd.Flags().BoolVar(&calculateNoValidate, "no-validate", false, "Skip schema validation and drop malformed sections")
	calculateCmd.Flags().BoolVar(&calculateDevices, "devices", false, "Only list the disks available for installation")
	calculateCmd.Flags().BoolVar(&calculateMetrics, "metrics", false, "Print proposal metrics to stderr")
}
