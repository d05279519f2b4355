// Command smartalarmsim replays a scripted night of heart-rate samples
// through a real alarm.Controller on a virtual clock, printing every
// window-open/phase-change/fire transition it observes.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/infinitime/smartalarm/internal/simulator"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smartalarmsim",
		Short: "Replay a scripted night of heart-rate samples against the smart-alarm controller",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(exampleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a scenario file and print the resulting transitions",
		Long: `Replay a scenario file and print the resulting transitions.

The scenario drives a real alarm controller on a fake clock, so a whole
night's worth of samples replays instantly. Use "smartalarmsim example" to
write out a starter fixture.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := simulator.LoadScenario(scenarioPath)
			if err != nil {
				return err
			}

			result, err := simulator.Run(scenario, os.Stdout)
			if err != nil {
				return err
			}

			printSummary(result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "path to a scenario YAML file")
	cmd.MarkFlagRequired("scenario")

	return cmd
}

func exampleCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Write a starter scenario file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := simulator.ExampleScenario().Save(out); err != nil {
				return err
			}
			fmt.Printf("wrote example scenario to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "scenario.yaml", "where to write the example scenario")

	return cmd
}

func printSummary(result simulator.Result) {
	fmt.Println()
	if !result.Fired {
		color.New(color.FgRed).Println("SUMMARY: alarm never fired")
		return
	}

	label := "deadline"
	if result.Early {
		label = "early light-sleep wake"
	}
	color.New(color.FgGreen).Printf(
		"SUMMARY: fired at %s via %s, phase=%s\n",
		result.FiredAt.Format("15:04:05"), label, result.Phase,
	)
}
