package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/itohio/gocapm/pkg/config"
	"github.com/itohio/gocapm/pkg/link"
)

type runFlags struct {
	configPath  string
	capacitance float64
	noise       float64
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulated meter",
		Long: `Run the meter firmware on a simulated board.

Keys: 1-5 press the board buttons, +/- change the capacitor, x removes or
reinserts it, c copies the record log, q quits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "config.yaml", "Configuration file path")
	cmd.Flags().Float64Var(&flags.capacitance, "capacitance", -1, "Simulated capacitor in nF (overrides config)")
	cmd.Flags().Float64Var(&flags.noise, "noise", -1, "Noise in nF added per reading (overrides config)")

	return cmd
}

func runSim(flags *runFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.capacitance >= 0 {
		cfg.Mock.CapacitanceNF = flags.capacitance
	}
	if flags.noise >= 0 {
		cfg.Mock.NoiseNF = flags.noise
	}

	menuCfg, err := cfg.Menu()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	mock := link.NewMock(&cfg.Mock, menuCfg)
	if err := mock.Connect(); err != nil {
		return fmt.Errorf("failed to start simulated meter: %w", err)
	}
	defer mock.Close()

	program := tea.NewProgram(newModel(mock), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
