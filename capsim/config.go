package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itohio/gocapm/pkg/config"
)

type configFlags struct {
	output string
	force  bool
}

func newConfigCmd() *cobra.Command {
	flags := &configFlags{}
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the default configuration",
		Long: `Write the default configuration with the board constants to a YAML file.
The same file is read by capsim run and capmon.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeDefaultConfig(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "config.yaml", "Configuration file to write")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing file")

	return cmd
}

func writeDefaultConfig(flags *configFlags) error {
	if !flags.force {
		if _, err := os.Stat(flags.output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", flags.output)
		}
	}
	if err := config.Default().Save(flags.output); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Configuration written: %s\n", flags.output)
	return nil
}
