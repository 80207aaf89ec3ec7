package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/tkimura/transflow/internal/cli"
	"codeberg.org/tkimura/transflow/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx := context.Background()

	// Create processor
	proc, err := processor.NewProcessor(ctx, flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	// Handle --stats flag
	if flags.ShowStats {
		proc.ShowStats()
		return nil
	}

	// Handle file processing
	if flags.InputFile != "" {
		if err := proc.ProcessFile(ctx, flags.InputFile); err != nil {
			return err
		}
	} else if len(args) > 0 {
		// Translate a single segment
		if err := proc.ProcessText(ctx, args[0]); err != nil {
			return err
		}
	} else {
		// No input provided
		return fmt.Errorf("nothing to translate: pass a text argument or --file (see --help)")
	}

	return nil
}
