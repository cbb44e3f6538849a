/*
Package cli provides command-line helpers shared by the portico command.

Output Formatting:

Commands that print structured results accept --format text|json:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, report); err != nil {
		return err
	}

Errors and Exit Codes:

Configuration problems are reported as *ConfigError and exit with
ExitConfig; every other failure exits with ExitFailure:

	os.Exit(cli.ExitCode(err))

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
