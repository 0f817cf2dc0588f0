// mrcz inspects and re-encodes MRC/MRCZ volume files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	cliName        = "mrcz"
	cliDescription = "inspect and convert MRC/MRCZ volume files"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           cliName,
		Short:         cliDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInfoCommand(),
		newConvertCommand(),
	)
	return root
}

func main() {
	cobra.EnablePrefixMatching = true
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mrcz error: %s\n", err)
		os.Exit(1)
	}
}
