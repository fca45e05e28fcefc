package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generate the manpage",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return fmt.Errorf("unable to build manpage: %w", err)
		}
		manPage = manPage.WithSection("Files",
			"lectio.yml in the user configuration directory, or in $LECTIO_CONFIG_HOME.\n"+
				"An optional .env file in the working directory is read before the environment.")
		fmt.Println(manPage.Build(roff.NewDocument()))
		return nil
	},
}
