package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isoburn/isoburn/transport"
)

var scanCommand = &cobra.Command{
	Use:   "scan",
	Short: "List SCSI/MMC device addresses the platform adapter can see",
	Run: func(cmd *cobra.Command, args []string) {
		CheckArgs(0, 0, cmd, args)
		Run(func() error {
			addrs, err := transport.PlatformAdapter().Enumerate()
			if err != nil {
				return err
			}
			for _, a := range addrs {
				fmt.Println(a)
			}
			return nil
		})
	},
}

func init() {
	Root.AddCommand(scanCommand)
}
