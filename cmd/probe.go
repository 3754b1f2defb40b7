package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isoburn/isoburn/drive"
	"github.com/isoburn/isoburn/transport"
)

var probeCommand = &cobra.Command{
	Use:   "probe device",
	Short: "Grab, probe and read the TOC of a drive, printing its characterization",
	Run: func(cmd *cobra.Command, args []string) {
		CheckArgs(1, 1, cmd, args)
		exclusive, _ := cmd.Flags().GetBool("exclusive")
		Run(func() error {
			return doProbe(args[0], exclusive)
		})
	},
}

func init() {
	Root.AddCommand(probeCommand)
	probeCommand.Flags().Bool("exclusive", false, "grab the drive exclusively")
}

func doProbe(address string, exclusive bool) error {
	d := drive.New(transport.PlatformAdapter(), address)
	if err := drive.OpenAndCharacterize(d, exclusive); err != nil {
		return err
	}
	defer drive.Close(d)

	fmt.Printf("vendor:   %s\n", d.Caps.Inquiry.Vendor)
	fmt.Printf("product:  %s\n", d.Caps.Inquiry.Product)
	fmt.Printf("revision: %s\n", d.Caps.Inquiry.Revision)
	if d.Caps.HasModePage {
		fmt.Printf("write speed (KB/s): %d\n", d.Caps.ModePage2A.MaxWriteSpeedKBs)
	}
	if d.Caps.HasProfiles {
		fmt.Printf("profiles: %v (active 0x%04x)\n", d.Caps.Profiles, d.Caps.ActiveProfile)
	}
	if err := d.ReadTOC(); err != nil {
		fmt.Printf("medium: not ready (%v)\n", err)
		return nil
	}
	fmt.Printf("NWA: %d\n", d.NWA)
	return nil
}
