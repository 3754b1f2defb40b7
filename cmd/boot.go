package cmd

import (
	"github.com/spf13/cobra"

	"github.com/isoburn/isoburn/isotree"
)

var bootCommand = &cobra.Command{
	Use:   "boot imagepath",
	Short: "Record attaching an El Torito boot image (x86, no emulation, default entry)",
	Run: func(cmd *cobra.Command, args []string) {
		CheckArgs(1, 1, cmd, args)
		stateFile, _ := cmd.Flags().GetString("state")
		id, _ := cmd.Flags().GetString("id")
		efi, _ := cmd.Flags().GetBool("efi")
		Run(func() error {
			s, err := loadState(stateFile)
			if err != nil {
				return err
			}
			spec := isotree.BootImageSpec{
				Platform:  isotree.BootPlatformX86,
				Emulation: isotree.EmulationNone,
				BootFile:  args[0],
				IDString:  id,
			}
			if efi {
				spec.Platform = isotree.BootPlatformEFI
				spec.NoEmulEFI = true
			}
			s.Boots = append(s.Boots, spec)
			return saveState(stateFile, s)
		})
	},
}

func init() {
	Root.AddCommand(bootCommand)
	bootCommand.Flags().String("state", defaultStateFile, "project state file")
	bootCommand.Flags().String("id", "", "catalog entry id string")
	bootCommand.Flags().Bool("efi", false, "attach as a no-emulation EFI entry instead of x86 BIOS")
}
