package cmd

import (
	"github.com/spf13/cobra"

	"github.com/isoburn/isoburn/isotree"
)

var graftCommand = &cobra.Command{
	Use:   "graft diskpath imagepath",
	Short: "Record inserting a disk file or directory into the image tree",
	Run: func(cmd *cobra.Command, args []string) {
		CheckArgs(2, 2, cmd, args)
		stateFile, _ := cmd.Flags().GetString("state")
		noDive, _ := cmd.Flags().GetBool("no-dive")
		Run(func() error {
			s, err := loadState(stateFile)
			if err != nil {
				return err
			}
			s.Grafts = append(s.Grafts, graftOp{
				DiskPath:  args[0],
				ImagePath: args[1],
				Opts:      isotree.GraftOptions{Overwrite: isotree.OverwriteNondir, NoDive: noDive},
			})
			return saveState(stateFile, s)
		})
	},
}

func init() {
	Root.AddCommand(graftCommand)
	graftCommand.Flags().String("state", defaultStateFile, "project state file")
	graftCommand.Flags().Bool("no-dive", false, "do not recurse into grafted directories")
}
