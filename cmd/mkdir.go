package cmd

import "github.com/spf13/cobra"

var mkdirCommand = &cobra.Command{
	Use:   "mkdir imagepath",
	Short: "Record creating an empty directory in the image tree",
	Run: func(cmd *cobra.Command, args []string) {
		CheckArgs(1, 1, cmd, args)
		stateFile, _ := cmd.Flags().GetString("state")
		Run(func() error {
			s, err := loadState(stateFile)
			if err != nil {
				return err
			}
			s.Mkdirs = append(s.Mkdirs, mkdirOp{ImagePath: args[0]})
			return saveState(stateFile, s)
		})
	},
}

func init() {
	Root.AddCommand(mkdirCommand)
	mkdirCommand.Flags().String("state", defaultStateFile, "project state file")
}
