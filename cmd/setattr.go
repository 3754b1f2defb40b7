package cmd

import "github.com/spf13/cobra"

var setattrCommand = &cobra.Command{
	Use:   "setattr imagepath name [value]",
	Short: "Record setting (or, with --remove, clearing) an extended attribute",
	Run: func(cmd *cobra.Command, args []string) {
		CheckArgs(2, 3, cmd, args)
		stateFile, _ := cmd.Flags().GetString("state")
		remove, _ := cmd.Flags().GetBool("remove")
		var value []byte
		if len(args) == 3 {
			value = []byte(args[2])
		}
		Run(func() error {
			s, err := loadState(stateFile)
			if err != nil {
				return err
			}
			s.Attrs = append(s.Attrs, attrOp{
				ImagePath: args[0],
				Name:      args[1],
				Value:     value,
				Delete:    remove,
			})
			return saveState(stateFile, s)
		})
	},
}

func init() {
	Root.AddCommand(setattrCommand)
	setattrCommand.Flags().String("state", defaultStateFile, "project state file")
	setattrCommand.Flags().Bool("remove", false, "delete the attribute instead of setting it")
}
