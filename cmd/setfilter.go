package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isoburn/isoburn/isotree"
)

var filterKinds = map[string]isotree.TransformKind{
	"gzip":           isotree.TransformGzip,
	"gunzip":         isotree.TransformGunzip,
	"zisofs-encode":  isotree.TransformZisofsEncode,
	"zisofs-decode":  isotree.TransformZisofsDecode,
}

var setfilterCommand = &cobra.Command{
	Use:   "setfilter imagepath kind",
	Short: "Record wrapping a file's content stream with a built-in filter (gzip/gunzip/zisofs-encode/zisofs-decode)",
	Run: func(cmd *cobra.Command, args []string) {
		CheckArgs(2, 2, cmd, args)
		stateFile, _ := cmd.Flags().GetString("state")
		kind, ok := filterKinds[args[1]]
		Run(func() error {
			if !ok {
				return fmt.Errorf("isoburn: unknown filter kind %q", args[1])
			}
			s, err := loadState(stateFile)
			if err != nil {
				return err
			}
			s.Filters = append(s.Filters, filterOp{ImagePath: args[0], Kind: kind})
			return saveState(stateFile, s)
		})
	},
}

var removeFilterCommand = &cobra.Command{
	Use:   "removefilter imagepath",
	Short: "Record popping the outermost filter from a file's content stream",
	Run: func(cmd *cobra.Command, args []string) {
		CheckArgs(1, 1, cmd, args)
		stateFile, _ := cmd.Flags().GetString("state")
		Run(func() error {
			s, err := loadState(stateFile)
			if err != nil {
				return err
			}
			s.Filters = append(s.Filters, filterOp{ImagePath: args[0], Remove: true})
			return saveState(stateFile, s)
		})
	},
}

func init() {
	Root.AddCommand(setfilterCommand)
	Root.AddCommand(removeFilterCommand)
	setfilterCommand.Flags().String("state", defaultStateFile, "project state file")
	removeFilterCommand.Flags().String("state", defaultStateFile, "project state file")
}
