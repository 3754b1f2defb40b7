// Command isoburn is the thin CLI personality exercising the isotree/
// drive/growth/command core: graft, mkdir, setattr, setfilter, boot,
// commit, scan, probe.
package main

import "github.com/isoburn/isoburn/cmd"

func main() {
	cmd.Execute()
}
