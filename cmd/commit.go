package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/isoburn/isoburn/growth"
	"github.com/isoburn/isoburn/internal/logs"
	"github.com/isoburn/isoburn/isotree"
	"github.com/isoburn/isoburn/isotree/filter"
)

var commitCommand = &cobra.Command{
	Use:   "commit output.iso",
	Short: "Replay the recorded graft/mkdir/setattr/setfilter/boot plan and emit a session",
	Run: func(cmd *cobra.Command, args []string) {
		CheckArgs(1, 1, cmd, args)
		stateFile, _ := cmd.Flags().GetString("state")
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		Run(func() error {
			return doCommit(stateFile, args[0], overwrite)
		})
	},
}

func init() {
	Root.AddCommand(commitCommand)
	commitCommand.Flags().String("state", defaultStateFile, "project state file")
	commitCommand.Flags().Bool("overwrite", false, "truncate the output file instead of appending a session")
}

func doCommit(stateFile, outputPath string, overwrite bool) error {
	s, err := loadState(stateFile)
	if err != nil {
		return err
	}
	v, err := s.build()
	if err != nil {
		return err
	}

	backend, err := growth.NewFileBackend(outputPath, overwrite)
	if err != nil {
		return fmt.Errorf("isoburn: open output %q: %w", outputPath, err)
	}
	nwa, err := backend.NWA()
	if err != nil {
		return fmt.Errorf("isoburn: determine next-writable address: %w", err)
	}

	// ECMA-119 reserves the first 16 sectors of a standalone image for the
	// system area; only the first session of a fresh file needs this
	// reservation, since later sessions append after an already-valid PVD.
	reserveSystemArea := nwa == 0
	baseLBA := int64(nwa)
	if reserveSystemArea {
		baseLBA += systemAreaBlocks
	}

	params := isotree.DefaultWriteParams()
	layout, err := isotree.ComputeLayout(v, params, baseLBA)
	if err != nil {
		return fmt.Errorf("isoburn: compute layout: %w", err)
	}
	logs.Infof("isoburn", "computed session layout: %d blocks across %d extents", layout.Blocks, len(layout.Extents))

	session, err := backend.OpenSession()
	if err != nil {
		return fmt.Errorf("isoburn: open session: %w", err)
	}

	if reserveSystemArea {
		if err := writeSystemArea(session); err != nil {
			session.Close()
			return fmt.Errorf("isoburn: write system area: %w", err)
		}
	}
	if err := streamExtents(session, v, layout); err != nil {
		session.Close()
		return err
	}
	if err := session.Close(); err != nil {
		return fmt.Errorf("isoburn: finalize session: %w", err)
	}
	logs.Infof("isoburn", "wrote %s (%d blocks)", outputPath, layout.Blocks)
	return nil
}

// streamExtents writes each extent's bytes in LBA order: descriptors, path
// tables and directory records are rendered by isotree's ISO 9660/Rock
// Ridge/Joliet encoder, the boot catalog by its El Torito encoder, and file
// content by streaming the node's filter chain. Every extent is padded to
// its allotted whole number of sectors before the next one starts.
func streamExtents(w io.Writer, v *isotree.Volume, layout *isotree.Layout) error {
	params := layout.Params
	zero := make([]byte, blockSizeBytes)

	writePadded := func(payload []byte, blocks int64) error {
		if _, err := w.Write(payload); err != nil {
			return err
		}
		pad := blocks*blockSizeBytes - int64(len(payload))
		for pad > 0 {
			n := pad
			if n > int64(len(zero)) {
				n = int64(len(zero))
			}
			if _, err := w.Write(zero[:n]); err != nil {
				return err
			}
			pad -= n
		}
		return nil
	}

	for _, ext := range layout.Extents {
		switch ext.Kind {
		case "pvd":
			lt, _ := layout.Find("path-table-l", "primary")
			rootLBA, rootLen, err := layout.Locate(v.Root, false)
			if err != nil {
				return fmt.Errorf("isoburn: locate root directory: %w", err)
			}
			mt, _ := layout.Find("path-table-m", "primary")
			payload := isotree.EncodePVD(v, params, layout.Blocks, lt.Length, lt.LBA, mt.LBA, rootLBA, rootLen)
			if err := writePadded(payload, ext.Blocks); err != nil {
				return err
			}
		case "svd":
			lt, _ := layout.Find("path-table-l", "joliet")
			mt, _ := layout.Find("path-table-m", "joliet")
			rootLBA, rootLen, err := layout.Locate(v.Root, true)
			if err != nil {
				return fmt.Errorf("isoburn: locate joliet root directory: %w", err)
			}
			payload, err := isotree.EncodeSVD(v, params, layout.Blocks, lt.Length, lt.LBA, mt.LBA, rootLBA, rootLen)
			if err != nil {
				return fmt.Errorf("isoburn: encode joliet descriptor: %w", err)
			}
			if err := writePadded(payload, ext.Blocks); err != nil {
				return err
			}
		case "path-table-l":
			lTable, _, err := isotree.BuildPathTables(v, ext.Tree == "joliet", params, layout)
			if err != nil {
				return fmt.Errorf("isoburn: build %s L path table: %w", ext.Tree, err)
			}
			if err := writePadded(lTable, ext.Blocks); err != nil {
				return err
			}
		case "path-table-m":
			_, mTable, err := isotree.BuildPathTables(v, ext.Tree == "joliet", params, layout)
			if err != nil {
				return fmt.Errorf("isoburn: build %s M path table: %w", ext.Tree, err)
			}
			if err := writePadded(mTable, ext.Blocks); err != nil {
				return err
			}
		case "dir":
			payload, err := isotree.BuildDirectoryExtent(ext.Node, ext.Tree == "joliet", params, layout)
			if err != nil {
				return fmt.Errorf("isoburn: encode directory %q: %w", ext.Node.Name, err)
			}
			if err := writePadded(payload, ext.Blocks); err != nil {
				return err
			}
		case "boot-catalog":
			payload, err := isotree.EncodeBootCatalog(&v.BootCatalog, layout)
			if err != nil {
				return fmt.Errorf("isoburn: encode boot catalog: %w", err)
			}
			if err := writePadded(payload, ext.Blocks); err != nil {
				return err
			}
		case "file":
			rc, err := filter.Open(ext.Node.Content)
			if err != nil {
				return fmt.Errorf("isoburn: open content for %q: %w", ext.Node.Name, err)
			}
			written, err := io.Copy(w, rc)
			rc.Close()
			if err != nil {
				return fmt.Errorf("isoburn: stream content for %q: %w", ext.Node.Name, err)
			}
			pad := ext.Blocks*blockSizeBytes - written
			for pad > 0 {
				n := pad
				if n > int64(len(zero)) {
					n = int64(len(zero))
				}
				if _, err := w.Write(zero[:n]); err != nil {
					return err
				}
				pad -= n
			}
		default: // "padding" and anything else unrecognized
			for i := int64(0); i < ext.Blocks; i++ {
				if _, err := w.Write(zero); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

const blockSizeBytes = 2048

// systemAreaBlocks is the number of 2048-byte sectors ECMA-119 reserves
// ahead of a standalone image's first volume descriptor. No MBR/APM/GPT
// hybrid overlay is encoded into it yet (isotree.SystemArea only tracks
// partition bounds for Validate, not their on-disk byte layout), so it is
// written as zero-filled padding.
const systemAreaBlocks = 16

func writeSystemArea(w io.Writer) error {
	zero := make([]byte, blockSizeBytes*systemAreaBlocks)
	_, err := w.Write(zero)
	return err
}
