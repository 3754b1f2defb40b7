package isotree

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HFSPlusOptions carries the HFS+ hybrid volume knobs a Volume may set,
// "HFS+ volume options".
type HFSPlusOptions struct {
	Enabled    bool
	VolumeName string
	Blessed    map[string]*Node // e.g. "system_folder", "osx_folder" -> node
}

// MIPSBootFile is one entry of a Volume's optional MIPS Big/Little-Endian
// boot file list.
type MIPSBootFile struct {
	Path        string
	LoadAddress uint32
}

// Volume is the root of one ISO tree build.: "Root
// directory plus: volume identifier, publisher, preparer, application id,
// system id, abstract/biblio/copyright file references,
// creation/modification/expiration/effective times, volume UUID. Plus a
// set of El Torito boot images (0..N), optional MBR/APM/GPT system-area
// overlay, optional MIPS boot file list, HFS+ volume options."
type Volume struct {
	Root *Node

	VolumeID      string
	Publisher     string
	Preparer      string
	ApplicationID string
	SystemID      string

	AbstractFile  string
	BiblioFile    string
	CopyrightFile string

	CreationTime    time.Time
	ModificationTime time.Time
	ExpirationTime  time.Time
	EffectiveTime   time.Time

	UUID uuid.UUID

	BootCatalog BootCatalog
	SystemArea  SystemArea
	MIPSBoot    []MIPSBootFile
	HFSPlus     HFSPlusOptions

	Hardlinks *HardlinkIndex
}

// NewVolume creates an empty volume with a fresh root directory and a
// freshly-generated UUID.
func NewVolume(volumeID string) *Volume {
	return &Volume{
		Root:      NewDirectory(""),
		VolumeID:  volumeID,
		UUID:      uuid.New(),
		Hardlinks: NewHardlinkIndex(),
	}
}

// Validate checks v against the invariant: "a write may not
// start unless at most one El Torito 'default' entry exists per catalog
// and all referenced boot files are reachable in the tree."
func (v *Volume) Validate() error {
	defaults := 0
	for _, e := range v.BootCatalog.Entries {
		if e.Spec.Platform == BootPlatformX86 && e.Spec.Emulation != EmulationNone {
			defaults++
		}
		if _, err := Resolve(v.Root, pathOf(v.Root, e.Node)); err != nil {
			return fmt.Errorf("isotree: boot catalog entry %q is not reachable: %w", e.Spec.BootFile, err)
		}
	}
	if defaults > 1 {
		return fmt.Errorf("isotree: at most one El Torito default entry is allowed per catalog, found %d", defaults)
	}
	return nil
}

// pathOf reconstructs n's path from root by walking Parent links, used for
// boot-file reachability checks.
func pathOf(root, n *Node) string {
	if n == nil {
		return ""
	}
	var segs []string
	for cur := n; cur != nil && cur != root; cur = cur.Parent {
		segs = append([]string{cur.Name}, segs...)
	}
	path := "/"
	for i, s := range segs {
		if i > 0 {
			path += "/"
		}
		path += s
	}
	return path
}
