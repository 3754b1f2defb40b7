package cmd

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/isoburn/isoburn/isotree"
)

// defaultStateFile is where a CLI-driven build plan persists between
// invocations, since each subcommand is a separate process and the live
// isotree.Node graph (mutexes, func-valued leaf openers) cannot itself be
// serialized.
const defaultStateFile = ".isoburn-state.gob"

// graftOp is one planned graft, replayed into a fresh isotree.Volume at
// commit time.
type graftOp struct {
	DiskPath, ImagePath string
	Opts                isotree.GraftOptions
}

type mkdirOp struct {
	ImagePath string
}

type attrOp struct {
	ImagePath, Name string
	Value           []byte
	Delete          bool
}

// filterOp records a built-in setFilter/removeFilter call; external
// filters are not plannable through the CLI's stateless project file since
// an *isotree.ExternalFilter carries a live reference count the next
// process invocation cannot recover.
type filterOp struct {
	ImagePath string
	Kind      isotree.TransformKind
	Remove    bool
}

// ProjectState is the on-disk plan a sequence of `isoburn` invocations
// builds up before `isoburn commit` replays it into a live Volume and
// emits a session.
type ProjectState struct {
	VolumeID string
	Grafts   []graftOp
	Mkdirs   []mkdirOp
	Attrs    []attrOp
	Filters  []filterOp
	Boots    []isotree.BootImageSpec

	OutputPath string
	Overwrite  bool
}

func loadState(path string) (*ProjectState, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &ProjectState{VolumeID: "ISOBURN"}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var s ProjectState
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("cmd: decode project state %q: %w", path, err)
	}
	return &s, nil
}

func saveState(path string, s *ProjectState) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(s)
}

// build replays the recorded operations into a fresh, live Volume.
func (s *ProjectState) build() (*isotree.Volume, error) {
	v := isotree.NewVolume(s.VolumeID)
	for _, op := range s.Mkdirs {
		if _, err := isotree.MkdirAll(v.Root, op.ImagePath, ""); err != nil {
			return nil, fmt.Errorf("cmd: mkdir %q: %w", op.ImagePath, err)
		}
	}
	for _, op := range s.Grafts {
		if _, err := isotree.Graft(v.Root, op.DiskPath, op.ImagePath, op.Opts); err != nil {
			return nil, fmt.Errorf("cmd: graft %q -> %q: %w", op.DiskPath, op.ImagePath, err)
		}
	}
	for _, op := range s.Attrs {
		n, err := isotree.Resolve(v.Root, op.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("cmd: setattr %q: %w", op.ImagePath, err)
		}
		if op.Delete {
			if err := isotree.SetAttr(n, op.Name, nil); err != nil {
				return nil, err
			}
			continue
		}
		if err := isotree.SetAttr(n, op.Name, op.Value); err != nil {
			return nil, err
		}
	}
	for _, op := range s.Filters {
		n, err := isotree.Resolve(v.Root, op.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("cmd: setfilter %q: %w", op.ImagePath, err)
		}
		if op.Remove {
			if err := isotree.RemoveFilter(n); err != nil {
				return nil, err
			}
			continue
		}
		if err := isotree.SetFilter(n, op.Kind, nil); err != nil {
			return nil, err
		}
	}
	for _, spec := range s.Boots {
		if _, err := v.BootCatalog.AttachBootImage(v.Root, spec); err != nil {
			return nil, fmt.Errorf("cmd: attach boot image %q: %w", spec.BootFile, err)
		}
	}
	return v, nil
}
