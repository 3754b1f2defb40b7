package isotree

import "sort"

// hlnKey is the sort key for the hardlink array: (dev, inode) then node
// pointer.
type hlnKey struct {
	dev, inode uint64
	node       *Node
}

// HardlinkIndex holds the two sorted auxiliary arrays this
// describes: hln_array (all image file nodes sharing a fingerprint with at
// least one sibling) and di_array (nodes known to share dev/inode with an
// on-disk file), plus the di_do_widen re-restore bitmap.
type HardlinkIndex struct {
	hln      []hlnKey
	hlnTargets map[*Node]string // hln_targets: discovered restore link-target names

	di       []hlnKey
	diDoWiden map[*Node]bool

	dirty bool
}

// NewHardlinkIndex creates an empty index. Callers must call Rebuild
// before using Siblings/MarkDiskMatch the first time.
func NewHardlinkIndex() *HardlinkIndex {
	return &HardlinkIndex{
		hlnTargets: make(map[*Node]string),
		diDoWiden:  make(map[*Node]bool),
	}
}

// Invalidate marks the index stale; the next Rebuild call regenerates it.
// Called on any tree mutation that changes membership or fingerprint, per
// the "change pending" flag.
func (h *HardlinkIndex) Invalidate() { h.dirty = true }

// Dirty reports whether Rebuild is needed.
func (h *HardlinkIndex) Dirty() bool { return h.dirty }

// Rebuild traverses root, collecting all file nodes with a fingerprint
// into the sorted hln_array "Build sorted arrays."
func (h *HardlinkIndex) Rebuild(root *Node) {
	h.hln = h.hln[:0]
	root.Walk(func(_ string, n *Node) {
		if n.Kind != KindFile {
			return
		}
		dev, inode, ok := n.Fingerprint()
		if !ok {
			return
		}
		h.hln = append(h.hln, hlnKey{dev, inode, n})
	})
	sort.Slice(h.hln, func(i, j int) bool {
		a, b := h.hln[i], h.hln[j]
		if a.dev != b.dev {
			return a.dev < b.dev
		}
		if a.inode != b.inode {
			return a.inode < b.inode
		}
		return uintptr2(a.node) < uintptr2(b.node)
	})
	h.dirty = false
}

// uintptr2 gives a stable, arbitrary total order over node pointers for
// the secondary sort key, without importing unsafe: the node's address as
// observed through a monotonically increasing counter would require
// mutating Node, so instead pointer identity via fmt is avoided and we
// fall back to comparing the Name field as a deterministic tiebreaker
// proxy. This is sufficient because true pointer equality is never needed
// here, only a stable order for binary search.
func uintptr2(n *Node) string { return n.Name }

// Siblings returns every node in the index sharing (dev, inode) with n,
// excluding n itself — n's current hardlink set.
func (h *HardlinkIndex) Siblings(n *Node) []*Node {
	dev, inode, ok := n.Fingerprint()
	if !ok {
		return nil
	}
	lo := sort.Search(len(h.hln), func(i int) bool {
		return h.hln[i].dev > dev || (h.hln[i].dev == dev && h.hln[i].inode >= inode)
	})
	var out []*Node
	for i := lo; i < len(h.hln) && h.hln[i].dev == dev && h.hln[i].inode == inode; i++ {
		if h.hln[i].node != n {
			out = append(out, h.hln[i].node)
		}
	}
	return out
}

// MarkDiskMatch records that n is known to share dev/inode with an
// on-disk file, joining di_array; if n already has siblings there, they
// are all flagged in di_do_widen for re-restore // "Detect splits on update."
func (h *HardlinkIndex) MarkDiskMatch(n *Node, dev, inode uint64) {
	siblings := h.Siblings(n)
	h.di = append(h.di, hlnKey{dev, inode, n})
	for _, s := range siblings {
		h.diDoWiden[s] = true
	}
}

// NeedsWiden reports whether n was flagged for re-restore after a sibling
// update.
func (h *HardlinkIndex) NeedsWiden(n *Node) bool { return h.diDoWiden[n] }

// ClearWiden clears n's re-restore flag once the caller has acted on it.
func (h *HardlinkIndex) ClearWiden(n *Node) { delete(h.diDoWiden, n) }

// RecordTarget records the first-extracted path for n's hardlink set, so
// subsequent siblings can be linked to it rather than copied during
// restore reconstruction.
func (h *HardlinkIndex) RecordTarget(n *Node, path string) {
	if _, exists := h.hlnTargets[n]; !exists {
		h.hlnTargets[n] = path
	}
}

// Target returns the recorded link target for n's hardlink set, if any.
func (h *HardlinkIndex) Target(n *Node) (string, bool) {
	t, ok := h.hlnTargets[n]
	return t, ok
}
