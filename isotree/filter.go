package isotree

import "fmt"

// Sentinel errors for SetFilter/RemoveFilter.
var (
	errNotAFile         = fmt.Errorf("isotree: filters apply only to file nodes")
	errNoExternalFilter = fmt.Errorf("isotree: external transform requires a registered filter")
	errSetuidFiltered   = fmt.Errorf("isotree: refusing to filter a setuid/setgid file")
	errNoFilterApplied  = fmt.Errorf("isotree: node has no filter to remove")
)

// FilterBehavior bits refine how an external filter program must behave,
// "behavior flags" on an external filter registration.
type FilterBehavior uint8

const (
	// BehaviorRemoveSuffix makes SetFilter append External.Suffix to the
	// visible node name and RemoveFilter strip it again; without this bit
	// the node name is left unchanged.
	BehaviorRemoveSuffix FilterBehavior = 1 << iota
	// BehaviorForbidSetuid refuses to run the filter on a node whose Mode
	// carries the setuid or setgid bit safety rule.
	BehaviorForbidSetuid
	// BehaviorRequireNonEmpty is stored on the registration but not
	// checked: a filter that produces zero bytes of output is not failed.
	BehaviorRequireNonEmpty
	// BehaviorRequireReduction is stored on the registration but not
	// checked: output that is not smaller than the input is passed through
	// unchanged.
	BehaviorRequireReduction
)

// ExternalFilter describes a named, registered external filter program,
//.: "A filter may instead be external: an argv vector
// invoked as the data's producer or consumer, identified by name and
// carrying behavior flags."
type ExternalFilter struct {
	Name     string
	Argv     []string
	Suffix   string
	Behavior FilterBehavior

	// refs counts nodes currently using this filter, so it cannot be
	// deregistered while in use.
	refs int
}

// Retain increments the filter's use count.
func (f *ExternalFilter) Retain() { f.refs++ }

// Release decrements the filter's use count, reporting whether it reached
// zero (safe to deregister).
func (f *ExternalFilter) Release() bool {
	if f.refs > 0 {
		f.refs--
	}
	return f.refs == 0
}

// InUse reports whether any node currently references f.
func (f *ExternalFilter) InUse() bool { return f.refs > 0 }

// forbidsSetuid reports whether applying f to a node with the given mode
// bits is refused by the setuid-safety rule.
func (f *ExternalFilter) forbidsSetuid(mode uint32) bool {
	const setuidSetgid = 0o6000
	return f.Behavior&BehaviorForbidSetuid != 0 && mode&setuidSetgid != 0
}

// SetFilter wraps n's content stream with kind, applying suffix bookkeeping
// and the setuid safety check for external filters.
func SetFilter(n *Node, kind TransformKind, ext *ExternalFilter) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Kind != KindFile {
		return errNotAFile
	}
	if kind == TransformExternal {
		if ext == nil {
			return errNoExternalFilter
		}
		if ext.forbidsSetuid(n.Mode) {
			return errSetuidFiltered
		}
	}
	suffix := ""
	if ext != nil {
		suffix = ext.Suffix
	}
	n.Content = n.Content.Wrap(kind, suffix)
	n.Content.External = ext
	if ext != nil && ext.Behavior&BehaviorRemoveSuffix != 0 {
		n.Name += suffix
	}
	if ext != nil {
		ext.Retain()
	}
	return nil
}

// RemoveFilter pops the outermost transform from n's content stream,
// restoring the pre-filter name when the filter used BehaviorRemoveSuffix.
func RemoveFilter(n *Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Kind != KindFile || n.Content == nil || n.Content.Inner == nil {
		return errNoFilterApplied
	}
	outer := n.Content
	if outer.External != nil {
		if outer.External.Behavior&BehaviorRemoveSuffix != 0 {
			n.Name = trimSuffix(n.Name, outer.Suffix)
		}
		outer.External.Release()
	}
	n.Content = outer.Unwrap()
	return nil
}

func trimSuffix(s, suffix string) string {
	if len(suffix) > 0 && len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)]
	}
	return s
}
