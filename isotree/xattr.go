//go:build !openbsd && !plan9

package isotree

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/pkg/xattr"
)

// aaipReservedPrefix marks engine-owned attribute names: names beginning
// with "isofs." are reserved for engine use and never exposed as plain
// user attributes.
const aaipReservedPrefix = "isofs."

// xattrSupported is a process-wide circuit breaker: once a call returns
// EINVAL/ENOTSUP/ENOATTR, every later xattr call short-circuits instead of
// probing the filesystem again. Global rather than per-path since a run
// builds one tree from one disk.
var xattrSupported atomic.Int32

func init() { xattrSupported.Store(1) }

func xattrIsNotSupported(err error) bool {
	xerr, ok := err.(*xattr.Error)
	if !ok {
		return false
	}
	if xerr.Err == syscall.EINVAL || xerr.Err == syscall.ENOTSUP || xerr.Err == xattr.ENOATTR {
		xattrSupported.Store(0)
		return true
	}
	return false
}

// ReadXattr loads diskPath's user-namespace extended attributes into n's
// ExtInfo dictionary, skipping any key under the engine-reserved
// "isofs." prefix.
func ReadXattr(n *Node, diskPath string, followSymlinks bool) error {
	if xattrSupported.Load() == 0 {
		return nil
	}
	var list []string
	var err error
	if followSymlinks {
		list, err = xattr.List(diskPath)
	} else {
		list, err = xattr.LList(diskPath)
	}
	if err != nil {
		if xattrIsNotSupported(err) {
			return nil
		}
		return fmt.Errorf("isotree: read xattr list for %q: %w", diskPath, err)
	}
	for _, k := range list {
		if !strings.HasPrefix(k, "user.") {
			continue
		}
		var v []byte
		if followSymlinks {
			v, err = xattr.Get(diskPath, k)
		} else {
			v, err = xattr.LGet(diskPath, k)
		}
		if err != nil {
			if xattrIsNotSupported(err) {
				return nil
			}
			return fmt.Errorf("isotree: read xattr %q for %q: %w", k, diskPath, err)
		}
		key := strings.TrimPrefix(k, "user.")
		if strings.HasPrefix(strings.ToLower(key), aaipReservedPrefix) {
			continue
		}
		n.mu.Lock()
		n.ExtInfo["user."+key] = v
		n.mu.Unlock()
	}
	return nil
}

// WriteXattr writes n's user-namespace ExtInfo entries back onto diskPath,
// the restore-to-disk counterpart of ReadXattr.
func WriteXattr(n *Node, diskPath string, followSymlinks bool) error {
	if xattrSupported.Load() == 0 {
		return nil
	}
	n.mu.RLock()
	entries := make(map[string][]byte, len(n.ExtInfo))
	for k, v := range n.ExtInfo {
		entries[k] = v
	}
	n.mu.RUnlock()

	for k, v := range entries {
		if !strings.HasPrefix(k, "user.") {
			continue
		}
		var err error
		if followSymlinks {
			err = xattr.Set(diskPath, k, v)
		} else {
			err = xattr.LSet(diskPath, k, v)
		}
		if err != nil {
			if xattrIsNotSupported(err) {
				return nil
			}
			return fmt.Errorf("isotree: write xattr %q to %q: %w", k, diskPath, err)
		}
	}
	return nil
}

// acl_ea tag values, from the Linux ext*/xfs/btrfs on-disk binary ACL
// format stored behind the "system.posix_acl_access"/"system.posix_acl_default"
// xattrs.
const (
	aclEAVersion = 0x0002

	aclTagUserObj  = 0x01
	aclTagUser     = 0x02
	aclTagGroupObj = 0x04
	aclTagGroup    = 0x08
	aclTagMask     = 0x10
	aclTagOther    = 0x20
)

// ReadACL loads diskPath's POSIX access and default ACLs, if set, from
// their binary acl_ea-encoded xattrs and records them on n via SetACL.
func ReadACL(n *Node, diskPath string, followSymlinks bool) error {
	if xattrSupported.Load() == 0 {
		return nil
	}
	if err := readOneACL(n, diskPath, "system.posix_acl_access", false, followSymlinks); err != nil {
		return err
	}
	return readOneACL(n, diskPath, "system.posix_acl_default", true, followSymlinks)
}

func readOneACL(n *Node, diskPath, key string, isDefault, followSymlinks bool) error {
	var raw []byte
	var err error
	if followSymlinks {
		raw, err = xattr.Get(diskPath, key)
	} else {
		raw, err = xattr.LGet(diskPath, key)
	}
	if err != nil {
		if xattrIsNotSupported(err) {
			return nil
		}
		if xerr, ok := err.(*xattr.Error); ok && xerr.Err == xattr.ENOATTR {
			return nil
		}
		return fmt.Errorf("isotree: read ACL %q for %q: %w", key, diskPath, err)
	}
	entries, err := decodeACLEA(raw)
	if err != nil {
		return fmt.Errorf("isotree: decode ACL %q for %q: %w", key, diskPath, err)
	}
	if len(entries) == 0 {
		return nil
	}
	return SetACL(n, entries, isDefault)
}

// decodeACLEA parses the Linux kernel's binary ACL representation: a
// 4-byte little-endian version, followed by 8-byte records of
// (tag uint16, perm uint16, id uint32), each little-endian.
func decodeACLEA(raw []byte) ([]ACLEntry, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("isotree: acl_ea buffer too short (%d bytes)", len(raw))
	}
	version := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
	if version != aclEAVersion {
		return nil, fmt.Errorf("isotree: unrecognised acl_ea version %d", version)
	}
	var entries []ACLEntry
	for off := 4; off+8 <= len(raw); off += 8 {
		tag := uint16(raw[off]) | uint16(raw[off+1])<<8
		perm := uint16(raw[off+2]) | uint16(raw[off+3])<<8
		id := uint32(raw[off+4]) | uint32(raw[off+5])<<8 | uint32(raw[off+6])<<16 | uint32(raw[off+7])<<24

		var e ACLEntry
		switch tag {
		case aclTagUserObj:
			e.Tag = "user"
		case aclTagUser:
			e.Tag = "user"
			e.Qualifier = strconv.FormatUint(uint64(id), 10)
		case aclTagGroupObj:
			e.Tag = "group"
		case aclTagGroup:
			e.Tag = "group"
			e.Qualifier = strconv.FormatUint(uint64(id), 10)
		case aclTagMask:
			e.Tag = "mask"
		case aclTagOther:
			e.Tag = "other"
		default:
			continue
		}
		e.Read = perm&0x04 != 0
		e.Write = perm&0x02 != 0
		e.Execute = perm&0x01 != 0
		entries = append(entries, e)
	}
	return entries, nil
}

// SetAttr implements the setAttr: add, overwrite, or delete
// one user-visible attribute, or clear all user attributes via the
// "--remove-all" pseudo-name with an empty value.
func SetAttr(n *Node, name string, value []byte) error {
	if strings.HasPrefix(name, aaipReservedPrefix) {
		return fmt.Errorf("isotree: %q is a reserved attribute name", name)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if name == "--remove-all" && len(value) == 0 {
		for k := range n.ExtInfo {
			if !strings.HasPrefix(k, aaipReservedPrefix) {
				delete(n.ExtInfo, k)
			}
		}
		return nil
	}
	if value == nil {
		delete(n.ExtInfo, "user."+name)
		return nil
	}
	n.ExtInfo["user."+name] = value
	return nil
}

// GetAttr reads one user-visible attribute set via SetAttr.
func GetAttr(n *Node, name string) ([]byte, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.ExtInfo["user."+name]
	return v, ok
}
