package isotree

import (
	"strings"
)

// Rock Ridge (RRIP, IEEE P1282) carries POSIX semantics as a chain of
// SUSP system-use entries appended to a directory record: two signature
// bytes, a one-byte length (including the 4-byte header), and a one-byte
// version, followed by entry-specific payload.

const rrVersion = 1

func suspHeader(sig string, length int) []byte {
	b := make([]byte, 4)
	b[0], b[1] = sig[0], sig[1]
	b[2] = byte(length)
	b[3] = rrVersion
	return b
}

// rrFlags bits, the "RR" extension-presence entry.
const (
	rrHasPX = 1 << iota
	rrHasPN
	rrHasSL
	rrHasNM
	rrHasCL
	rrHasPL
	rrHasRE
	rrHasTF
)

func encodeRR(flags byte) []byte {
	b := suspHeader("RR", 5)
	return append(b, flags)
}

// encodePX encodes a POSIX-attributes entry: mode, link count, uid, gid,
// each a both-endian 32-bit field.
func encodePX(mode, nlink, uid, gid uint32) []byte {
	b := suspHeader("PX", 36)
	payload := make([]byte, 32)
	put733(payload[0:8], mode)
	put733(payload[8:16], nlink)
	put733(payload[16:24], uid)
	put733(payload[24:32], gid)
	return append(b, payload...)
}

func decodePX(b []byte) (mode, nlink, uid, gid uint32, ok bool) {
	if len(b) < 36 {
		return 0, 0, 0, 0, false
	}
	return get733(b[4:12]), get733(b[12:20]), get733(b[20:28]), get733(b[28:36]), true
}

// encodePN encodes a device-special entry: major/minor device numbers as
// both-endian 32-bit fields (ECMA RRIP widens both to 32 bits, wider than
// any native dev_t half so no platform's major/minor ever truncates).
func encodePN(major, minor uint32) []byte {
	b := suspHeader("PN", 20)
	payload := make([]byte, 16)
	put733(payload[0:8], major)
	put733(payload[8:16], minor)
	return append(b, payload...)
}

func decodePN(b []byte) (major, minor uint32, ok bool) {
	if len(b) < 20 {
		return 0, 0, false
	}
	return get733(b[4:12]), get733(b[12:20]), true
}

// encodeNM encodes an alternate-name entry carrying n's real name,
// continuation-free (the whole name fits in one entry; names long enough
// to need NM "continues" chaining are out of scope here).
func encodeNM(name string) []byte {
	b := suspHeader("NM", 5+len(name))
	b = append(b, 0) // flags: no CONTINUE, no CURRENT, no PARENT
	return append(b, name...)
}

func decodeNM(b []byte) (string, bool) {
	if len(b) < 5 {
		return "", false
	}
	return string(b[5:]), true
}

// Rock Ridge TF flags selecting which timestamps follow.
const (
	tfModify = 1 << iota
	tfAccess
	tfAttributes
)

// encodeTF encodes modify/access/attribute(ctime) timestamps using the
// directory-record's 7-byte binary date format (not the volume
// descriptor's ASCII-digit format).
func encodeTF(mtime, atime, ctime [7]byte) []byte {
	b := suspHeader("TF", 5+21)
	b = append(b, tfModify|tfAccess|tfAttributes)
	b = append(b, mtime[:]...)
	b = append(b, atime[:]...)
	b = append(b, ctime[:]...)
	return b
}

func decodeTF(b []byte) (mtime, atime, ctime [7]byte, ok bool) {
	if len(b) < 5+21 || b[4] != tfModify|tfAccess|tfAttributes {
		return mtime, atime, ctime, false
	}
	copy(mtime[:], b[5:12])
	copy(atime[:], b[12:19])
	copy(ctime[:], b[19:26])
	return mtime, atime, ctime, true
}

// Symlink component flags (SL entries).
const (
	slContinue = 1 << iota
	slCurrent
	slParent
	slRoot
)

// encodeSL encodes a symlink-target entry as a sequence of component
// records, splitting on '/' the way RRIP requires one component per path
// segment rather than storing the raw string.
func encodeSL(target string) []byte {
	var comps []byte
	abs := strings.HasPrefix(target, "/")
	parts := strings.Split(strings.Trim(target, "/"), "/")
	if abs {
		comps = append(comps, slRoot, 0)
	}
	for _, p := range parts {
		if p == "" {
			continue
		}
		switch p {
		case ".":
			comps = append(comps, slCurrent, 0)
		case "..":
			comps = append(comps, slParent, 0)
		default:
			comps = append(comps, 0, byte(len(p)))
			comps = append(comps, p...)
		}
	}
	b := suspHeader("SL", 5+len(comps))
	b = append(b, 0) // entry flags: no CONTINUE
	return append(b, comps...)
}

func decodeSL(b []byte) (string, bool) {
	if len(b) < 5 {
		return "", false
	}
	var segs []string
	abs := false
	i := 5
	for i+2 <= len(b) {
		flags, length := b[i], int(b[i+1])
		i += 2
		switch {
		case flags&slRoot != 0:
			abs = true
		case flags&slCurrent != 0:
			segs = append(segs, ".")
		case flags&slParent != 0:
			segs = append(segs, "..")
		default:
			if i+length > len(b) {
				return "", false
			}
			segs = append(segs, string(b[i:i+length]))
			i += length
		}
	}
	target := strings.Join(segs, "/")
	if abs {
		target = "/" + target
	}
	return target, true
}

// suspEntries splits a raw system-use area into individual SUSP entries,
// stopping at the first malformed or zero-length header.
func suspEntries(raw []byte) map[string][]byte {
	out := make(map[string][]byte)
	i := 0
	for i+4 <= len(raw) {
		sig := string(raw[i : i+2])
		length := int(raw[i+2])
		if length < 4 || i+length > len(raw) {
			break
		}
		out[sig] = raw[i : i+length]
		i += length
	}
	return out
}

// buildSystemUse assembles the Rock Ridge system-use area for n, given
// its visible (possibly 8.3-shortened) ISO name.
func buildSystemUse(n *Node) []byte {
	var flags byte
	var out []byte

	mode := n.Mode
	switch n.Kind {
	case KindDirectory:
		mode |= 0o040000
	case KindSymlink:
		mode |= 0o120000
	case KindSpecial:
		mode |= 0o020000
	default:
		mode |= 0o100000
	}
	out = append(out, encodePX(mode, 1, n.UID, n.GID)...)
	flags |= rrHasPX

	out = append(out, encodeNM(n.Name)...)
	flags |= rrHasNM

	mt, at, ct := encodeRecordDateTime(n.MTime), encodeRecordDateTime(n.ATime), encodeRecordDateTime(n.CTime)
	out = append(out, encodeTF(mt, at, ct)...)
	flags |= rrHasTF

	if n.Kind == KindSymlink {
		out = append(out, encodeSL(n.Target)...)
		flags |= rrHasSL
	}
	if n.Kind == KindSpecial {
		out = append(out, encodePN(n.DeviceMajor, n.DeviceMinor)...)
		flags |= rrHasPN
	}

	return append(encodeRR(flags), out...)
}

// applySystemUse decodes a directory record's Rock Ridge system-use area
// back onto n, restoring the real name, POSIX attributes, and
// symlink/device payloads an 8.3-shortened ISO name can't carry.
func applySystemUse(n *Node, raw []byte) error {
	entries := suspEntries(raw)
	if nm, ok := entries["NM"]; ok {
		if name, ok := decodeNM(nm); ok && name != "" {
			n.Name = name
		}
	}
	if px, ok := entries["PX"]; ok {
		if mode, _, uid, gid, ok := decodePX(px); ok {
			n.Mode = mode & 0o7777
			n.UID = uid
			n.GID = gid
		}
	}
	if tf, ok := entries["TF"]; ok {
		if mt, at, ct, ok := decodeTF(tf); ok {
			n.MTime = decodeRecordDateTime(mt[:])
			n.ATime = decodeRecordDateTime(at[:])
			n.CTime = decodeRecordDateTime(ct[:])
		}
	}
	if sl, ok := entries["SL"]; ok && n.Kind == KindSymlink {
		if target, ok := decodeSL(sl); ok {
			n.Target = target
		}
	}
	if pn, ok := entries["PN"]; ok && n.Kind == KindSpecial {
		if major, minor, ok := decodePN(pn); ok {
			n.DeviceMajor, n.DeviceMinor = major, minor
		}
	}
	return nil
}
