//go:build linux

package transport

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sgIoHdr mirrors struct sg_io_hdr from <scsi/sg.h>, the ioctl(2) argument
// sg_issue_command in sg-linux.c fills in before calling ioctl(fd, SG_IO, &s).
// Pointer fields are carried as uintptr so the struct has a fixed, C-matching
// layout; callers must keep the referenced slices alive and pinned for the
// duration of the ioctl.
type sgIoHdr struct {
	interfaceID    int32
	dxferDirection int32
	cmdLen         uint8
	mxSbLen        uint8
	iovecCount     uint16
	dxferLen       uint32
	dxferp         uintptr
	cmdp           uintptr
	sbp            uintptr
	timeout        uint32
	flags          uint32
	packID         int32
	usrPtr         uintptr
	status         uint8
	maskedStatus   uint8
	msgStatus      uint8
	sbLenWr        uint8
	hostStatus     uint16
	driverStatus   uint16
	resid          int32
	duration       uint32
	info           uint32
}

const (
	sgInterfaceID = 'S'

	sgDxferNone    = -1
	sgDxferToDev   = -2
	sgDxferFromDev = -3

	sgIOIoctl = 0x2285 // SG_IO, per <scsi/sg.h>
)

// linuxHandle is the handle a grabbed Linux device is tracked under.
type linuxHandle struct {
	address string
	fd      int
}

func (h *linuxHandle) Address() string { return h.address }

// Linux is the SG_IO transport adapter: one ioctl(2) per command, against an
// fd opened on /dev/sr*, /dev/scd* or /dev/sg* directly, per sg-linux.c's
// sg_issue_command. It never shells out to a helper process.
type Linux struct {
	mu sync.Mutex
}

// NewLinux creates a Linux SG_IO adapter.
func NewLinux() *Linux { return &Linux{} }

// IDString implements Adapter.
func (l *Linux) IDString() string { return "linux-sg" }

// Initialize implements Adapter.
func (l *Linux) Initialize() error { return nil }

// Shutdown implements Adapter.
func (l *Linux) Shutdown() error { return nil }

// Enumerate lists device nodes under the three prefixes sg-linux.c probes,
// in that preference order: /dev/sr*, /dev/scd*, /dev/sg*.
func (l *Linux) Enumerate() ([]string, error) {
	var out []string
	for _, pattern := range []string{"/dev/sr*", "/dev/scd*", "/dev/sg*"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// Grab opens address, optionally with O_EXCL, matching sg-linux.c's use of
// O_EXCL plus O_NONBLOCK for an exclusive lock attempt on the device node.
func (l *Linux) Grab(address string, exclusive bool) (DriveHandle, error) {
	flags := os.O_RDWR | unix.O_NONBLOCK
	if exclusive {
		flags |= unix.O_EXCL
	}
	fd, err := unix.Open(address, flags, 0)
	if err != nil {
		if err == unix.ENOENT {
			return nil, ErrNotFound
		}
		if err == unix.EBUSY {
			return nil, ErrBusy
		}
		return nil, err
	}
	return &linuxHandle{address: address, fd: fd}, nil
}

// Release closes the device fd.
func (l *Linux) Release(h DriveHandle) error {
	lh := h.(*linuxHandle)
	return unix.Close(lh.fd)
}

// Issue fills in an sg_io_hdr the way sg_issue_command does and invokes the
// SG_IO ioctl, then copies back status/sense/duration.
func (l *Linux) Issue(h DriveHandle, cmd *Command) error {
	lh := h.(*linuxHandle)

	var hdr sgIoHdr
	hdr.interfaceID = sgInterfaceID
	hdr.cmdLen = uint8(len(cmd.Opcode))
	if len(cmd.Opcode) > 0 {
		hdr.cmdp = uintptr(unsafe.Pointer(&cmd.Opcode[0]))
	}
	if len(cmd.Sense) == 0 {
		cmd.Sense = make([]byte, 32)
	}
	hdr.mxSbLen = uint8(len(cmd.Sense))
	hdr.sbp = uintptr(unsafe.Pointer(&cmd.Sense[0]))

	switch cmd.Dir {
	case ToDevice:
		hdr.dxferDirection = sgDxferToDev
	case FromDevice:
		hdr.dxferDirection = sgDxferFromDev
	default:
		hdr.dxferDirection = sgDxferNone
	}
	if cmd.Dir != NoTransfer && len(cmd.Data) > 0 {
		hdr.dxferp = uintptr(unsafe.Pointer(&cmd.Data[0]))
		if cmd.XferLen >= 0 {
			hdr.dxferLen = uint32(cmd.XferLen)
		} else {
			hdr.dxferLen = uint32(len(cmd.Data))
		}
	}

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hdr.timeout = uint32(timeout / time.Millisecond)

	start := time.Now()
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(lh.fd), uintptr(sgIOIoctl), uintptr(unsafe.Pointer(&hdr)))
	cmd.Duration = time.Since(start)
	if errno != 0 {
		cmd.Error = true
		return ErrTransportFail
	}

	cmd.HostStatus = int(hdr.hostStatus)
	cmd.DriverStatus = int(hdr.driverStatus)
	if hdr.status != 0 || hdr.hostStatus != 0 || hdr.driverStatus != 0 {
		cmd.Error = true
	}
	return nil
}

// DisposeDrive implements Adapter; SG_IO has no extra per-drive resource
// beyond the fd Release already closed.
func (l *Linux) DisposeDrive(h DriveHandle) error { return nil }

var _ Adapter = (*Linux)(nil)
