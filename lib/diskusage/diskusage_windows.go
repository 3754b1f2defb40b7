//go:build windows
// +build windows

package diskusage

import (
	"syscall"
	"unsafe"
)

var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procGetDiskFreeSpace = kernel32.NewProc("GetDiskFreeSpaceExW")
)

// New returns the disk usage for the filesystem containing path.
func New(path string) (Info, error) {
	var freeBytes, totalBytes, availBytes uint64
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return Info{}, err
	}
	ret, _, err := procGetDiskFreeSpace.Call(
		uintptr(unsafe.Pointer(p)),
		uintptr(unsafe.Pointer(&freeBytes)),
		uintptr(unsafe.Pointer(&totalBytes)),
		uintptr(unsafe.Pointer(&availBytes)),
	)
	if ret == 0 {
		return Info{}, err
	}
	return Info{
		Total:     totalBytes,
		Free:      availBytes,
		Available: availBytes,
	}, nil
}
