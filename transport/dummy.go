package transport

import "sync"

// dummyHandle is the handle type Dummy hands out.
type dummyHandle struct {
	address string
}

func (h *dummyHandle) Address() string { return h.address }

// Dummy is the adapter that must compile and link everywhere and refuses
// real I/O. ("a 'dummy' adapter must compile everywhere
// and refuse real I/O while still permitting stdio-file back-ends"). It is
// useful as a safe default Adapter when no real transport is configured, or
// in tests that only exercise command assembly without a device.
type Dummy struct {
	mu      sync.Mutex
	grabbed map[string]bool
}

// NewDummy creates a Dummy adapter.
func NewDummy() *Dummy {
	return &Dummy{grabbed: make(map[string]bool)}
}

// IDString implements Adapter.
func (d *Dummy) IDString() string { return "dummy" }

// Initialize implements Adapter.
func (d *Dummy) Initialize() error { return nil }

// Shutdown implements Adapter.
func (d *Dummy) Shutdown() error { return nil }

// Enumerate implements Adapter; the dummy adapter sees no devices.
func (d *Dummy) Enumerate() ([]string, error) { return nil, nil }

// Grab implements Adapter, tracking exclusivity in-process only.
func (d *Dummy) Grab(address string, exclusive bool) (DriveHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if exclusive && d.grabbed[address] {
		return nil, ErrBusy
	}
	d.grabbed[address] = true
	return &dummyHandle{address: address}, nil
}

// Release implements Adapter.
func (d *Dummy) Release(h DriveHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.grabbed, h.Address())
	return nil
}

// Issue implements Adapter; it always refuses real I/O.
func (d *Dummy) Issue(h DriveHandle, cmd *Command) error {
	cmd.Error = true
	cmd.Sense = []byte{0x70, 0, 0x05, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x20, 0x00}
	return nil
}

// DisposeDrive implements Adapter.
func (d *Dummy) DisposeDrive(h DriveHandle) error { return nil }
