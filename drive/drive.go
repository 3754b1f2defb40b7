package drive

import (
	"fmt"
	"time"

	"github.com/isoburn/isoburn/command"
	"github.com/isoburn/isoburn/internal/logs"
	"github.com/isoburn/isoburn/lib/pacer"
	"github.com/isoburn/isoburn/transport"
)

// WriteBurstSize is the default DVD "obs" streaming burst size, per
// this: "pads with silence or zeros to the block-type boundary,
// streams WRITE(10) in bursts sized by the smaller of drive
// buffer/2 and a configured DVD 'obs' size (default 32 KiB; optionally
// 64 KiB)."
const WriteBurstSize = 32 * 1024

// Drive holds one adapter-managed device across its lifecycle, guarding
// transitions per the diagram in this A Drive is not safe for
// concurrent use from multiple goroutines: "no parallel writing threads
// per drive — one WRITE stream at a time" (this).
type Drive struct {
	Address string
	Adapter transport.Adapter

	state  State
	handle transport.DriveHandle

	Media       MediaStatus
	MediaKind   MediaKind
	Caps        Capabilities
	NWA         uint32 // next writable address, from the last READ TRACK INFORMATION

	cancel bool
}

// New creates a Drive in the Scanned state for address, issued through
// adapter.
func New(adapter transport.Adapter, address string) *Drive {
	return &Drive{Address: address, Adapter: adapter, state: Scanned}
}

// State reports the drive's current lifecycle state.
func (d *Drive) State() State { return d.state }

// Cancel requests that any in-progress Writing loop finish its current
// burst, sync the cache, and release cancellation model.
func (d *Drive) Cancel() { d.cancel = true }

func (d *Drive) transitionError(attempted State) error {
	return &ErrInvalidTransition{From: d.state, Attempted: attempted}
}

// Grab opens and, if exclusive, locks the drive, the Scanned ->
// Open(Released) transition.
func (d *Drive) Grab(exclusive bool) error {
	if d.state != Scanned {
		return d.transitionError(OpenReleased)
	}
	h, err := d.Adapter.Grab(d.Address, exclusive)
	if err != nil {
		return fmt.Errorf("drive: grab %s: %w", d.Address, err)
	}
	d.handle = h
	d.state = OpenReleased
	return nil
}

// Release closes the drive handle, returning to Scanned.
func (d *Drive) Release() error {
	if d.state == Scanned || d.state == Disposed {
		return nil
	}
	err := d.Adapter.Release(d.handle)
	d.handle = nil
	d.state = Scanned
	return err
}

// Dispose releases OS-specific resources permanently; the drive cannot be
// reused afterward.
func (d *Drive) Dispose() error {
	h := d.handle
	if d.state != Scanned {
		if err := d.Release(); err != nil {
			return err
		}
	}
	var err error
	if h != nil {
		err = d.Adapter.DisposeDrive(h)
	}
	d.state = Disposed
	return err
}

// Probe issues INQUIRY, MODE_SENSE(2Ah), GET_CONFIGURATION, and
// GET_PERFORMANCE in that order, the Open(Released) -> Open(Characterized)
// transition. Per this: "failures reduce capability sets but never
// refuse the drive unless INQUIRY fails entirely."
func (d *Drive) Probe() error {
	if d.state != OpenReleased {
		return d.transitionError(OpenCharacterized)
	}
	p := pacer.New(pacer.CalculatorOption(pacer.NewDefault()))

	inqCmd := command.Inquiry()
	if cat, err := command.Issue(d.Adapter, d.handle, inqCmd, p); cat != command.GoOn {
		return fmt.Errorf("drive: INQUIRY failed: %w", err)
	}
	d.Caps.Inquiry = command.DecodeInquiry(inqCmd.Data)

	modeCmd := command.ModeSense10(0x2A, 255)
	if cat, err := command.Issue(d.Adapter, d.handle, modeCmd, p); cat == command.GoOn {
		d.Caps.ModePage2A = command.DecodeCapabilities(modeCmd.Data)
		d.Caps.HasModePage = true
	} else {
		logs.Warnf(d.Address, "MODE SENSE(2Ah) failed during probe: %v", err)
	}

	cfgCmd := command.GetConfiguration(0, 512)
	if cat, err := command.Issue(d.Adapter, d.handle, cfgCmd, p); cat == command.GoOn {
		if profiles, current, ok := decodeProfileList(cfgCmd.Data); ok {
			d.Caps.Profiles = profiles
			d.Caps.ActiveProfile = current
			d.Caps.HasProfiles = true
		}
	} else {
		logs.Warnf(d.Address, "GET CONFIGURATION failed during probe: %v", err)
	}

	perfCmd := command.GetPerformance(0, 16, true)
	if cat, err := command.Issue(d.Adapter, d.handle, perfCmd, p); cat == command.GoOn {
		if kbs, ok := decodeMaxWriteSpeed(perfCmd.Data); ok {
			d.Caps.MaxWriteKBs = kbs
			d.Caps.HasPerformance = true
		}
	} else {
		logs.Warnf(d.Address, "GET PERFORMANCE failed during probe: %v", err)
	}

	d.state = OpenCharacterized
	return nil
}

// ReadTOC issues TEST_UNIT_READY then READ_TRACK_INFORMATION for track 1,
// the Open(Characterized) -> Open(KnownMedia) transition.
func (d *Drive) ReadTOC() error {
	if d.state != OpenCharacterized && d.state != OpenKnownMedia {
		return d.transitionError(OpenKnownMedia)
	}
	if err := command.PollReady(d.Adapter, d.handle, 5*time.Second); err != nil {
		d.Media = MediaAbsent
		return fmt.Errorf("drive: medium not ready: %w", err)
	}
	d.Media = MediaPresent

	p := pacer.New(pacer.CalculatorOption(pacer.NewDefault()))
	trackCmd := command.ReadTrackInformation(1, 48)
	cat, err := command.Issue(d.Adapter, d.handle, trackCmd, p)
	if cat != command.GoOn {
		return fmt.Errorf("drive: READ TRACK INFORMATION failed: %w", err)
	}
	if len(trackCmd.Data) >= 16 {
		d.NWA = uint32(trackCmd.Data[12])<<24 | uint32(trackCmd.Data[13])<<16 | uint32(trackCmd.Data[14])<<8 | uint32(trackCmd.Data[15])
	}
	d.state = OpenKnownMedia
	return nil
}

// WriteSource streams fixed-size bursts of the image payload; it mirrors
// the Leaf/Stream read-only contract from package isotree without
// importing it, keeping drive free of a dependency on the tree engine.
type WriteSource interface {
	Read(p []byte) (n int, err error)
}

// WriteTrack streams src as WRITE(10) bursts starting at the drive's NWA,
// the Open(KnownMedia) -> Writing transition // "writeTrack requires KnownMedia and a valid NWA ... streams WRITE(10) in
// bursts sized by the smaller of drive buffer/2 and a configured DVD 'obs'
// size."
func (d *Drive) WriteTrack(src WriteSource, totalBlocks uint32) error {
	if d.state != OpenKnownMedia {
		return d.transitionError(Writing)
	}
	d.state = Writing
	p := pacer.New(pacer.CalculatorOption(pacer.NewDefault(
		pacer.MinSleep(0), pacer.MaxSleep(25*time.Millisecond),
	)))

	burstBlocks := uint32(WriteBurstSize / 2048)
	lba := d.NWA
	buf := make([]byte, WriteBurstSize)
	remaining := totalBlocks
	for remaining > 0 && !d.cancel {
		n := burstBlocks
		if n > remaining {
			n = remaining
		}
		want := int(n) * 2048
		read, err := readFull(src, buf[:want])
		if read < want {
			for i := read; i < want; i++ {
				buf[i] = 0
			}
		}
		cmd := command.Write10(lba, buf[:want])
		cat, cerr := command.Issue(d.Adapter, d.handle, cmd, p)
		if cat != command.GoOn {
			d.state = Writing // needs-release terminal state.
			return fmt.Errorf("drive: WRITE(10) at LBA %d failed: %w", lba, cerr)
		}
		lba += n
		remaining -= n
		if err != nil && err.Error() != "EOF" {
			break
		}
	}
	return d.SyncCache()
}

func readFull(src WriteSource, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := src.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, fmt.Errorf("EOF")
		}
	}
	return total, nil
}

// SyncCache issues SYNCHRONIZE CACHE, mandatory before release when
// writing occurred.
func (d *Drive) SyncCache() error {
	d.state = SyncingCache
	p := pacer.New(pacer.CalculatorOption(pacer.NewDefault()))
	cmd := command.SynchronizeCache()
	cat, err := command.Issue(d.Adapter, d.handle, cmd, p)
	if cat != command.GoOn {
		return fmt.Errorf("drive: SYNCHRONIZE CACHE failed: %w", err)
	}
	d.state = OpenKnownMedia
	return nil
}

// CloseTrackSession issues CLOSE_TRACK_SESSION with Immed=1 then polls for
// ready. Callers should skip this for overwriteable
// media (d.MediaKind.NeedsClose() reports false).
func (d *Drive) CloseTrackSession(closeSession bool, trackNo uint16) error {
	p := pacer.New(pacer.CalculatorOption(pacer.NewDefault()))
	cmd := command.CloseTrackSession(closeSession, trackNo)
	cat, err := command.Issue(d.Adapter, d.handle, cmd, p)
	if cat != command.GoOn {
		return fmt.Errorf("drive: CLOSE TRACK/SESSION failed: %w", err)
	}
	return command.PollReady(d.Adapter, d.handle, 200*time.Second)
}
