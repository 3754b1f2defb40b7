package command

import "github.com/isoburn/isoburn/transport"

// MMC-5 CDB opcodes this library assembles. Grounded on the operation list
// in mmc.h (mmc_read, mmc_write, mmc_write_12, mmc_sync_cache, mmc_read_toc,
// mmc_read_disc_info, mmc_read_cd, mmc_set_speed, mmc_get_configuration,
// mmc_send_cue_sheet, mmc_read_buffer_capacity, mmc_format_unit,
// mmc_get_write_performance, mmc_read_track_info, mmc_read_10,
// mmc_read_capacity) and their standard MMC-5 opcode values.
const (
	opRead10              = 0x28
	opRead12               = 0xA8
	opWrite10              = 0x2A
	opWrite12              = 0xAA
	opSynchronizeCache     = 0x35
	opReadTOC              = 0x43
	opGetConfiguration     = 0x46
	opGetEventStatus       = 0x4A
	opReadDiscInformation  = 0x51
	opReadTrackInformation = 0x52
	opReserveTrack         = 0x53
	opSendOPCInformation   = 0x54
	opCloseTrackSession    = 0x5B
	opReadBufferCapacity   = 0x5C
	opSendCueSheet         = 0x5D
	opReadCapacity         = 0x25
	opFormatUnit           = 0x04
	opGetPerformance       = 0xAC
	opReadDiscStructure    = 0xAD
	opBlank                = 0xA1
	opSetCDSpeed           = 0xBB
	opSetStreaming         = 0xB6
	opReadCD               = 0xBE
)

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func putUint16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// Read10 builds READ(10) transferring count 2048-byte blocks starting at lba.
func Read10(lba uint32, count uint16) *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opRead10
	putUint32(cdb[2:6], lba)
	putUint16(cdb[7:9], count)
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, int(count)*2048)
	return cmd
}

// Read12 builds READ(12), used when lba or count exceeds READ(10)'s range.
func Read12(lba uint32, count uint32) *transport.Command {
	cdb := make([]byte, 12)
	cdb[0] = opRead12
	putUint32(cdb[2:6], lba)
	putUint32(cdb[6:10], count)
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, int(count)*2048)
	cmd.Timeout = transport.WriteTimeout
	return cmd
}

// Write10 builds WRITE(10) sending data (a whole number of 2048-byte
// blocks) to lba, with the extended write-command timeout mmc_write needs.
func Write10(lba uint32, data []byte) *transport.Command {
	count := uint16(len(data) / 2048)
	cdb := make([]byte, 10)
	cdb[0] = opWrite10
	putUint32(cdb[2:6], lba)
	putUint16(cdb[7:9], count)
	cmd := transport.NewCommand(cdb, transport.ToDevice)
	cmd.Data = data
	cmd.Timeout = transport.WriteTimeout
	return cmd
}

// Write12 builds WRITE(12), grounded on mmc_write_12 for transfers whose
// block count exceeds WRITE(10)'s 16-bit field.
func Write12(lba uint32, data []byte) *transport.Command {
	count := uint32(len(data) / 2048)
	cdb := make([]byte, 12)
	cdb[0] = opWrite12
	putUint32(cdb[2:6], lba)
	putUint32(cdb[6:10], count)
	cmd := transport.NewCommand(cdb, transport.ToDevice)
	cmd.Data = data
	cmd.Timeout = transport.WriteTimeout
	return cmd
}

// SynchronizeCache builds SYNCHRONIZE CACHE(10), grounded on mmc_sync_cache.
func SynchronizeCache() *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opSynchronizeCache
	cmd := transport.NewCommand(cdb, transport.NoTransfer)
	cmd.Timeout = transport.SyncCacheTimeout
	return cmd
}

// ReadTOCFormat selects the READ TOC/PMA/ATIP response format (format
// field, CDB byte 2 bits 0-3).
type ReadTOCFormat byte

const (
	TOCFormatTOC  ReadTOCFormat = 0x00
	TOCFormatATIP ReadTOCFormat = 0x04
)

// ReadTOC builds READ TOC/PMA/ATIP for the given format and allocation
// length, grounded on mmc_read_toc/mmc_read_atip.
func ReadTOC(format ReadTOCFormat, allocLen uint16) *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opReadTOC
	cdb[2] = byte(format) & 0x0f
	putUint16(cdb[7:9], allocLen)
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, allocLen)
	return cmd
}

// ReadDiscInformation builds READ DISC INFORMATION, grounded on
// mmc_read_disc_info.
func ReadDiscInformation(allocLen uint16) *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opReadDiscInformation
	putUint16(cdb[7:9], allocLen)
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, allocLen)
	return cmd
}

// ReadTrackInformation builds READ TRACK INFORMATION for trackNo, grounded
// on mmc_read_track_info.
func ReadTrackInformation(trackNo uint32, allocLen uint16) *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opReadTrackInformation
	cdb[1] = 0x01 // address number type: track number
	putUint32(cdb[2:6], trackNo)
	putUint16(cdb[7:9], allocLen)
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, allocLen)
	return cmd
}

// ReadCapacity builds READ CAPACITY(10), grounded on mmc_read_capacity.
func ReadCapacity() *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opReadCapacity
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, 8)
	return cmd
}

// DecodeReadCapacity extracts (last recorded LBA, block size) from an
// eight-byte READ CAPACITY(10) reply.
func DecodeReadCapacity(data []byte) (lastLBA, blockSize uint32) {
	if len(data) < 8 {
		return 0, 0
	}
	return getUint32(data[0:4]), getUint32(data[4:8])
}

// ReadBufferCapacity builds READ BUFFER CAPACITY, grounded on
// mmc_read_buffer_capacity.
func ReadBufferCapacity() *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opReadBufferCapacity
	putUint16(cdb[7:9], 12)
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, 12)
	return cmd
}

// GetConfiguration builds GET CONFIGURATION, grounded on
// mmc_get_configuration.
func GetConfiguration(startFeature uint16, allocLen uint16) *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opGetConfiguration
	putUint16(cdb[2:4], startFeature)
	putUint16(cdb[7:9], allocLen)
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, allocLen)
	return cmd
}

// GetEventStatusNotification builds GET EVENT STATUS NOTIFICATION, grounded
// on mmc_get_event.
func GetEventStatusNotification(notifClasses byte, allocLen uint16) *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opGetEventStatus
	cdb[1] = 0x01 // immediate
	cdb[4] = notifClasses
	putUint16(cdb[7:9], allocLen)
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, allocLen)
	return cmd
}

// GetPerformance builds GET PERFORMANCE, grounded on
// mmc_get_write_performance.
func GetPerformance(startLBA uint32, maxDescriptors uint16, writeSpeed bool) *transport.Command {
	cdb := make([]byte, 12)
	cdb[0] = opGetPerformance
	putUint32(cdb[2:6], startLBA)
	putUint16(cdb[8:10], maxDescriptors)
	if writeSpeed {
		cdb[10] = 0x03 // performance type: write speed
	}
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, int(maxDescriptors)*16+8)
	return cmd
}

// ReadDiscStructure builds READ DISC STRUCTURE for the given format.
func ReadDiscStructure(format byte, allocLen uint16) *transport.Command {
	cdb := make([]byte, 12)
	cdb[0] = opReadDiscStructure
	cdb[7] = format
	putUint16(cdb[8:10], allocLen)
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, allocLen)
	return cmd
}

// CloseTrackSession closes either the current track or the current
// session, grounded on mmc_close/mmc_close_session/mmc_close_disc.
func CloseTrackSession(closeSession bool, trackNo uint16) *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opCloseTrackSession
	if closeSession {
		cdb[1] = 0x02
	} else {
		cdb[1] = 0x01
	}
	putUint16(cdb[4:6], trackNo)
	cmd := transport.NewCommand(cdb, transport.NoTransfer)
	cmd.Timeout = transport.CloseTrackSessionTimeout
	return cmd
}

// BlankKind selects the BLANK command's blanking type (CDB byte 1 bits 0-2).
type BlankKind byte

const (
	BlankFullDisc    BlankKind = 0
	BlankMinimal     BlankKind = 1
	BlankTrack       BlankKind = 2
	BlankUnreserve   BlankKind = 3
	BlankTrackTail   BlankKind = 4
	BlankUnclosedSession BlankKind = 5
	BlankSession     BlankKind = 6
)

// Blank builds the BLANK command, grounded on mmc_erase.
func Blank(kind BlankKind, address uint32, immediate bool) *transport.Command {
	cdb := make([]byte, 12)
	cdb[0] = opBlank
	cdb[1] = byte(kind) & 0x07
	if immediate {
		cdb[1] |= 0x10
	}
	putUint32(cdb[2:6], address)
	cmd := transport.NewCommand(cdb, transport.NoTransfer)
	cmd.Timeout = transport.BlankTimeout
	return cmd
}

// ReserveTrack builds RESERVE TRACK, reserving a track of the given size in
// blocks, grounded on mmc_get_nwa's companion reservation call.
func ReserveTrack(size uint32) *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opReserveTrack
	putUint32(cdb[5:9], size)
	cmd := transport.NewCommand(cdb, transport.NoTransfer)
	cmd.Timeout = transport.ReserveTrackTimeout
	return cmd
}

// SendCueSheet builds SEND CUE SHEET carrying cueSheet as its data,
// grounded on mmc_send_cue_sheet.
func SendCueSheet(cueSheet []byte) *transport.Command {
	length := len(cueSheet)
	cdb := make([]byte, 10)
	cdb[0] = opSendCueSheet
	cdb[6] = byte(length >> 16)
	cdb[7] = byte(length >> 8)
	cdb[8] = byte(length)
	cmd := transport.NewCommand(cdb, transport.ToDevice)
	cmd.Data = cueSheet
	return cmd
}

// SendOPCInformation builds SEND OPC INFORMATION, grounded on
// mmc_perform_opc.
func SendOPCInformation(doOPC bool) *transport.Command {
	cdb := make([]byte, 10)
	cdb[0] = opSendOPCInformation
	if doOPC {
		cdb[1] = 0x01
	}
	cmd := transport.NewCommand(cdb, transport.NoTransfer)
	cmd.Timeout = transport.SendOPCTimeout
	return cmd
}

// SetCDSpeed builds SET CD SPEED, grounded on mmc_set_speed. Speeds are in
// kB/s; 0xFFFF means "as fast as possible".
func SetCDSpeed(readSpeed, writeSpeed uint16) *transport.Command {
	cdb := make([]byte, 12)
	cdb[0] = opSetCDSpeed
	putUint16(cdb[2:4], readSpeed)
	putUint16(cdb[4:6], writeSpeed)
	return transport.NewCommand(cdb, transport.NoTransfer)
}

// SetStreaming builds SET STREAMING carrying a performance-descriptor
// parameter list.
func SetStreaming(descriptor []byte) *transport.Command {
	length := uint16(len(descriptor))
	cdb := make([]byte, 12)
	cdb[0] = opSetStreaming
	putUint16(cdb[9:11], length)
	cmd := transport.NewCommand(cdb, transport.ToDevice)
	cmd.Data = descriptor
	return cmd
}

// ReadCD builds READ CD, grounded on mmc_read_cd, requesting user-data-only
// sector type 0 (all types) with the user-data flag set in the main
// channel selection byte.
func ReadCD(lba uint32, count uint32) *transport.Command {
	cdb := make([]byte, 12)
	cdb[0] = opReadCD
	putUint32(cdb[2:6], lba)
	cdb[6] = byte(count >> 16)
	cdb[7] = byte(count >> 8)
	cdb[8] = byte(count)
	cdb[9] = 0x10 // main channel selection: user data
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, int(count)*2048)
	cmd.Timeout = transport.WriteTimeout
	return cmd
}

// FormatUnit builds FORMAT UNIT, grounded on mmc_format_unit. size is the
// requested format size (0 uses the drive's maximum).
func FormatUnit(size uint32) *transport.Command {
	cdb := make([]byte, 6)
	cdb[0] = opFormatUnit
	cdb[1] = 0x11 // FmtData set, cmplst set
	cmd := transport.NewCommand(cdb, transport.ToDevice)
	param := make([]byte, 12)
	param[1] = 0x02 // format descriptor: format type = "full format"
	putUint32(param[8:12], size)
	cmd.Data = param
	cmd.Timeout = transport.FormatUnitTimeout
	return cmd
}
