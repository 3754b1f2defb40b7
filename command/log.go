package command

import (
	"fmt"
	"time"

	"github.com/isoburn/isoburn/internal/logs"
	"github.com/isoburn/isoburn/lib/pacer"
	"github.com/isoburn/isoburn/transport"
)

// opcodeNames names the opcodes this package assembles, for log lines,
// grounded on scsi_command_name's lookup table in spc.c.
var opcodeNames = map[byte]string{
	opTestUnitReady:        "TEST UNIT READY",
	opRequestSense:         "REQUEST SENSE",
	opInquiry:              "INQUIRY",
	opModeSense10:          "MODE SENSE(10)",
	opModeSelect10:         "MODE SELECT(10)",
	opPreventAllow:         "PREVENT/ALLOW MEDIUM REMOVAL",
	opStartStopUnit:        "START STOP UNIT",
	opRead10:               "READ(10)",
	opRead12:               "READ(12)",
	opWrite10:              "WRITE(10)",
	opWrite12:              "WRITE(12)",
	opSynchronizeCache:     "SYNCHRONIZE CACHE",
	opReadTOC:              "READ TOC/PMA/ATIP",
	opGetConfiguration:     "GET CONFIGURATION",
	opGetEventStatus:       "GET EVENT STATUS NOTIFICATION",
	opReadDiscInformation:  "READ DISC INFORMATION",
	opReadTrackInformation: "READ TRACK INFORMATION",
	opReserveTrack:         "RESERVE TRACK",
	opSendOPCInformation:   "SEND OPC INFORMATION",
	opCloseTrackSession:    "CLOSE TRACK/SESSION",
	opReadBufferCapacity:   "READ BUFFER CAPACITY",
	opSendCueSheet:         "SEND CUE SHEET",
	opReadCapacity:         "READ CAPACITY",
	opFormatUnit:           "FORMAT UNIT",
	opGetPerformance:       "GET PERFORMANCE",
	opReadDiscStructure:    "READ DISC STRUCTURE",
	opBlank:                "BLANK",
	opSetCDSpeed:           "SET CD SPEED",
	opSetStreaming:         "SET STREAMING",
	opReadCD:               "READ CD",
}

// Name returns the human-readable SCSI command name for a CDB's first
// byte, or a hex placeholder if this package doesn't assemble it.
func Name(opcode byte) string {
	if n, ok := opcodeNames[opcode]; ok {
		return n
	}
	return fmt.Sprintf("(opcode %02Xh)", opcode)
}

// pollPacer governs TEST_UNIT_READY-style polling: 100ms initial, doubling
// after each consecutive retry (100, 200, 400ms), capped at 500ms. The
// growth is geometric, not a fixed 100ms step.
func pollPacer() *pacer.Pacer {
	return pacer.New(pacer.CalculatorOption(pacer.NewDefault(
		pacer.MinSleep(100*time.Millisecond),
		pacer.MaxSleep(500*time.Millisecond),
		pacer.AttackConstant(1),
		pacer.DecayConstant(1),
	)))
}

// writePacer governs WRITE-class retries with a 25ms cap. Its minimum
// sleep is zero and the doubling calculator keeps a zero sleep at zero, so
// WRITE retries are reissued without any backoff.
func writePacer() *pacer.Pacer {
	return pacer.New(pacer.CalculatorOption(pacer.NewDefault(
		pacer.MinSleep(0),
		pacer.MaxSleep(25*time.Millisecond),
		pacer.AttackConstant(1),
		pacer.DecayConstant(1),
	)))
}

// Issue sends cmd to h through adapter, classifying the reply sense data
// and retrying under the given Pacer while Classify reports Retry. It
// returns the terminal Category and, for Fail/MediumNotPresent, a non-nil
// *SenseError. A transport-level error (not a device sense condition) is
// returned directly and is never retried here — that is the caller's job
// one layer up, mirroring how spc_wait_unit_attention only loops on sense
// conditions, not on open()/ioctl() failures.
func Issue(adapter transport.Adapter, h transport.DriveHandle, cmd *transport.Command, p *pacer.Pacer) (Category, error) {
	name := Name(cmd.Opcode[0])
	var category Category
	var senseErr *SenseError
	err := p.Call(func() (bool, error) {
		if ferr := adapter.Issue(h, cmd); ferr != nil {
			return false, ferr
		}
		if !cmd.Error {
			logs.Debugf(name, "succeeded in %s", cmd.Duration)
			category = GoOn
			senseErr = nil
			return false, nil
		}
		senseErr = NewSenseError(cmd.Sense)
		category = senseErr.Category
		if category == Retry {
			logs.Debugf(name, "retrying: %s", senseErr)
			return true, senseErr
		}
		logs.Warnf(name, "%s", senseErr)
		return false, nil
	})
	if err != nil && senseErr == nil {
		return Fail, err
	}
	if senseErr == nil {
		return category, nil
	}
	return category, senseErr
}

// PollReady issues TEST UNIT READY in a loop, bounded by maxWait, using the
// same retry rhythm as spc_wait_unit_attention: GoOn and MediumNotPresent
// both end the poll successfully (a probe is satisfied either way); Fail
// ends it with an error.
func PollReady(adapter transport.Adapter, h transport.DriveHandle, maxWait time.Duration) error {
	p := pollPacer()
	deadline := time.Now().Add(maxWait)
	for {
		cmd := TestUnitReady()
		cat, err := Issue(adapter, h, cmd, p)
		switch cat {
		case GoOn, MediumNotPresent:
			return nil
		case Retry:
			if time.Now().After(deadline) {
				return fmt.Errorf("command: TEST UNIT READY timed out after %s: %w", maxWait, err)
			}
		default:
			return err
		}
	}
}
