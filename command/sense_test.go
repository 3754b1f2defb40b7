package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeSenseFixed(t *testing.T) {
	sense := make([]byte, 18)
	sense[0] = 0x70
	sense[2] = 0x02
	sense[12] = 0x04
	sense[13] = 0x01
	got := DecodeSense(sense)
	assert.Equal(t, Sense{Key: 0x02, ASC: 0x04, ASCQ: 0x01}, got)
}

func TestDecodeSenseDescriptor(t *testing.T) {
	sense := []byte{0x72, 0x05, 0x24, 0x00}
	got := DecodeSense(sense)
	assert.Equal(t, Sense{Key: 0x05, ASC: 0x24, ASCQ: 0x00}, got)
}

func TestDecodeSenseShortBuffer(t *testing.T) {
	got := DecodeSense([]byte{0x70, 0x00})
	assert.Equal(t, Sense{}, got)
}

func TestClassifyBecomingReady(t *testing.T) {
	cat, _ := Classify(Sense{Key: 0x02, ASC: 0x04, ASCQ: 0x01})
	assert.Equal(t, Retry, cat)
}

func TestClassifyInvalidFieldInCDB(t *testing.T) {
	cat, _ := Classify(Sense{Key: 0x05, ASC: 0x24, ASCQ: 0x00})
	assert.Equal(t, Fail, cat)
}

func TestClassifyMediumNotPresent(t *testing.T) {
	cat, _ := Classify(Sense{Key: 0x02, ASC: 0x3A, ASCQ: 0x02})
	assert.Equal(t, MediumNotPresent, cat)
}

func TestClassifyNoError(t *testing.T) {
	cat, _ := Classify(Sense{Key: 0x00})
	assert.Equal(t, GoOn, cat)
	cat, _ = Classify(Sense{Key: 0x01})
	assert.Equal(t, GoOn, cat)
}

func TestClassifyUnknownFallsBackToFail(t *testing.T) {
	cat, msg := Classify(Sense{Key: 0x0F, ASC: 0xFE, ASCQ: 0xFE})
	assert.Equal(t, Fail, cat)
	assert.Contains(t, msg, "unrecognised")
}

func TestClassifyDeterminism(t *testing.T) {
	for key := byte(0); key < 16; key++ {
		for asc := 0; asc < 256; asc += 17 {
			cat, _ := Classify(Sense{Key: key, ASC: byte(asc)})
			switch cat {
			case GoOn, Retry, Fail, MediumNotPresent:
			default:
				t.Fatalf("unexpected category %v for key=%d asc=%d", cat, key, asc)
			}
		}
	}
}

func TestSenseErrorError(t *testing.T) {
	sense := make([]byte, 18)
	sense[0] = 0x70
	sense[2] = 0x05
	sense[12] = 0x24
	sense[13] = 0x00
	err := NewSenseError(sense)
	assert.Equal(t, Fail, err.Category)
	assert.Contains(t, err.Error(), "FAIL")
	assert.Contains(t, err.Error(), "invalid field in CDB")
}
