// Package hidreport holds the wire layouts of the reports exchanged with the
// host: the boot keyboard report, the N-key rollover report, the extra
// (system and consumer) report and the 32 byte raw side channel packets.
package hidreport

import (
	"encoding/binary"

	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/neuroplastio/neio-keycore/pkg/bits"
)

// Report IDs on the keyboard interface.
const (
	ReportIDKeyboard = 1
	ReportIDSystem   = 3
	ReportIDConsumer = 4
	ReportIDNKRO     = 6
)

const (
	// RawEPSize is the fixed payload of the raw HID interface.
	RawEPSize = 32

	KeyboardReportKeys = 6
	KeyboardReportSize = 2 + KeyboardReportKeys

	// NKROReportBits is the size of the NKRO key bitmap in bytes.
	NKROReportBits = 30
	NKROReportSize = 2 + NKROReportBits

	ExtraReportSize = 3
)

// Matrix geometry of the split 3x6+3 board. Each row is one byte with a bit
// per column.
const (
	MatrixRows     = 8
	MatrixCols     = 6
	MatrixRowBytes = (MatrixCols + 7) / 8
	MatrixSize     = MatrixRows * MatrixRowBytes
)

// Side channel protocol bytes.
const (
	DiagnosticMarker = 0x01
	DiagnosticHeader = 4
	AckMarker        = 0xEF
	ArmByte          = 0xBE
	DisarmByte       = 0xBF
)

// Layout contracts. A negative constant converted to uint does not compile.
const (
	_ = uint(RawEPSize - NKROReportSize)
	_ = uint(NKROReportSize - RawEPSize)
	_ = uint(RawEPSize - DiagnosticHeader - MatrixSize)
	_ = uint(0xFF - MatrixRows)
	_ = uint(0xFF - MatrixCols)
	_ = uint(ReportIDNKRO - 6)
	_ = uint(6 - ReportIDNKRO)
	_ = uint((DiagnosticMarker-ReportIDNKRO)*(DiagnosticMarker-ReportIDNKRO) - 1)
)

// KeyboardReport is the 6KRO boot protocol report.
type KeyboardReport struct {
	Mods     uint8
	Reserved uint8
	Keys     [KeyboardReportKeys]uint8
}

func (r KeyboardReport) Bytes() []byte {
	buf := make([]byte, KeyboardReportSize)
	buf[0] = r.Mods
	buf[1] = r.Reserved
	copy(buf[2:], r.Keys[:])
	return buf
}

// HasKey reports whether code is one of the pressed keys.
func (r KeyboardReport) HasKey(code uint8) bool {
	for _, key := range r.Keys {
		if key != 0 && key == code {
			return true
		}
	}
	return false
}

// NKROReport is the bitmap report. It is also the shape of the shadow packet
// sent over the side channel, so its size equals RawEPSize.
type NKROReport struct {
	ReportID uint8
	Mods     uint8
	Bits     [NKROReportBits]uint8
}

func NewNKROReport() NKROReport {
	return NKROReport{ReportID: ReportIDNKRO}
}

// KeyBits returns a view over the bitmap. Writes go to r.
func (r *NKROReport) KeyBits() bits.Bits {
	return bits.New(r.Bits[:], 0)
}

// SetKey sets the bit of code if it fits in the bitmap.
func (r *NKROReport) SetKey(code uint8) {
	if int(code>>3) < NKROReportBits {
		r.Bits[code>>3] |= 1 << (code & 7)
	}
}

func (r *NKROReport) ClearKey(code uint8) {
	if int(code>>3) < NKROReportBits {
		r.Bits[code>>3] &^= 1 << (code & 7)
	}
}

func (r *NKROReport) HasKey(code uint8) bool {
	if int(code>>3) >= NKROReportBits {
		return false
	}
	return r.Bits[code>>3]&(1<<(code&7)) != 0
}

// Keys returns the pressed key codes in ascending order.
func (r *NKROReport) Keys() []uint8 {
	var keys []uint8
	r.KeyBits().EachSet(func(bit int) bool {
		keys = append(keys, uint8(bit))
		return true
	})
	return keys
}

func (r NKROReport) Bytes() []byte {
	buf := make([]byte, NKROReportSize)
	buf[0] = r.ReportID
	buf[1] = r.Mods
	copy(buf[2:], r.Bits[:])
	return buf
}

// ExtraReport carries a single system or consumer usage. Usage 0 releases.
type ExtraReport struct {
	ReportID uint8
	Usage    uint16
}

func (r ExtraReport) Bytes() []byte {
	buf := make([]byte, ExtraReportSize)
	buf[0] = r.ReportID
	binary.LittleEndian.PutUint16(buf[1:], r.Usage)
	return buf
}

// ExtraReportFor builds the press report of a system or consumer keycode.
func ExtraReportFor(code keycode.Keycode) (ExtraReport, bool) {
	usage, ok := keycode.KeycodeToUsage(code)
	if !ok {
		return ExtraReport{}, false
	}
	id := uint8(ReportIDConsumer)
	if code.IsSystem() {
		id = ReportIDSystem
	}
	return ExtraReport{ReportID: id, Usage: usage}, true
}
