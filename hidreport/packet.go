package hidreport

import (
	"fmt"

	"github.com/neuroplastio/neio-keycore/pkg/bits"
)

// RawPacket is one raw HID transfer.
type RawPacket [RawEPSize]byte

// DiagnosticPacket builds the side channel state packet: marker, active
// layer, matrix geometry and the matrix bitmap, one byte per row.
func DiagnosticPacket(layer uint8, matrix []byte) RawPacket {
	var p RawPacket
	p[0] = DiagnosticMarker
	p[1] = layer
	p[2] = MatrixRows
	p[3] = MatrixCols
	copy(p[DiagnosticHeader:DiagnosticHeader+MatrixSize], matrix)
	return p
}

// AckPacket answers an arm request.
func AckPacket() RawPacket {
	var p RawPacket
	p[1] = AckMarker
	return p
}

// ShadowPacket encodes a shadow NKRO report. The report fills the packet.
func ShadowPacket(r NKROReport) RawPacket {
	var p RawPacket
	copy(p[:], r.Bytes())
	return p
}

func ControlPacket(control byte) RawPacket {
	var p RawPacket
	p[0] = control
	return p
}

type PacketKind uint8

const (
	PacketUnknown PacketKind = iota
	PacketAck
	PacketShadow
	PacketDiagnostic
)

func (k PacketKind) String() string {
	switch k {
	case PacketAck:
		return "ack"
	case PacketShadow:
		return "shadow"
	case PacketDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// Diagnostic is a decoded diagnostic packet.
type Diagnostic struct {
	Layer  uint8 `json:"layer"`
	Rows   uint8 `json:"rows"`
	Cols   uint8 `json:"cols"`
	Matrix []byte `json:"matrix"`
}

// IsPressed reports whether the matrix bit at row, col is set.
func (d Diagnostic) IsPressed(row, col int) bool {
	rowBytes := (int(d.Cols) + 7) / 8
	if row < 0 || row >= int(d.Rows) || col < 0 || col >= int(d.Cols) {
		return false
	}
	return bits.New(d.Matrix[row*rowBytes:(row+1)*rowBytes], 0).IsSet(col)
}

// Packet is a decoded inbound side channel transfer.
type Packet struct {
	Kind       PacketKind  `json:"kind"`
	Shadow     *NKROReport `json:"shadow,omitempty"`
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
}

// DecodePacket classifies a raw transfer read from the device. A leading
// report id byte added by some hidraw stacks must already be stripped.
func DecodePacket(buf []byte) (Packet, error) {
	if len(buf) < RawEPSize {
		return Packet{}, fmt.Errorf("short packet: %d bytes", len(buf))
	}
	switch {
	case buf[0] == ReportIDNKRO:
		report := NKROReport{ReportID: buf[0], Mods: buf[1]}
		copy(report.Bits[:], buf[2:RawEPSize])
		return Packet{Kind: PacketShadow, Shadow: &report}, nil
	case buf[0] == DiagnosticMarker:
		rows, cols := buf[2], buf[3]
		size := int(rows) * ((int(cols) + 7) / 8)
		if DiagnosticHeader+size > RawEPSize {
			return Packet{}, fmt.Errorf("matrix %dx%d does not fit a packet", rows, cols)
		}
		matrix := make([]byte, size)
		copy(matrix, buf[DiagnosticHeader:DiagnosticHeader+size])
		return Packet{Kind: PacketDiagnostic, Diagnostic: &Diagnostic{
			Layer:  buf[1],
			Rows:   rows,
			Cols:   cols,
			Matrix: matrix,
		}}, nil
	case buf[0] == 0 && buf[1] == AckMarker:
		return Packet{Kind: PacketAck}, nil
	}
	return Packet{Kind: PacketUnknown}, nil
}
