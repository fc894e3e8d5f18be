package hidreport

import (
	"testing"

	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportSizes(t *testing.T) {
	assert.Len(t, KeyboardReport{}.Bytes(), KeyboardReportSize)
	assert.Len(t, NewNKROReport().Bytes(), RawEPSize)
	assert.Len(t, ExtraReport{}.Bytes(), ExtraReportSize)
	assert.LessOrEqual(t, DiagnosticHeader+MatrixSize, RawEPSize)
}

func TestNKROKeys(t *testing.T) {
	r := NewNKROReport()
	r.SetKey(uint8(keycode.KC_A))
	r.SetKey(uint8(keycode.KC_SPC))
	r.SetKey(0xF8)
	assert.True(t, r.HasKey(uint8(keycode.KC_A)))
	assert.False(t, r.HasKey(0xF8), "keys past the bitmap are dropped")
	assert.Equal(t, []uint8{0x04, 0x2C}, r.Keys())

	r.ClearKey(uint8(keycode.KC_A))
	assert.Equal(t, []uint8{0x2C}, r.Keys())

	buf := r.Bytes()
	assert.Equal(t, byte(ReportIDNKRO), buf[0])
	assert.Equal(t, byte(0x10), buf[2+0x2C/8])
}

func TestExtraReport(t *testing.T) {
	r, ok := ExtraReportFor(keycode.KC_AUDIO_VOL_UP)
	require.True(t, ok)
	assert.Equal(t, []byte{ReportIDConsumer, 0xE9, 0x00}, r.Bytes())

	r, ok = ExtraReportFor(keycode.KC_SYSTEM_SLEEP)
	require.True(t, ok)
	assert.Equal(t, []byte{ReportIDSystem, 0x82, 0x00}, r.Bytes())

	r, ok = ExtraReportFor(keycode.KC_LAUNCHPAD)
	require.True(t, ok)
	assert.Equal(t, []byte{ReportIDConsumer, 0xA0, 0x02}, r.Bytes())

	_, ok = ExtraReportFor(keycode.KC_A)
	assert.False(t, ok)
}

func TestPackets(t *testing.T) {
	matrix := make([]byte, MatrixSize)
	matrix[1] = 0x05
	p := DiagnosticPacket(3, matrix)
	assert.Equal(t, byte(DiagnosticMarker), p[0])
	assert.Equal(t, byte(3), p[1])
	assert.Equal(t, byte(MatrixRows), p[2])
	assert.Equal(t, byte(MatrixCols), p[3])
	assert.Equal(t, byte(0x05), p[DiagnosticHeader+1])

	decoded, err := DecodePacket(p[:])
	require.NoError(t, err)
	require.Equal(t, PacketDiagnostic, decoded.Kind)
	assert.Equal(t, uint8(3), decoded.Diagnostic.Layer)
	assert.True(t, decoded.Diagnostic.IsPressed(1, 0))
	assert.False(t, decoded.Diagnostic.IsPressed(1, 1))
	assert.True(t, decoded.Diagnostic.IsPressed(1, 2))
	assert.False(t, decoded.Diagnostic.IsPressed(9, 0))

	ack := AckPacket()
	assert.Equal(t, RawPacket{1: AckMarker}, ack)
	decoded, err = DecodePacket(ack[:])
	require.NoError(t, err)
	assert.Equal(t, PacketAck, decoded.Kind)

	report := NewNKROReport()
	report.Mods = keycode.ModLCtrl
	report.SetKey(uint8(keycode.KC_C))
	shadow := ShadowPacket(report)
	decoded, err = DecodePacket(shadow[:])
	require.NoError(t, err)
	require.Equal(t, PacketShadow, decoded.Kind)
	assert.Equal(t, report, *decoded.Shadow)

	arm := ControlPacket(ArmByte)
	decoded, err = DecodePacket(arm[:])
	require.NoError(t, err)
	assert.Equal(t, PacketUnknown, decoded.Kind)

	_, err = DecodePacket([]byte{1, 2})
	assert.Error(t, err)
}

func TestDescriptors(t *testing.T) {
	assert.Equal(t, []byte{0x06, 0x60, 0xff, 0x09, 0x61}, RawDescriptor[:5])
	assert.Equal(t, byte(0xc0), KeyboardDescriptor[len(KeyboardDescriptor)-1])
}
