package firmware

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/neuroplastio/neio-keycore/engine"
	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/internal/matrix"
	"github.com/neuroplastio/neio-keycore/internal/transport"
	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/neuroplastio/neio-keycore/keymap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Positions in the default keymap.
const (
	rowNum, colNum       = 3, 3 // EX_MO(num)
	rowExt, colExt       = 3, 4 // EX_MO(ext)
	rowRep, colRep       = 3, 5 // QK_REP
	rowSym, colSym       = 7, 0 // EX_MO(sym)
	rowFnc, colFnc       = 7, 2 // EX_MO(fnc)
	rowSpc, colSpc       = 7, 1
	rowMagic, colMagic   = 4, 1
	rowS, colS           = 1, 1
	rowT, colT           = 1, 2
	rowF, colF           = 5, 0
	rowOSMCtl, colOSMCtl = 1, 4 // EX_OSM(KC_LCTL) on num
)

type fixture struct {
	t   *testing.T
	now uint32
	mem *transport.Memory
	fw  *Firmware
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	f := &fixture{t: t, mem: transport.NewMemory(4)}
	src := matrix.NewScript(zap.NewNop(), strings.NewReader(""))
	opts = append([]Option{WithClock(func() uint32 { return f.now })}, opts...)
	f.fw = New(keymap.Default(), src, f.mem, opts...)
	return f
}

func (f *fixture) press(row, col int) {
	f.fw.HandleEvent(matrix.Event{Row: row, Col: col, Pressed: true})
}

func (f *fixture) release(row, col int) {
	f.fw.HandleEvent(matrix.Event{Row: row, Col: col})
}

func (f *fixture) tap(row, col int) {
	f.press(row, col)
	f.release(row, col)
}

func kb(mods uint8, keys ...keycode.Keycode) hidreport.KeyboardReport {
	r := hidreport.KeyboardReport{Mods: mods}
	for i, k := range keys {
		r.Keys[i] = uint8(k)
	}
	return r
}

func TestBasicKey(t *testing.T) {
	f := newFixture(t)
	f.tap(rowS, colS)
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_S),
		kb(0),
	}, f.mem.KeyboardReports())
}

func TestOneShotCtrlThenKey(t *testing.T) {
	f := newFixture(t)
	f.press(rowNum, colNum)
	f.tap(rowOSMCtl, colOSMCtl)
	f.release(rowNum, colNum)
	f.tap(rowF, colF)

	assert.Equal(t, []hidreport.KeyboardReport{
		kb(keycode.ModLCtrl),
		kb(keycode.ModLCtrl, keycode.KC_F),
		kb(0, keycode.KC_F),
		kb(0),
	}, f.mem.KeyboardReports())
	assert.Zero(t, f.fw.State().OneShotMods)
}

func TestModdedKey(t *testing.T) {
	f := newFixture(t)
	f.press(rowNum, colNum)
	f.press(6, 0) // KC_TILD
	f.release(rowNum, colNum)
	f.release(6, 0)

	assert.Equal(t, []hidreport.KeyboardReport{
		kb(keycode.ModLShift, keycode.KC_GRV),
		kb(0),
	}, f.mem.KeyboardReports())
}

func TestReleaseUsesPressTimeKeycode(t *testing.T) {
	f := newFixture(t)
	f.press(rowNum, colNum)
	f.press(4, 1) // KC_7 on num, MAGIC on base
	f.release(rowNum, colNum)
	f.release(4, 1)

	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_7),
		kb(0),
	}, f.mem.KeyboardReports())
}

func TestRollover(t *testing.T) {
	f := newFixture(t)
	positions := [][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 1}, {1, 2}}
	for _, p := range positions {
		f.press(p[0], p[1])
	}
	reports := f.mem.KeyboardReports()
	require.Len(t, reports, len(positions))
	assert.Equal(t, kb(0, keycode.KC_V, keycode.KC_M, keycode.KC_L, keycode.KC_C, keycode.KC_P, keycode.KC_S), reports[len(reports)-1])

	f.release(0, 1)
	reports = f.mem.KeyboardReports()
	assert.Equal(t, kb(0, keycode.KC_M, keycode.KC_L, keycode.KC_C, keycode.KC_P, keycode.KC_S, keycode.KC_T), reports[len(reports)-1])
}

func TestNKROReports(t *testing.T) {
	f := newFixture(t, WithNKRO(true))
	f.tap(rowS, colS)
	reports := f.mem.NKROReports()
	require.Len(t, reports, 2)
	assert.True(t, reports[0].HasKey(uint8(keycode.KC_S)))
	assert.Equal(t, uint8(hidreport.ReportIDNKRO), reports[0].ReportID)
	assert.Empty(t, reports[1].Keys())
	assert.Empty(t, f.mem.KeyboardReports())
}

func TestConsumerKey(t *testing.T) {
	f := newFixture(t)
	f.press(rowFnc, colFnc)
	f.tap(0, 3) // KC_MPLY
	f.release(rowFnc, colFnc)

	press, ok := hidreport.ExtraReportFor(keycode.KC_MPLY)
	require.True(t, ok)
	assert.Equal(t, []hidreport.ExtraReport{
		press,
		{ReportID: press.ReportID},
	}, f.mem.ExtraReports())
}

func TestRepeatKey(t *testing.T) {
	f := newFixture(t)
	f.tap(rowS, colS)
	f.tap(rowRep, colRep)
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_S),
		kb(0),
		kb(0, keycode.KC_S),
		kb(0),
	}, f.mem.KeyboardReports())
}

func TestMagicKeyTypesMacro(t *testing.T) {
	f := newFixture(t)
	f.tap(rowSpc, colSpc)
	f.mem.Reset()

	f.tap(rowMagic, colMagic)
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_T), kb(0),
		kb(0, keycode.KC_H), kb(0),
		kb(0, keycode.KC_E), kb(0),
	}, f.mem.KeyboardReports())

	f.mem.Reset()
	f.tap(rowRep, colRep)
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_N),
		kb(0),
	}, f.mem.KeyboardReports())
}

func TestMagicKeyAlternate(t *testing.T) {
	f := newFixture(t)
	f.tap(5, 3) // KC_A
	f.mem.Reset()
	f.tap(rowMagic, colMagic)
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_O),
		kb(0),
	}, f.mem.KeyboardReports())

	f.mem.Reset()
	f.tap(rowRep, colRep)
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_N),
		kb(0),
	}, f.mem.KeyboardReports(), "a vowel from the magic key makes repeat type n")
}

func TestCapsWord(t *testing.T) {
	f := newFixture(t)
	f.press(rowSym, colSym)
	f.tap(2, 1) // CW_TOGG
	f.release(rowSym, colSym)
	require.True(t, f.fw.CapsWord())

	f.tap(rowT, colT)
	f.tap(rowSpc, colSpc)
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(keycode.ModLShift, keycode.KC_T),
		kb(0),
		kb(0, keycode.KC_SPC),
		kb(0),
	}, f.mem.KeyboardReports())
	assert.False(t, f.fw.CapsWord())
}

func TestExtendLayerTogglesScrollLock(t *testing.T) {
	f := newFixture(t)
	f.press(rowExt, colExt)
	assert.True(t, f.fw.host.LockLEDState().ScrollLock)
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_SCRL),
		kb(0),
	}, f.mem.KeyboardReports())

	// The host confirms the LED, so leaving the layer toggles it back.
	f.fw.OnLEDs(hidreport.LEDScrollLock)
	f.release(rowExt, colExt)
	assert.False(t, f.fw.host.LockLEDState().ScrollLock)
	assert.Len(t, f.mem.KeyboardReports(), 4)
}

func TestSideChannel(t *testing.T) {
	f := newFixture(t)
	f.fw.OnRawReceive([]byte{hidreport.ArmByte})
	f.press(rowS, colS)

	assert.Empty(t, f.mem.KeyboardReports())
	packets := f.mem.RawPackets()
	require.Len(t, packets, 3)
	assert.Equal(t, hidreport.AckPacket(), packets[0])

	shadow, err := hidreport.DecodePacket(packets[1][:])
	require.NoError(t, err)
	require.Equal(t, hidreport.PacketShadow, shadow.Kind)
	assert.True(t, shadow.Shadow.HasKey(uint8(keycode.KC_S)))

	diag, err := hidreport.DecodePacket(packets[2][:])
	require.NoError(t, err)
	require.Equal(t, hidreport.PacketDiagnostic, diag.Kind)
	assert.True(t, diag.Diagnostic.IsPressed(rowS, colS))
	assert.False(t, diag.Diagnostic.IsPressed(rowT, colT))

	// No heartbeat: the primary path comes back after the timeout.
	f.now = 2000
	f.fw.Engine().OnMaintenanceTick()
	assert.False(t, f.fw.State().SideChannel)
	f.release(rowS, colS)
	f.tap(rowT, colT)
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_T),
		kb(0),
	}, f.mem.KeyboardReports())
}

func TestKeyHeldAcrossArm(t *testing.T) {
	f := newFixture(t)
	f.press(rowS, colS)
	f.fw.OnRawReceive([]byte{hidreport.ArmByte})
	f.release(rowS, colS)
	assert.Equal(t, []hidreport.KeyboardReport{kb(0, keycode.KC_S)}, f.mem.KeyboardReports())

	f.fw.OnRawReceive([]byte{hidreport.DisarmByte})
	f.fw.Engine().OnMaintenanceTick()
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_S),
		kb(0),
	}, f.mem.KeyboardReports())
}

func TestKeyHeldAcrossDisarm(t *testing.T) {
	f := newFixture(t)
	f.fw.OnRawReceive([]byte{hidreport.ArmByte})
	f.press(rowS, colS)
	f.fw.OnRawReceive([]byte{hidreport.DisarmByte})
	f.fw.Engine().OnMaintenanceTick()
	f.release(rowS, colS)
	f.tap(rowT, colT)
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_T),
		kb(0),
	}, f.mem.KeyboardReports())

	f.fw.OnRawReceive([]byte{hidreport.ArmByte})
	shadow := f.fw.Engine().Multiplexer().ShadowReport()
	assert.False(t, shadow.HasKey(uint8(keycode.KC_S)))
}

func TestOutOfMatrixEventIgnored(t *testing.T) {
	f := newFixture(t)
	f.press(keymap.Rows, 0)
	f.press(0, -1)
	assert.Empty(t, f.mem.KeyboardReports())
}

func TestRunScript(t *testing.T) {
	mem := transport.NewMemory(4)
	src := matrix.NewScript(zap.NewNop(), strings.NewReader("tap 1 1\ntap 1 2\n"))
	fw := New(keymap.Default(), src, mem)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, fw.Run(ctx))
	assert.Equal(t, []hidreport.KeyboardReport{
		kb(0, keycode.KC_S),
		kb(0),
		kb(0, keycode.KC_T),
		kb(0),
	}, mem.KeyboardReports())
}

func TestSetConfigKeepsLatest(t *testing.T) {
	f := newFixture(t)
	first := engine.DefaultConfig()
	second := engine.DefaultConfig()
	second.OneShotTimeout = engine.Duration(time.Second)
	f.fw.SetConfig(first)
	f.fw.SetConfig(second)
	assert.Len(t, f.fw.configs, 1)
	assert.Equal(t, second, <-f.fw.configs)

	f.fw.SetKeymap(keymap.Default())
	assert.Len(t, f.fw.keymaps, 1)
}
