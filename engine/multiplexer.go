package engine

import (
	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/keycode"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Multiplexer decorates the transport report senders. Primary reports are
// forwarded unless suppressed, and while the side channel is armed every
// report is mirrored into a shadow NKRO report that is sent over the raw
// interface together with a diagnostic packet.
//
// suppressPrimary, sideChannel and lastHeartbeat are shared with the raw
// receive context. Everything else belongs to the event context.
type Multiplexer struct {
	log     *zap.Logger
	senders Senders
	layer   func() uint8
	matrix  func() []byte

	suppressPrimary atomic.Bool
	sideChannel     atomic.Bool
	lastHeartbeat   atomic.Uint32

	// mirror follows the primary reports, shadow follows the keys routed
	// around the primary path while suppressed.
	mirror   hidreport.NKROReport
	shadow   hidreport.NKROReport
	weakMods uint8

	// The latest primary report of each kind dropped while suppressed. They
	// are sent once suppression lifts so the host never keeps a key that was
	// released in the meantime.
	held primaryReports
}

type primaryReports struct {
	keyboard    hidreport.KeyboardReport
	nkro        hidreport.NKROReport
	system      hidreport.ExtraReport
	consumer    hidreport.ExtraReport
	hasKeyboard bool
	hasNKRO     bool
	hasSystem   bool
	hasConsumer bool
}

func (p *primaryReports) any() bool {
	return p.hasKeyboard || p.hasNKRO || p.hasSystem || p.hasConsumer
}

func (p *primaryReports) holdExtra(report hidreport.ExtraReport) {
	if report.ReportID == hidreport.ReportIDConsumer {
		p.consumer, p.hasConsumer = report, true
		return
	}
	p.system, p.hasSystem = report, true
}

func NewMultiplexer(log *zap.Logger, senders Senders, layer func() uint8, matrix func() []byte) *Multiplexer {
	return &Multiplexer{
		log:     log,
		senders: senders,
		layer:   layer,
		matrix:  matrix,
		mirror:  hidreport.NewNKROReport(),
		shadow:  hidreport.NewNKROReport(),
	}
}

func (m *Multiplexer) SendKeyboard(report hidreport.KeyboardReport) {
	if m.suppressPrimary.Load() {
		m.held.keyboard, m.held.hasKeyboard = report, true
	} else {
		m.held.hasKeyboard = false
		m.Resume()
		m.senders.Keyboard(report)
	}
	if !m.sideChannel.Load() {
		return
	}
	m.mirror.Mods = report.Mods
	m.mirror.Bits = [hidreport.NKROReportBits]uint8{}
	for _, code := range report.Keys {
		if code != 0 {
			m.mirror.SetKey(code)
		}
	}
	m.emit()
}

func (m *Multiplexer) SendNKRO(report hidreport.NKROReport) {
	if m.suppressPrimary.Load() {
		m.held.nkro, m.held.hasNKRO = report, true
	} else {
		m.held.hasNKRO = false
		m.Resume()
		m.senders.NKRO(report)
	}
	if !m.sideChannel.Load() {
		return
	}
	m.mirror = report
	m.emit()
}

func (m *Multiplexer) SendExtra(report hidreport.ExtraReport) {
	if m.suppressPrimary.Load() {
		m.held.holdExtra(report)
	} else {
		if report.ReportID == hidreport.ReportIDConsumer {
			m.held.hasConsumer = false
		} else {
			m.held.hasSystem = false
		}
		m.Resume()
		m.senders.Extra(report)
	}
	if !m.sideChannel.Load() {
		return
	}
	if report.Usage == 0 {
		for code := keycode.SystemMin; code <= keycode.SystemMax; code++ {
			m.mirror.ClearKey(uint8(code))
		}
		for code := keycode.ConsumerMin; code <= keycode.ConsumerMax; code++ {
			m.mirror.ClearKey(uint8(code))
		}
	} else if code := keycode.UsageToKeycode(report.Usage); code != keycode.KC_NO {
		m.mirror.SetKey(uint8(code))
	}
	m.emit()
}

// ShadowRegister records a key that bypassed the primary path.
func (m *Multiplexer) ShadowRegister(code keycode.Keycode) {
	switch {
	case code.IsModifier():
		m.shadow.Mods |= keycode.ModBit(code)
	case code.IsModded():
		m.weakMods |= code.Mods()
		m.shadow.SetKey(uint8(code.Basic()))
	case code.IsBasic() && code > keycode.KC_TRNS:
		m.shadow.SetKey(uint8(code))
	default:
		return
	}
	if m.sideChannel.Load() {
		m.emit()
	}
}

func (m *Multiplexer) ShadowUnregister(code keycode.Keycode) {
	switch {
	case code.IsModifier():
		m.shadow.Mods &^= keycode.ModBit(code)
	case code.IsModded():
		m.weakMods &^= code.Mods()
		m.shadow.ClearKey(uint8(code.Basic()))
	case code.IsBasic() && code > keycode.KC_TRNS:
		m.shadow.ClearKey(uint8(code))
	default:
		return
	}
	if m.sideChannel.Load() {
		m.emit()
	}
}

// ShadowReport returns the report the side channel currently carries.
func (m *Multiplexer) ShadowReport() hidreport.NKROReport {
	report := m.mirror
	report.ReportID = hidreport.ReportIDNKRO
	report.Mods |= m.shadow.Mods | m.weakMods
	for i := range report.Bits {
		report.Bits[i] |= m.shadow.Bits[i]
	}
	return report
}

// Refresh sends the side channel packets without a report change.
func (m *Multiplexer) Refresh() {
	if m.sideChannel.Load() {
		m.emit()
	}
}

func (m *Multiplexer) emit() {
	m.senders.Raw(hidreport.ShadowPacket(m.ShadowReport()))
	var matrix []byte
	if m.matrix != nil {
		matrix = m.matrix()
	}
	m.senders.Raw(hidreport.DiagnosticPacket(m.layer(), matrix))
}

// OnRawReceive handles a control transfer from the side channel consumer.
// It may run concurrently with the event context.
func (m *Multiplexer) OnRawReceive(buf []byte, now uint32) {
	if len(buf) == 0 {
		return
	}
	switch buf[0] {
	case hidreport.ArmByte:
		m.lastHeartbeat.Store(now)
		m.sideChannel.Store(true)
		if !m.suppressPrimary.Swap(true) {
			m.log.Debug("Side channel armed")
		}
		m.senders.Raw(hidreport.AckPacket())
	case hidreport.DisarmByte:
		m.sideChannel.Store(false)
		m.suppressPrimary.Store(false)
		m.log.Debug("Side channel disarmed")
	}
}

// Resume sends the primary reports held back while suppressed. It is a
// no-op while suppression is on. Event context only.
func (m *Multiplexer) Resume() {
	if m.suppressPrimary.Load() || !m.held.any() {
		return
	}
	held := m.held
	m.held = primaryReports{}
	if held.hasKeyboard {
		m.senders.Keyboard(held.keyboard)
	}
	if held.hasNKRO {
		m.senders.NKRO(held.nkro)
	}
	if held.hasSystem {
		m.senders.Extra(held.system)
	}
	if held.hasConsumer {
		m.senders.Extra(held.consumer)
	}
	m.log.Debug("Primary reports resumed")
}

// CheckHeartbeat disarms the side channel when no arm request arrived
// within timeout, then resumes the primary path if it is no longer
// suppressed. An arm stamped after now counts as fresh.
func (m *Multiplexer) CheckHeartbeat(now, timeout uint32) {
	if m.sideChannel.Load() {
		elapsed := now - m.lastHeartbeat.Load()
		if int32(elapsed) >= 0 && elapsed > timeout {
			m.sideChannel.Store(false)
			m.suppressPrimary.Store(false)
			m.log.Debug("Side channel heartbeat expired")
		}
	}
	m.Resume()
}

func (m *Multiplexer) SuppressPrimary() bool {
	return m.suppressPrimary.Load()
}

// ToggleSuppressPrimary flips suppression and returns the new value.
func (m *Multiplexer) ToggleSuppressPrimary() bool {
	suppressed := !m.suppressPrimary.Toggle()
	m.Resume()
	return suppressed
}

func (m *Multiplexer) SideChannelEnabled() bool {
	return m.sideChannel.Load()
}
