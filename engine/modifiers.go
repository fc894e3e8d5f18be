package engine

import "github.com/neuroplastio/neio-keycore/keycode"

// Modifiers tracks one-shot modifiers. physical holds slots whose one-shot
// key is down, oneShot holds latched slots. Either can be set without the
// other: a latch outlives the key, and a hold can outlive the latch.
type Modifiers struct {
	physical    uint8
	oneShot     uint8
	activatedAt [keycode.NumMods]uint32
}

func slotBit(slot uint8) uint8 {
	return 1 << (slot & 0x07)
}

// Activate latches slot and marks it held. The caller registers the key.
func (m *Modifiers) Activate(slot uint8, now uint32) {
	bit := slotBit(slot)
	m.physical |= bit
	m.oneShot |= bit
	m.activatedAt[slot&0x07] = now
}

// ReleasePhysical marks slot released. The key is unregistered unless it
// is still latched.
func (m *Modifiers) ReleasePhysical(slot uint8, emit KeyEmitter) {
	bit := slotBit(slot)
	if m.oneShot&bit == 0 {
		emit.KeyUp(keycode.EX_MOD(slot))
	}
	m.physical &^= bit
}

// ClearAllOneShot commits the latches: every latched slot that is not held
// is unregistered, then all latches are dropped.
func (m *Modifiers) ClearAllOneShot(emit KeyEmitter) {
	for slot := uint8(0); slot < keycode.NumMods; slot++ {
		bit := slotBit(slot)
		if m.oneShot&bit != 0 && m.physical&bit == 0 {
			emit.KeyUp(keycode.EX_MOD(slot))
		}
	}
	m.oneShot = 0
}

// Expire drops latches older than their timeout. Held slots use
// holdTimeout and stay registered, released slots use timeout and are
// unregistered. Elapsed time is computed modulo 2^32.
func (m *Modifiers) Expire(now, holdTimeout, timeout uint32, emit KeyEmitter) {
	if m.oneShot == 0 {
		return
	}
	for slot := uint8(0); slot < keycode.NumMods; slot++ {
		bit := slotBit(slot)
		if m.oneShot&bit == 0 {
			continue
		}
		holding := m.physical&bit != 0
		limit := timeout
		if holding {
			limit = holdTimeout
		}
		if now-m.activatedAt[slot] > limit {
			m.oneShot &^= bit
			if !holding {
				emit.KeyUp(keycode.EX_MOD(slot))
			}
		}
	}
}

func (m *Modifiers) Physical() uint8 {
	return m.physical
}

func (m *Modifiers) OneShot() uint8 {
	return m.oneShot
}

// Active reports whether any latch is set.
func (m *Modifiers) Active() bool {
	return m.oneShot != 0
}
