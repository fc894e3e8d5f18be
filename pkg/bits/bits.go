package bits

import (
	"errors"
	"fmt"
	mathbits "math/bits"
	"strconv"
	"strings"
)

// Bits is a little-endian bit vector backed by a byte slice.
// Bit n lives in byte n/8 at position n%8, which is the layout used by
// HID N-key rollover bitmaps and by matrix row snapshots.
// Bits is a view: copies share the backing array, use Clone to detach.
type Bits struct {
	missingBits uint8
	bytes       []byte
}

func New(data []byte, missingBits int) Bits {
	return Bits{
		bytes:       data,
		missingBits: uint8(missingBits),
	}
}

// NewZeros allocates a zeroed vector that can hold size bits.
func NewZeros(size int) Bits {
	byteSize := size / 8
	missingBits := 0
	if size%8 != 0 {
		byteSize++
		missingBits = 8 - size%8
	}
	return New(make([]byte, byteSize), missingBits)
}

func (b Bits) String() string {
	result := ""
	for i, byte := range b.bytes {
		isLast := i == len(b.bytes)-1
		if isLast && b.missingBits > 0 {
			result += fmt.Sprintf("%08b", byte)[:8-b.missingBits]
			continue
		}
		result += fmt.Sprintf("%08b", byte)
		if !isLast {
			result += " "
		}
	}
	return result
}

func (b Bits) Equal(other Bits) bool {
	if b.missingBits != other.missingBits {
		return false
	}
	if len(b.bytes) != len(other.bytes) {
		return false
	}
	for i, byte := range b.bytes {
		if byte != other.bytes[i] {
			return false
		}
	}
	return true
}

func (b Bits) Bytes() []byte {
	return b.bytes
}

func (b Bits) Len() int {
	return len(b.bytes)*8 - int(b.missingBits)
}

func (b Bits) IsSet(bit int) bool {
	if bit < 0 || bit >= b.Len() {
		return false
	}
	return b.bytes[bit/8]&(1<<(bit%8)) != 0
}

// Set sets the bit and reports whether it changed.
// Out of range bits are ignored.
func (b Bits) Set(bit int) bool {
	if bit < 0 || bit >= b.Len() {
		return false
	}
	byteOffset := bit / 8
	mask := byte(1 << (bit % 8))
	changed := b.bytes[byteOffset]&mask == 0
	b.bytes[byteOffset] |= mask
	return changed
}

// Clear clears the bit and reports whether it changed.
// Out of range bits are ignored.
func (b Bits) Clear(bit int) bool {
	if bit < 0 || bit >= b.Len() {
		return false
	}
	byteOffset := bit / 8
	mask := byte(1 << (bit % 8))
	changed := b.bytes[byteOffset]&mask != 0
	b.bytes[byteOffset] &^= mask
	return changed
}

// ClearRange clears every bit in [from, to].
func (b Bits) ClearRange(from, to int) {
	for bit := from; bit <= to; bit++ {
		b.Clear(bit)
	}
}

func (b Bits) ClearAll() bool {
	changed := false
	for i := range b.bytes {
		if b.bytes[i] != 0 {
			changed = true
		}
		b.bytes[i] = 0
	}
	return changed
}

func (b Bits) IsEmpty() bool {
	for _, byte := range b.bytes {
		if byte != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of set bits.
func (b Bits) Count() int {
	n := 0
	for _, byte := range b.bytes {
		n += mathbits.OnesCount8(byte)
	}
	return n
}

// Or merges other into b in place. Extra bytes of other are ignored.
func (b Bits) Or(other Bits) {
	for i := range b.bytes {
		if i >= len(other.bytes) {
			return
		}
		b.bytes[i] |= other.bytes[i]
	}
}

// CopyFrom overwrites b with the leading bytes of data.
func (b Bits) CopyFrom(data []byte) {
	n := copy(b.bytes, data)
	for i := n; i < len(b.bytes); i++ {
		b.bytes[i] = 0
	}
}

// EachSet calls f for every set bit in ascending order until f returns false.
func (b Bits) EachSet(f func(bit int) bool) {
	for i, byte := range b.bytes {
		for byte != 0 {
			offset := mathbits.TrailingZeros8(byte)
			bit := i*8 + offset
			if bit >= b.Len() {
				return
			}
			if !f(bit) {
				return
			}
			byte &^= 1 << offset
		}
	}
}

func (b Bits) Clone() Bits {
	bytes := make([]byte, len(b.bytes))
	copy(bytes, b.bytes)
	return Bits{
		bytes:       bytes,
		missingBits: b.missingBits,
	}
}

func NewBitSetFromString(s string) (Bits, error) {
	byteStrs := strings.Fields(s)
	b := Bits{
		bytes: make([]byte, len(byteStrs)),
	}
	for i, byteStr := range byteStrs {
		if len(byteStr) == 8 {
			byteVal, err := strconv.ParseUint(byteStr, 2, 8)
			if err != nil {
				return Bits{}, errors.New("invalid byte value")
			}
			b.bytes[i] = byte(byteVal)
		} else {
			if i != len(byteStrs)-1 {
				return Bits{}, errors.New("incomplete byte in the middle of the string")
			}
			b.missingBits = 8 - uint8(len(byteStr))
			byteStr = byteStr + strings.Repeat("0", 8-len(byteStr))
			byteVal, err := strconv.ParseUint(byteStr, 2, 8)
			if err != nil {
				return Bits{}, errors.New("invalid byte value")
			}
			b.bytes[i] = byte(byteVal)
		}
	}
	return b, nil
}
