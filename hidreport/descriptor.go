package hidreport

// Raw interface identity, as used by the host side tooling to find the
// side channel.
const (
	RawUsagePage uint16 = 0xFF60
	RawUsage     uint16 = 0x61
)

// KeyboardDescriptor describes the keyboard interface: a boot keyboard,
// system control, consumer control and an NKRO bitmap collection.
var KeyboardDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x06, // Usage (Keyboard)
	0xa1, 0x01, // Collection (Application)
	0x85, ReportIDKeyboard, // Report ID
	0x75, 0x01, // Report Size (1)
	0x95, 0x08, // Report Count (8)
	0x05, 0x07, // Usage Page (Keyboard/Keypad)
	0x19, 0xe0, // Usage Minimum (0xE0)
	0x29, 0xe7, // Usage Maximum (0xE7)
	0x15, 0x00, // Logical Minimum (0)
	0x25, 0x01, // Logical Maximum (1)
	0x81, 0x02, // Input (Data, Variable, Absolute)
	0x95, 0x01, // Report Count (1)
	0x75, 0x08, // Report Size (8)
	0x81, 0x01, // Input (Constant)
	0x95, 0x05, // Report Count (5)
	0x75, 0x01, // Report Size (1)
	0x05, 0x08, // Usage Page (LEDs)
	0x19, 0x01, // Usage Minimum (Num Lock)
	0x29, 0x05, // Usage Maximum (Kana)
	0x91, 0x02, // Output (Data, Variable, Absolute)
	0x95, 0x01, // Report Count (1)
	0x75, 0x03, // Report Size (3)
	0x91, 0x01, // Output (Constant)
	0x95, KeyboardReportKeys, // Report Count (6)
	0x75, 0x08, // Report Size (8)
	0x15, 0x00, // Logical Minimum (0)
	0x26, 0xff, 0x00, // Logical Maximum (255)
	0x05, 0x07, // Usage Page (Keyboard/Keypad)
	0x19, 0x00, // Usage Minimum (0)
	0x29, 0xff, // Usage Maximum (255)
	0x81, 0x00, // Input (Data, Array)
	0xc0, // End Collection

	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x80, // Usage (System Control)
	0xa1, 0x01, // Collection (Application)
	0x85, ReportIDSystem, // Report ID
	0x19, 0x01, // Usage Minimum (1)
	0x2a, 0xb7, 0x00, // Usage Maximum (0xB7)
	0x15, 0x01, // Logical Minimum (1)
	0x26, 0xb7, 0x00, // Logical Maximum (0xB7)
	0x95, 0x01, // Report Count (1)
	0x75, 0x10, // Report Size (16)
	0x81, 0x00, // Input (Data, Array)
	0xc0, // End Collection

	0x05, 0x0c, // Usage Page (Consumer)
	0x09, 0x01, // Usage (Consumer Control)
	0xa1, 0x01, // Collection (Application)
	0x85, ReportIDConsumer, // Report ID
	0x19, 0x01, // Usage Minimum (1)
	0x2a, 0xa0, 0x02, // Usage Maximum (0x2A0)
	0x15, 0x01, // Logical Minimum (1)
	0x26, 0xa0, 0x02, // Logical Maximum (0x2A0)
	0x95, 0x01, // Report Count (1)
	0x75, 0x10, // Report Size (16)
	0x81, 0x00, // Input (Data, Array)
	0xc0, // End Collection

	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x06, // Usage (Keyboard)
	0xa1, 0x01, // Collection (Application)
	0x85, ReportIDNKRO, // Report ID
	0x75, 0x01, // Report Size (1)
	0x95, 0x08, // Report Count (8)
	0x05, 0x07, // Usage Page (Keyboard/Keypad)
	0x19, 0xe0, // Usage Minimum (0xE0)
	0x29, 0xe7, // Usage Maximum (0xE7)
	0x15, 0x00, // Logical Minimum (0)
	0x25, 0x01, // Logical Maximum (1)
	0x81, 0x02, // Input (Data, Variable, Absolute)
	0x95, NKROReportBits * 8, // Report Count
	0x75, 0x01, // Report Size (1)
	0x19, 0x00, // Usage Minimum (0)
	0x29, NKROReportBits*8 - 1, // Usage Maximum
	0x81, 0x02, // Input (Data, Variable, Absolute)
	0xc0, // End Collection
}

// RawDescriptor describes the vendor defined raw interface with one input
// and one output report of RawEPSize bytes and no report id.
var RawDescriptor = []byte{
	0x06, byte(RawUsagePage & 0xff), byte(RawUsagePage >> 8), // Usage Page (Vendor Defined)
	0x09, byte(RawUsage), // Usage
	0xa1, 0x01, // Collection (Application)
	0x09, 0x62, // Usage (Data In)
	0x15, 0x00, // Logical Minimum (0)
	0x26, 0xff, 0x00, // Logical Maximum (255)
	0x95, RawEPSize, // Report Count
	0x75, 0x08, // Report Size (8)
	0x81, 0x02, // Input (Data, Variable, Absolute)
	0x09, 0x63, // Usage (Data Out)
	0x15, 0x00, // Logical Minimum (0)
	0x26, 0xff, 0x00, // Logical Maximum (255)
	0x95, RawEPSize, // Report Count
	0x75, 0x08, // Report Size (8)
	0x91, 0x02, // Output (Data, Variable, Absolute)
	0xc0, // End Collection
}

// LED bits of the keyboard output report.
const (
	LEDNumLock    uint8 = 1 << 0
	LEDCapsLock   uint8 = 1 << 1
	LEDScrollLock uint8 = 1 << 2
	LEDCompose    uint8 = 1 << 3
	LEDKana       uint8 = 1 << 4
)
