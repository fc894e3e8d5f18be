package keycode

// Usage page for system control extra reports.
const (
	UsagePageGenericDesktop uint16 = 0x01
	UsagePageConsumer       uint16 = 0x0C
)

// Extra report usages, system control first, then consumer page.
const (
	SystemPowerDown uint16 = 0x81
	SystemSleep     uint16 = 0x82
	SystemWakeUp    uint16 = 0x83

	AudioMute               uint16 = 0xE2
	AudioVolUp              uint16 = 0xE9
	AudioVolDown            uint16 = 0xEA
	TransportNextTrack      uint16 = 0xB5
	TransportPrevTrack      uint16 = 0xB6
	TransportFastForward    uint16 = 0xB3
	TransportRewind         uint16 = 0xB4
	TransportStop           uint16 = 0xB7
	TransportStopEject      uint16 = 0xCC
	TransportPlayPause      uint16 = 0xCD
	ALCCConfig              uint16 = 0x183
	ALEmail                 uint16 = 0x18A
	ALCalculator            uint16 = 0x192
	ALLocalBrowser          uint16 = 0x194
	ALControlPanel          uint16 = 0x19F
	ALAssistant             uint16 = 0x1CB
	ACSearch                uint16 = 0x221
	ACHome                  uint16 = 0x223
	ACBack                  uint16 = 0x224
	ACForward               uint16 = 0x225
	ACStop                  uint16 = 0x226
	ACRefresh               uint16 = 0x227
	ACBookmarks             uint16 = 0x22A
	BrightnessUp            uint16 = 0x6F
	BrightnessDown          uint16 = 0x70
	ACDesktopShowAllWindows uint16 = 0x29F
	ACSoftKeyLeft           uint16 = 0x2A0
)

// UsageToKeycode maps an extra report usage to its pseudo keycode.
// Unknown usages map to KC_NO.
func UsageToKeycode(usage uint16) Keycode {
	switch usage {
	case SystemPowerDown:
		return KC_SYSTEM_POWER
	case SystemSleep:
		return KC_SYSTEM_SLEEP
	case SystemWakeUp:
		return KC_SYSTEM_WAKE
	case AudioMute:
		return KC_AUDIO_MUTE
	case AudioVolUp:
		return KC_AUDIO_VOL_UP
	case AudioVolDown:
		return KC_AUDIO_VOL_DOWN
	case TransportNextTrack:
		return KC_MEDIA_NEXT_TRACK
	case TransportPrevTrack:
		return KC_MEDIA_PREV_TRACK
	case TransportFastForward:
		return KC_MEDIA_FAST_FORWARD
	case TransportRewind:
		return KC_MEDIA_REWIND
	case TransportStop:
		return KC_MEDIA_STOP
	case TransportStopEject:
		return KC_MEDIA_EJECT
	case TransportPlayPause:
		return KC_MEDIA_PLAY_PAUSE
	case ALCCConfig:
		return KC_MEDIA_SELECT
	case ALEmail:
		return KC_MAIL
	case ALCalculator:
		return KC_CALCULATOR
	case ALLocalBrowser:
		return KC_MY_COMPUTER
	case ALControlPanel:
		return KC_CONTROL_PANEL
	case ALAssistant:
		return KC_ASSISTANT
	case ACSearch:
		return KC_WWW_SEARCH
	case ACHome:
		return KC_WWW_HOME
	case ACBack:
		return KC_WWW_BACK
	case ACForward:
		return KC_WWW_FORWARD
	case ACStop:
		return KC_WWW_STOP
	case ACRefresh:
		return KC_WWW_REFRESH
	case BrightnessUp:
		return KC_BRIGHTNESS_UP
	case BrightnessDown:
		return KC_BRIGHTNESS_DOWN
	case ACBookmarks:
		return KC_WWW_FAVORITES
	case ACDesktopShowAllWindows:
		return KC_MISSION_CONTROL
	case ACSoftKeyLeft:
		return KC_LAUNCHPAD
	default:
		return KC_NO
	}
}

var keycodeUsages = func() map[Keycode]uint16 {
	usages := make(map[Keycode]uint16)
	for _, usage := range []uint16{
		SystemPowerDown, SystemSleep, SystemWakeUp,
		AudioMute, AudioVolUp, AudioVolDown,
		TransportNextTrack, TransportPrevTrack, TransportFastForward, TransportRewind,
		TransportStop, TransportStopEject, TransportPlayPause,
		ALCCConfig, ALEmail, ALCalculator, ALLocalBrowser, ALControlPanel, ALAssistant,
		ACSearch, ACHome, ACBack, ACForward, ACStop, ACRefresh, ACBookmarks,
		BrightnessUp, BrightnessDown, ACDesktopShowAllWindows, ACSoftKeyLeft,
	} {
		usages[UsageToKeycode(usage)] = usage
	}
	return usages
}()

// KeycodeToUsage is the inverse of UsageToKeycode for system and consumer keys.
func KeycodeToUsage(code Keycode) (uint16, bool) {
	usage, ok := keycodeUsages[code]
	return usage, ok
}
