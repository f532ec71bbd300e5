package pio

import "picocam/camera"

// smSettings holds a camera.StateMachineConfig as the arguments of the
// rp2-pio config setters, in their parameter order.
type smSettings struct {
	// SetWrap(wrapTarget, wrap): WRAP_BOTTOM then WRAP_TOP
	wrapTarget, wrap uint8

	// SetInPins(inBase, inCount)
	inBase, inCount uint8

	// SetInShift(shiftRight, autopush, pushThreshold)
	shiftRight    bool
	autopush      bool
	pushThreshold uint16

	joinRX bool

	// SetClkDivIntFrac(clkDivInt, 0)
	clkDivInt uint16
}

func settingsFor(cfg camera.StateMachineConfig) smSettings {
	s := smSettings{
		wrapTarget:    cfg.WrapTarget,
		wrap:          cfg.Wrap,
		inBase:        cfg.InBase,
		inCount:       cfg.InCount,
		shiftRight:    cfg.ShiftRight,
		autopush:      cfg.Autopush,
		pushThreshold: uint16(cfg.PushThreshold),
		joinRX:        cfg.JoinRX,
		clkDivInt:     cfg.ClkDivInt,
	}
	if s.clkDivInt == 0 {
		s.clkDivInt = 1
	}
	// 0 means 32 in SHIFTCTRL
	if s.pushThreshold == 0 {
		s.pushThreshold = 32
	}
	return s
}
