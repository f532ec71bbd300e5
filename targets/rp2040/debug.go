//go:build rp2040

package main

import (
	"machine"

	"picocam/core"
)

var debugUART *machine.UART

// InitDebugUART routes core debug output to UART0 at 115200 baud. USB carries
// frames, so traces cannot share it.
func InitDebugUART() {
	debugUART = machine.UART0
	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       pinDebugTX,
		RX:       pinDebugRX,
	})
	if err != nil {
		debugUART = nil
		return
	}

	core.SetDebugWriter(debugPrintln)
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()
	core.DebugPrintln("=== picocam debug UART ===")
}

func debugPrintln(s string) {
	if debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
