// Command sccbprobe talks to an OV7670 on a Linux I2C bus: it checks the
// product ID, dumps the register file and can switch on a test pattern.
//
// The sensor only answers while its XCLK input is driven.
package main

import (
	"flag"
	"fmt"
	"os"

	"picocam/core"
	"picocam/drivers/ov7670"
	"picocam/host/sccb"
)

var (
	busName = flag.String("bus", "", "I2C bus name, empty for the first bus")
	dump    = flag.Bool("dump", false, "dump registers 0x00-0xC9")
	pattern = flag.Int("pattern", -1, "test pattern 0-3, -1 leaves it alone")
	mirror  = flag.Bool("mirror", false, "mirror the image horizontally")
	vflip   = flag.Bool("vflip", false, "flip the image vertically")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sccbprobe: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	closer, bus, err := sccb.Open(*busName)
	if err != nil {
		return err
	}
	defer closer.Close()

	d := ov7670.New(bus)
	if err := d.Probe(); err != nil {
		return fmt.Errorf("probe at %s: %w", core.Hex8(uint8(d.Address)), err)
	}
	ver, err := d.ReadRegister(ov7670.RegVER)
	if err != nil {
		return err
	}
	fmt.Printf("OV7670 found, PID %s VER %s\n", core.Hex8(ov7670.ProductID), core.Hex8(ver))

	if *dump {
		for reg := 0; reg <= 0xC9; reg++ {
			v, err := d.ReadRegister(uint8(reg))
			if err != nil {
				return err
			}
			fmt.Printf("%s=%s", core.Hex8(uint8(reg)), core.Hex8(v))
			if reg%8 == 7 {
				fmt.Println()
			} else {
				fmt.Print(" ")
			}
		}
		fmt.Println()
	}

	if *pattern >= 0 {
		if err := d.SetTestPattern(ov7670.TestPattern(*pattern)); err != nil {
			return err
		}
	}
	if *mirror || *vflip {
		if err := d.Flip(*mirror, *vflip); err != nil {
			return err
		}
	}
	return nil
}
