package ov7670

// Address is the 7-bit SCCB address of the sensor.
const Address = 0x21

// ProductID is the value of the PID register on a genuine OV7670.
const ProductID = 0x76

// DefaultXCLK is the sensor input clock in Hz when the RP2040 divides its
// 125 MHz system clock by 8.
const DefaultXCLK = 15625000

// Registers
const (
	RegGain             = 0x00 // AGC gain bits 7:0 (9:8 in VREF)
	RegBlue             = 0x01 // AWB blue channel gain
	RegRed              = 0x02 // AWB red channel gain
	RegVREF             = 0x03 // Vertical frame control bits
	RegCOM1             = 0x04
	RegBAVE             = 0x05 // U/B average level
	RegGbAVE            = 0x06 // Y/Gb average level
	RegAECHH            = 0x07 // Exposure value, AEC 15:10 bits
	RegRAVE             = 0x08 // V/R average level
	RegCOM2             = 0x09
	RegPID              = 0x0A // Product ID MSB (read-only)
	RegVER              = 0x0B // Product ID LSB (read-only)
	RegCOM3             = 0x0C
	RegCOM4             = 0x0D
	RegCOM5             = 0x0E
	RegCOM6             = 0x0F
	RegAECH             = 0x10 // Exposure value 9:2
	RegCLKRC            = 0x11 // Internal clock
	RegCOM7             = 0x12
	RegCOM8             = 0x13
	RegCOM9             = 0x14 // Max AGC value
	RegCOM10            = 0x15
	RegHSTART           = 0x17 // Horiz frame start high bits
	RegHSTOP            = 0x18 // Horiz frame end high bits
	RegVSTART           = 0x19 // Vert frame start high bits
	RegVSTOP            = 0x1A // Vert frame end high bits
	RegPSHFT            = 0x1B // Pixel delay select
	RegMIDH             = 0x1C // Manufacturer ID high byte
	RegMIDL             = 0x1D // Manufacturer ID low byte
	RegMVFP             = 0x1E // Mirror / vert-flip enable
	RegADCCTR0          = 0x20
	RegADCCTR1          = 0x21
	RegADCCTR2          = 0x22
	RegAEW              = 0x24 // AGC/AEC upper limit
	RegAEB              = 0x25 // AGC/AEC lower limit
	RegVPT              = 0x26 // AGC/AEC fast mode op region
	RegHREF             = 0x32 // HREF control
	RegCHLF             = 0x33 // Array current control
	RegADC              = 0x37
	RegACOM             = 0x38
	RegOFON             = 0x39
	RegTSLB             = 0x3A // Line buffer test option
	RegCOM11            = 0x3B
	RegCOM12            = 0x3C
	RegCOM13            = 0x3D
	RegCOM14            = 0x3E
	RegEDGE             = 0x3F
	RegCOM15            = 0x40
	RegCOM16            = 0x41
	RegCOM17            = 0x42
	RegAWBC1            = 0x43
	RegAWBC2            = 0x44
	RegAWBC3            = 0x45
	RegAWBC4            = 0x46
	RegAWBC5            = 0x47
	RegAWBC6            = 0x48
	RegMTX1             = 0x4F
	RegBright           = 0x55
	RegContrast         = 0x56
	RegContrastCenter   = 0x57
	RegLCC3             = 0x64
	RegLCC4             = 0x65
	RegLCC5             = 0x66
	RegGFIX             = 0x69
	RegDBLV             = 0x6B // PLL & regulator control
	RegAWBCTR3          = 0x6C
	RegAWBCTR2          = 0x6D
	RegAWBCTR1          = 0x6E
	RegAWBCTR0          = 0x6F
	RegScalingXSC       = 0x70 // Test pattern X scaling
	RegScalingYSC       = 0x71 // Test pattern Y scaling
	RegScalingDCWCTR    = 0x72 // DCW control
	RegScalingPCLKDiv   = 0x73 // DSP scale control clock divide
	RegREG74            = 0x74 // Digital gain control
	RegREG76            = 0x76 // Pixel correction
	RegSLOP             = 0x7A // Gamma curve highest segment slope
	RegGamBase          = 0x7B // Gamma register base (1 of 15)
	RegRGB444           = 0x8C
	RegDMLNL            = 0x92 // Dummy line LSB
	RegLCC6             = 0x94
	RegLCC7             = 0x95
	RegHAECC1           = 0x9F // Histogram-based AEC/AGC control 1
	RegHAECC2           = 0xA0
	RegScalingPCLKDelay = 0xA2
	RegBD50Max          = 0xA5 // 50 Hz banding step limit
	RegHAECC3           = 0xA6
	RegHAECC4           = 0xA7
	RegHAECC5           = 0xA8
	RegHAECC6           = 0xA9
	RegHAECC7           = 0xAA
	RegBD60Max          = 0xAB // 60 Hz banding step limit
	RegABLC1            = 0xB1
	RegTHLST            = 0xB3 // ABLC target
	RegSATCTR           = 0xC9 // Saturation control
)

// Register bits
const (
	COM3Swap    = 0x40 // Output data MSB/LSB swap
	COM3ScaleEn = 0x08
	COM3DCWEn   = 0x04

	ClkExt   = 0x40 // CLKRC: use external clock directly
	ClkScale = 0x3F // CLKRC: prescale mask

	COM7Reset    = 0x80
	COM7RGB      = 0x04
	COM7YUV      = 0x00
	COM7ColorBar = 0x02

	COM8FastAEC = 0x80
	COM8AECStep = 0x40
	COM8Banding = 0x20
	COM8AGC     = 0x04
	COM8AWB     = 0x02
	COM8AEC     = 0x01

	MVFPMirror = 0x20
	MVFPVFlip  = 0x10

	TSLBYLast = 0x04 // UYVY or VYUY, see COM13

	COM11NightMask = 0xE0

	COM14DCWEn = 0x10

	COM15R00FF  = 0xC0
	COM15RGB565 = 0x10

	testPatternBit = 0x80
)
