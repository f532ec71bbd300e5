package ov7670

// initRegisters is the bring-up table applied by Begin after the colorspace.
// Gamma, AEC/AGC, AWB and lens correction tuning for indoor light at 50 Hz.
var initRegisters = []regval{
	{RegTSLB, TSLBYLast}, // No auto window
	{RegSLOP, 0x20},
	{RegGamBase, 0x1C},
	{RegGamBase + 1, 0x28},
	{RegGamBase + 2, 0x3C},
	{RegGamBase + 3, 0x55},
	{RegGamBase + 4, 0x68},
	{RegGamBase + 5, 0x76},
	{RegGamBase + 6, 0x80},
	{RegGamBase + 7, 0x88},
	{RegGamBase + 8, 0x8F},
	{RegGamBase + 9, 0x96},
	{RegGamBase + 10, 0xA3},
	{RegGamBase + 11, 0xAF},
	{RegGamBase + 12, 0xC4},
	{RegGamBase + 13, 0xD7},
	{RegGamBase + 14, 0xE8},
	{RegCOM8, COM8FastAEC | COM8AECStep | COM8Banding},
	{RegGain, 0x00},
	{RegCOM2, 0x00},
	{RegCOM4, 0x00},
	{RegCOM9, 0x20},    // Max AGC value
	{RegCOM11, 1 << 3}, // 50 Hz
	{0x9D, 89},         // Banding filter for 50 Hz at 13.888 MHz
	{RegBD50Max, 0x05},
	{RegBD60Max, 0x07},
	{RegAEW, 0x75},
	{RegAEB, 0x63},
	{RegVPT, 0xA5},
	{RegHAECC1, 0x78},
	{RegHAECC2, 0x68},
	{0xA1, 0x03},
	{RegHAECC3, 0xDF},
	{RegHAECC4, 0xDF},
	{RegHAECC5, 0xF0},
	{RegHAECC6, 0x90},
	{RegHAECC7, 0x94},
	{RegCOM8, COM8FastAEC | COM8AECStep | COM8Banding | COM8AGC | COM8AEC | COM8AWB},
	{RegCOM5, 0x61},
	{RegCOM6, 0x4B},
	{0x16, 0x02},
	{RegMVFP, 0x07},
	{RegADCCTR1, 0x02},
	{RegADCCTR2, 0x91},
	{0x29, 0x07},
	{RegCHLF, 0x0B},
	{0x35, 0x0B},
	{RegADC, 0x1D},
	{RegACOM, 0x71},
	{RegOFON, 0x2A},
	{RegCOM12, 0x78},
	{0x4D, 0x40},
	{0x4E, 0x20},
	{RegGFIX, 0x5D},
	{RegREG74, 0x19},
	{0x8D, 0x4F},
	{0x8E, 0x00},
	{0x8F, 0x00},
	{0x90, 0x00},
	{0x91, 0x00},
	{RegDMLNL, 0x00},
	{0x96, 0x00},
	{0x9A, 0x80},
	{0xB0, 0x84},
	{RegABLC1, 0x0C},
	{0xB2, 0x0E},
	{RegTHLST, 0x82},
	{0xB8, 0x0A},
	{RegAWBC1, 0x14},
	{RegAWBC2, 0xF0},
	{RegAWBC3, 0x34},
	{RegAWBC4, 0x58},
	{RegAWBC5, 0x28},
	{RegAWBC6, 0x3A},
	{0x59, 0x88},
	{0x5A, 0x88},
	{0x5B, 0x44},
	{0x5C, 0x67},
	{0x5D, 0x49},
	{0x5E, 0x0E},
	{RegLCC3, 0x04},
	{RegLCC4, 0x20},
	{RegLCC5, 0x05},
	{RegLCC6, 0x04},
	{RegLCC7, 0x08},
	{RegAWBCTR3, 0x0A},
	{RegAWBCTR2, 0x55},
	{RegAWBCTR1, 0x11},
	{RegAWBCTR0, 0x9E}, // Advanced AWB
	{RegBright, 0x00},
	{RegContrast, 0x40},
	{RegContrastCenter, 0x80},
}
