// mnemonics.go - opcode-to-mnemonic labels for the trace sink and validator
//
// Not a disassembler: just enough of a label per retired opcode byte for a
// trace line or validator record to be legible, mirroring the terse
// comment style this module's own opcode tables use instead of a full
// instruction-text renderer.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

var mnemonicTable = map[byte]string{
	0x00: "ADD", 0x01: "ADD", 0x02: "ADD", 0x03: "ADD", 0x04: "ADD", 0x05: "ADD",
	0x08: "OR", 0x09: "OR", 0x0A: "OR", 0x0B: "OR", 0x0C: "OR", 0x0D: "OR",
	0x0E: "PUSH CS",
	0x10: "ADC", 0x11: "ADC", 0x12: "ADC", 0x13: "ADC", 0x14: "ADC", 0x15: "ADC",
	0x16: "PUSH SS", 0x17: "POP SS",
	0x18: "SBB", 0x19: "SBB", 0x1A: "SBB", 0x1B: "SBB", 0x1C: "SBB", 0x1D: "SBB",
	0x1E: "PUSH DS", 0x1F: "POP DS",
	0x20: "AND", 0x21: "AND", 0x22: "AND", 0x23: "AND", 0x24: "AND", 0x25: "AND",
	0x28: "SUB", 0x29: "SUB", 0x2A: "SUB", 0x2B: "SUB", 0x2C: "SUB", 0x2D: "SUB",
	0x30: "XOR", 0x31: "XOR", 0x32: "XOR", 0x33: "XOR", 0x34: "XOR", 0x35: "XOR",
	0x38: "CMP", 0x39: "CMP", 0x3A: "CMP", 0x3B: "CMP", 0x3C: "CMP", 0x3D: "CMP",
	0x84: "TEST", 0x85: "TEST", 0xA8: "TEST", 0xA9: "TEST",
	0x80: "GRP1", 0x81: "GRP1", 0x83: "GRP1",
	0x06: "PUSH ES", 0x07: "POP ES",
	0xFE: "INC/DEC Eb", 0xF6: "GRP3 Eb", 0xF7: "GRP3 Ev",
	0x70: "JO", 0x71: "JNO", 0x72: "JB", 0x73: "JNB", 0x74: "JZ", 0x75: "JNZ",
	0x76: "JBE", 0x77: "JA", 0x78: "JS", 0x79: "JNS", 0x7A: "JP", 0x7B: "JNP",
	0x7C: "JL", 0x7D: "JGE", 0x7E: "JLE", 0x7F: "JG",
	0xEB: "JMP", 0xE9: "JMP", 0xEA: "JMPF",
	0xE0: "LOOPNE", 0xE1: "LOOPE", 0xE2: "LOOP", 0xE3: "JCXZ",
	0xE8: "CALL", 0x9A: "CALLF", 0xC3: "RET", 0xC2: "RET", 0xCB: "RETF", 0xCA: "RETF",
	0x9C: "PUSHF", 0x9D: "POPF", 0x9E: "SAHF", 0x9F: "LAHF",
	0xCC: "INT3", 0xCD: "INT", 0xCE: "INTO", 0xCF: "IRET",
	0xF4: "HLT", 0xF5: "CMC", 0xF8: "CLC", 0xF9: "STC", 0xFA: "CLI", 0xFB: "STI",
	0xFC: "CLD", 0xFD: "STD",
	0x88: "MOV", 0x89: "MOV", 0x8A: "MOV", 0x8B: "MOV", 0x8C: "MOV", 0x8E: "MOV",
	0x8D: "LEA",
	0xC6: "MOV", 0xC7: "MOV",
	0xA0: "MOV", 0xA1: "MOV", 0xA2: "MOV", 0xA3: "MOV",
	0x90: "NOP",
	0xA4: "MOVSB", 0xA5: "MOVSW", 0xAA: "STOSB", 0xAB: "STOSW",
	0xAC: "LODSB", 0xAD: "LODSW", 0xA6: "CMPSB", 0xA7: "CMPSW",
	0xAE: "SCASB", 0xAF: "SCASW",
	0xD0: "GRP2 Eb,1", 0xD1: "GRP2 Ev,1", 0xD2: "GRP2 Eb,CL", 0xD3: "GRP2 Ev,CL",
	0x98: "CBW", 0x99: "CWD", 0x27: "DAA", 0x2F: "DAS", 0x37: "AAA", 0x3F: "AAS",
	0xD7: "XLAT", 0xFF: "GRP5 Ev", 0xD4: "AAM", 0xD5: "AAD",
}

func init() {
	for r := byte(0); r < 8; r++ {
		mnemonicTable[0x40+r] = "INC"
		mnemonicTable[0x48+r] = "DEC"
		mnemonicTable[0x50+r] = "PUSH"
		mnemonicTable[0x58+r] = "POP"
		mnemonicTable[0xB0+r] = "MOV"
		mnemonicTable[0xB8+r] = "MOV"
	}
	for r := byte(1); r < 8; r++ {
		mnemonicTable[0x90+r] = "XCHG"
	}
}
