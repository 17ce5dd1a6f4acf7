package emu

import "encoding/binary"

// ABI register numbers.
const (
	Zero uint32 = iota
	RA
	SP
	GP
	TP
	T0
	T1
	T2
	S0
	S1
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	T3
	T4
	T5
	T6
)

// Instruction encoders. The emulator's guests and tests are assembled
// in-process from these rather than shipped as prebuilt binaries. Branch and
// jump immediates are byte offsets relative to the encoded instruction.

func encR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return uint32(imm)&0xfff<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return u&0xfe0<<20 | rs2<<20 | rs1<<15 | funct3<<12 | u&0x1f<<7 | opcode
}

func encB(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return u&0x1000<<19 | u&0x7e0<<20 | rs2<<20 | rs1<<15 | funct3<<12 |
		u&0x1e<<7 | u&0x800>>4 | opcode
}

func encU(opcode, rd uint32, imm int32) uint32 {
	return uint32(imm)&0xfffff<<12 | rd<<7 | opcode
}

func encJ(opcode, rd uint32, imm int32) uint32 {
	u := uint32(imm)
	return u&0x100000<<11 | u&0x7fe<<20 | u&0x800<<9 | u&0xff000 | rd<<7 | opcode
}

func LUI(rd uint32, imm20 int32) uint32   { return encU(0x37, rd, imm20) }
func AUIPC(rd uint32, imm20 int32) uint32 { return encU(0x17, rd, imm20) }

func JAL(rd uint32, off int32) uint32 { return encJ(0x6f, rd, off) }
func JALR(rd, rs1 uint32, off int32) uint32 {
	return encI(0x67, rd, 0x0, rs1, off)
}

func BEQ(rs1, rs2 uint32, off int32) uint32  { return encB(0x63, 0x0, rs1, rs2, off) }
func BNE(rs1, rs2 uint32, off int32) uint32  { return encB(0x63, 0x1, rs1, rs2, off) }
func BLT(rs1, rs2 uint32, off int32) uint32  { return encB(0x63, 0x4, rs1, rs2, off) }
func BGE(rs1, rs2 uint32, off int32) uint32  { return encB(0x63, 0x5, rs1, rs2, off) }
func BLTU(rs1, rs2 uint32, off int32) uint32 { return encB(0x63, 0x6, rs1, rs2, off) }
func BGEU(rs1, rs2 uint32, off int32) uint32 { return encB(0x63, 0x7, rs1, rs2, off) }

func LB(rd, rs1 uint32, off int32) uint32  { return encI(0x03, rd, 0x0, rs1, off) }
func LH(rd, rs1 uint32, off int32) uint32  { return encI(0x03, rd, 0x1, rs1, off) }
func LW(rd, rs1 uint32, off int32) uint32  { return encI(0x03, rd, 0x2, rs1, off) }
func LD(rd, rs1 uint32, off int32) uint32  { return encI(0x03, rd, 0x3, rs1, off) }
func LBU(rd, rs1 uint32, off int32) uint32 { return encI(0x03, rd, 0x4, rs1, off) }
func LHU(rd, rs1 uint32, off int32) uint32 { return encI(0x03, rd, 0x5, rs1, off) }
func LWU(rd, rs1 uint32, off int32) uint32 { return encI(0x03, rd, 0x6, rs1, off) }

func SB(rs2, rs1 uint32, off int32) uint32 { return encS(0x23, 0x0, rs1, rs2, off) }
func SH(rs2, rs1 uint32, off int32) uint32 { return encS(0x23, 0x1, rs1, rs2, off) }
func SW(rs2, rs1 uint32, off int32) uint32 { return encS(0x23, 0x2, rs1, rs2, off) }
func SD(rs2, rs1 uint32, off int32) uint32 { return encS(0x23, 0x3, rs1, rs2, off) }

func ADDI(rd, rs1 uint32, imm int32) uint32  { return encI(0x13, rd, 0x0, rs1, imm) }
func SLTI(rd, rs1 uint32, imm int32) uint32  { return encI(0x13, rd, 0x2, rs1, imm) }
func SLTIU(rd, rs1 uint32, imm int32) uint32 { return encI(0x13, rd, 0x3, rs1, imm) }
func XORI(rd, rs1 uint32, imm int32) uint32  { return encI(0x13, rd, 0x4, rs1, imm) }
func ORI(rd, rs1 uint32, imm int32) uint32   { return encI(0x13, rd, 0x6, rs1, imm) }
func ANDI(rd, rs1 uint32, imm int32) uint32  { return encI(0x13, rd, 0x7, rs1, imm) }

func SLLI(rd, rs1 uint32, shamt int32) uint32 { return encI(0x13, rd, 0x1, rs1, shamt&0x3f) }
func SRLI(rd, rs1 uint32, shamt int32) uint32 { return encI(0x13, rd, 0x5, rs1, shamt&0x3f) }
func SRAI(rd, rs1 uint32, shamt int32) uint32 {
	return encI(0x13, rd, 0x5, rs1, shamt&0x3f|0x400)
}

func ADDIW(rd, rs1 uint32, imm int32) uint32 { return encI(0x1b, rd, 0x0, rs1, imm) }
func SLLIW(rd, rs1 uint32, shamt int32) uint32 {
	return encI(0x1b, rd, 0x1, rs1, shamt&0x1f)
}
func SRLIW(rd, rs1 uint32, shamt int32) uint32 {
	return encI(0x1b, rd, 0x5, rs1, shamt&0x1f)
}
func SRAIW(rd, rs1 uint32, shamt int32) uint32 {
	return encI(0x1b, rd, 0x5, rs1, shamt&0x1f|0x400)
}

func ADD(rd, rs1, rs2 uint32) uint32  { return encR(0x33, rd, 0x0, rs1, rs2, 0x00) }
func SUB(rd, rs1, rs2 uint32) uint32  { return encR(0x33, rd, 0x0, rs1, rs2, 0x20) }
func SLL(rd, rs1, rs2 uint32) uint32  { return encR(0x33, rd, 0x1, rs1, rs2, 0x00) }
func SLT(rd, rs1, rs2 uint32) uint32  { return encR(0x33, rd, 0x2, rs1, rs2, 0x00) }
func SLTU(rd, rs1, rs2 uint32) uint32 { return encR(0x33, rd, 0x3, rs1, rs2, 0x00) }
func XOR(rd, rs1, rs2 uint32) uint32  { return encR(0x33, rd, 0x4, rs1, rs2, 0x00) }
func SRL(rd, rs1, rs2 uint32) uint32  { return encR(0x33, rd, 0x5, rs1, rs2, 0x00) }
func SRA(rd, rs1, rs2 uint32) uint32  { return encR(0x33, rd, 0x5, rs1, rs2, 0x20) }
func OR(rd, rs1, rs2 uint32) uint32   { return encR(0x33, rd, 0x6, rs1, rs2, 0x00) }
func AND(rd, rs1, rs2 uint32) uint32  { return encR(0x33, rd, 0x7, rs1, rs2, 0x00) }

func MUL(rd, rs1, rs2 uint32) uint32    { return encR(0x33, rd, 0x0, rs1, rs2, 0x01) }
func MULH(rd, rs1, rs2 uint32) uint32   { return encR(0x33, rd, 0x1, rs1, rs2, 0x01) }
func MULHSU(rd, rs1, rs2 uint32) uint32 { return encR(0x33, rd, 0x2, rs1, rs2, 0x01) }
func MULHU(rd, rs1, rs2 uint32) uint32  { return encR(0x33, rd, 0x3, rs1, rs2, 0x01) }
func DIV(rd, rs1, rs2 uint32) uint32    { return encR(0x33, rd, 0x4, rs1, rs2, 0x01) }
func DIVU(rd, rs1, rs2 uint32) uint32   { return encR(0x33, rd, 0x5, rs1, rs2, 0x01) }
func REM(rd, rs1, rs2 uint32) uint32    { return encR(0x33, rd, 0x6, rs1, rs2, 0x01) }
func REMU(rd, rs1, rs2 uint32) uint32   { return encR(0x33, rd, 0x7, rs1, rs2, 0x01) }

func ADDW(rd, rs1, rs2 uint32) uint32 { return encR(0x3b, rd, 0x0, rs1, rs2, 0x00) }
func SUBW(rd, rs1, rs2 uint32) uint32 { return encR(0x3b, rd, 0x0, rs1, rs2, 0x20) }
func SLLW(rd, rs1, rs2 uint32) uint32 { return encR(0x3b, rd, 0x1, rs1, rs2, 0x00) }
func SRLW(rd, rs1, rs2 uint32) uint32 { return encR(0x3b, rd, 0x5, rs1, rs2, 0x00) }
func SRAW(rd, rs1, rs2 uint32) uint32 { return encR(0x3b, rd, 0x5, rs1, rs2, 0x20) }

func MULW(rd, rs1, rs2 uint32) uint32  { return encR(0x3b, rd, 0x0, rs1, rs2, 0x01) }
func DIVW(rd, rs1, rs2 uint32) uint32  { return encR(0x3b, rd, 0x4, rs1, rs2, 0x01) }
func DIVUW(rd, rs1, rs2 uint32) uint32 { return encR(0x3b, rd, 0x5, rs1, rs2, 0x01) }
func REMW(rd, rs1, rs2 uint32) uint32  { return encR(0x3b, rd, 0x6, rs1, rs2, 0x01) }
func REMUW(rd, rs1, rs2 uint32) uint32 { return encR(0x3b, rd, 0x7, rs1, rs2, 0x01) }

func ECALL() uint32  { return 0x00000073 }
func EBREAK() uint32 { return 0x00100073 }
func MRET() uint32   { return 0x30200073 }
func WFI() uint32    { return 0x10500073 }

func CSRRW(rd, rs1, csr uint32) uint32 { return csr<<20 | rs1<<15 | 0x1<<12 | rd<<7 | 0x73 }
func CSRRS(rd, rs1, csr uint32) uint32 { return csr<<20 | rs1<<15 | 0x2<<12 | rd<<7 | 0x73 }
func CSRRC(rd, rs1, csr uint32) uint32 { return csr<<20 | rs1<<15 | 0x3<<12 | rd<<7 | 0x73 }
func CSRRWI(rd, zimm, csr uint32) uint32 {
	return csr<<20 | zimm&0x1f<<15 | 0x5<<12 | rd<<7 | 0x73
}

// Assemble packs instruction words into a little-endian flat binary.
func Assemble(words []uint32) []byte {
	bin := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(bin[4*i:], w)
	}
	return bin
}
