package emu

import "math/bits"

// Immediate decoders for the RISC-V instruction formats. Each result is
// sign-extended to 64 bits.

func immI(inst uint32) uint64 {
	return uint64(int64(int32(inst)) >> 20)
}

func immS(inst uint32) uint64 {
	return uint64(int64(int32(inst&0xfe000000))>>20) | uint64((inst>>7)&0x1f)
}

func immB(inst uint32) uint64 {
	return uint64(int64(int32(inst&0x80000000))>>19) |
		uint64((inst&0x80)<<4) |
		uint64((inst>>20)&0x7e0) |
		uint64((inst>>7)&0x1e)
}

func immU(inst uint32) uint64 {
	return uint64(int64(int32(inst & 0xfffff000)))
}

func immJ(inst uint32) uint64 {
	return uint64(int64(int32(inst&0x80000000))>>11) |
		uint64(inst&0xff000) |
		uint64((inst>>9)&0x800) |
		uint64((inst>>20)&0x7fe)
}

// execute decodes and executes one instruction. The program counter has
// already been advanced past it, so pc-relative computation uses c.PC-4.
func (c *CPU) execute(inst uint32) Exception {
	opcode := inst & 0x7f
	rd := (inst >> 7) & 0x1f
	rs1 := (inst >> 15) & 0x1f
	rs2 := (inst >> 20) & 0x1f
	funct3 := (inst >> 12) & 0x7
	funct7 := (inst >> 25) & 0x7f
	pc := c.PC - 4

	switch opcode {
	case 0x37: // lui
		c.XRegs.Write(rd, immU(inst))

	case 0x17: // auipc
		c.XRegs.Write(rd, pc+immU(inst))

	case 0x6f: // jal
		c.XRegs.Write(rd, pc+4)
		c.PC = pc + immJ(inst)

	case 0x67: // jalr
		if funct3 != 0 {
			return ExcIllegalInstruction
		}
		target := (c.XRegs.Read(rs1) + immI(inst)) &^ 1
		c.XRegs.Write(rd, pc+4)
		c.PC = target

	case 0x63: // branches
		a, b := c.XRegs.Read(rs1), c.XRegs.Read(rs2)
		var taken bool
		switch funct3 {
		case 0x0: // beq
			taken = a == b
		case 0x1: // bne
			taken = a != b
		case 0x4: // blt
			taken = int64(a) < int64(b)
		case 0x5: // bge
			taken = int64(a) >= int64(b)
		case 0x6: // bltu
			taken = a < b
		case 0x7: // bgeu
			taken = a >= b
		default:
			return ExcIllegalInstruction
		}
		if taken {
			c.PC = pc + immB(inst)
		}

	case 0x03: // loads
		addr := c.XRegs.Read(rs1) + immI(inst)
		switch funct3 {
		case 0x0: // lb
			v, exc := c.Bus.Read(addr, 8)
			if exc != ExcNone {
				return exc
			}
			c.XRegs.Write(rd, uint64(int64(int8(v))))
		case 0x1: // lh
			v, exc := c.Bus.Read(addr, 16)
			if exc != ExcNone {
				return exc
			}
			c.XRegs.Write(rd, uint64(int64(int16(v))))
		case 0x2: // lw
			v, exc := c.Bus.Read(addr, 32)
			if exc != ExcNone {
				return exc
			}
			c.XRegs.Write(rd, uint64(int64(int32(v))))
		case 0x3: // ld
			v, exc := c.Bus.Read(addr, 64)
			if exc != ExcNone {
				return exc
			}
			c.XRegs.Write(rd, v)
		case 0x4: // lbu
			v, exc := c.Bus.Read(addr, 8)
			if exc != ExcNone {
				return exc
			}
			c.XRegs.Write(rd, v)
		case 0x5: // lhu
			v, exc := c.Bus.Read(addr, 16)
			if exc != ExcNone {
				return exc
			}
			c.XRegs.Write(rd, v)
		case 0x6: // lwu
			v, exc := c.Bus.Read(addr, 32)
			if exc != ExcNone {
				return exc
			}
			c.XRegs.Write(rd, v)
		default:
			return ExcIllegalInstruction
		}

	case 0x23: // stores
		addr := c.XRegs.Read(rs1) + immS(inst)
		v := c.XRegs.Read(rs2)
		switch funct3 {
		case 0x0: // sb
			return c.Bus.Write(addr, 8, v)
		case 0x1: // sh
			return c.Bus.Write(addr, 16, v)
		case 0x2: // sw
			return c.Bus.Write(addr, 32, v)
		case 0x3: // sd
			return c.Bus.Write(addr, 64, v)
		default:
			return ExcIllegalInstruction
		}

	case 0x13: // op-imm
		a := c.XRegs.Read(rs1)
		imm := immI(inst)
		switch funct3 {
		case 0x0: // addi
			c.XRegs.Write(rd, a+imm)
		case 0x1: // slli
			if funct7>>1 != 0 {
				return ExcIllegalInstruction
			}
			c.XRegs.Write(rd, a<<((inst>>20)&0x3f))
		case 0x2: // slti
			c.XRegs.Write(rd, boolToReg(int64(a) < int64(imm)))
		case 0x3: // sltiu
			c.XRegs.Write(rd, boolToReg(a < imm))
		case 0x4: // xori
			c.XRegs.Write(rd, a^imm)
		case 0x5: // srli/srai
			shamt := (inst >> 20) & 0x3f
			switch funct7 >> 1 {
			case 0x00: // srli
				c.XRegs.Write(rd, a>>shamt)
			case 0x10: // srai
				c.XRegs.Write(rd, uint64(int64(a)>>shamt))
			default:
				return ExcIllegalInstruction
			}
		case 0x6: // ori
			c.XRegs.Write(rd, a|imm)
		case 0x7: // andi
			c.XRegs.Write(rd, a&imm)
		}

	case 0x1b: // op-imm-32
		a := c.XRegs.Read(rs1)
		switch funct3 {
		case 0x0: // addiw
			c.XRegs.Write(rd, uint64(int64(int32(a+immI(inst)))))
		case 0x1: // slliw
			if funct7 != 0 {
				return ExcIllegalInstruction
			}
			c.XRegs.Write(rd, uint64(int64(int32(a)<<(rs2&0x1f))))
		case 0x5: // srliw/sraiw
			shamt := rs2 & 0x1f
			switch funct7 {
			case 0x00: // srliw
				c.XRegs.Write(rd, uint64(int64(int32(uint32(a)>>shamt))))
			case 0x20: // sraiw
				c.XRegs.Write(rd, uint64(int64(int32(a)>>shamt)))
			default:
				return ExcIllegalInstruction
			}
		default:
			return ExcIllegalInstruction
		}

	case 0x33: // op
		a, b := c.XRegs.Read(rs1), c.XRegs.Read(rs2)
		switch funct7<<3 | funct3 {
		case 0x00<<3 | 0x0: // add
			c.XRegs.Write(rd, a+b)
		case 0x20<<3 | 0x0: // sub
			c.XRegs.Write(rd, a-b)
		case 0x00<<3 | 0x1: // sll
			c.XRegs.Write(rd, a<<(b&0x3f))
		case 0x00<<3 | 0x2: // slt
			c.XRegs.Write(rd, boolToReg(int64(a) < int64(b)))
		case 0x00<<3 | 0x3: // sltu
			c.XRegs.Write(rd, boolToReg(a < b))
		case 0x00<<3 | 0x4: // xor
			c.XRegs.Write(rd, a^b)
		case 0x00<<3 | 0x5: // srl
			c.XRegs.Write(rd, a>>(b&0x3f))
		case 0x20<<3 | 0x5: // sra
			c.XRegs.Write(rd, uint64(int64(a)>>(b&0x3f)))
		case 0x00<<3 | 0x6: // or
			c.XRegs.Write(rd, a|b)
		case 0x00<<3 | 0x7: // and
			c.XRegs.Write(rd, a&b)
		case 0x01<<3 | 0x0: // mul
			c.XRegs.Write(rd, a*b)
		case 0x01<<3 | 0x1: // mulh
			hi, _ := bits.Mul64(a, b)
			if int64(a) < 0 {
				hi -= b
			}
			if int64(b) < 0 {
				hi -= a
			}
			c.XRegs.Write(rd, hi)
		case 0x01<<3 | 0x2: // mulhsu
			hi, _ := bits.Mul64(a, b)
			if int64(a) < 0 {
				hi -= b
			}
			c.XRegs.Write(rd, hi)
		case 0x01<<3 | 0x3: // mulhu
			hi, _ := bits.Mul64(a, b)
			c.XRegs.Write(rd, hi)
		case 0x01<<3 | 0x4: // div
			c.XRegs.Write(rd, div64(a, b))
		case 0x01<<3 | 0x5: // divu
			if b == 0 {
				c.XRegs.Write(rd, ^uint64(0))
			} else {
				c.XRegs.Write(rd, a/b)
			}
		case 0x01<<3 | 0x6: // rem
			c.XRegs.Write(rd, rem64(a, b))
		case 0x01<<3 | 0x7: // remu
			if b == 0 {
				c.XRegs.Write(rd, a)
			} else {
				c.XRegs.Write(rd, a%b)
			}
		default:
			return ExcIllegalInstruction
		}

	case 0x3b: // op-32
		a, b := c.XRegs.Read(rs1), c.XRegs.Read(rs2)
		switch funct7<<3 | funct3 {
		case 0x00<<3 | 0x0: // addw
			c.XRegs.Write(rd, uint64(int64(int32(a+b))))
		case 0x20<<3 | 0x0: // subw
			c.XRegs.Write(rd, uint64(int64(int32(a-b))))
		case 0x00<<3 | 0x1: // sllw
			c.XRegs.Write(rd, uint64(int64(int32(a)<<(b&0x1f))))
		case 0x00<<3 | 0x5: // srlw
			c.XRegs.Write(rd, uint64(int64(int32(uint32(a)>>(b&0x1f)))))
		case 0x20<<3 | 0x5: // sraw
			c.XRegs.Write(rd, uint64(int64(int32(a)>>(b&0x1f))))
		case 0x01<<3 | 0x0: // mulw
			c.XRegs.Write(rd, uint64(int64(int32(a)*int32(b))))
		case 0x01<<3 | 0x4: // divw
			c.XRegs.Write(rd, div32(int32(a), int32(b)))
		case 0x01<<3 | 0x5: // divuw
			if uint32(b) == 0 {
				c.XRegs.Write(rd, ^uint64(0))
			} else {
				c.XRegs.Write(rd, uint64(int64(int32(uint32(a)/uint32(b)))))
			}
		case 0x01<<3 | 0x6: // remw
			c.XRegs.Write(rd, rem32(int32(a), int32(b)))
		case 0x01<<3 | 0x7: // remuw
			if uint32(b) == 0 {
				c.XRegs.Write(rd, uint64(int64(int32(a))))
			} else {
				c.XRegs.Write(rd, uint64(int64(int32(uint32(a)%uint32(b)))))
			}
		default:
			return ExcIllegalInstruction
		}

	case 0x0f: // fence/fence.i: no-op, the hart has no caches to order
		return ExcNone

	case 0x73: // system
		if funct3 == 0 {
			switch inst >> 20 {
			case 0x000: // ecall
				switch c.Mode {
				case Machine:
					return ExcEnvironmentCallFromMMode
				case Supervisor:
					return ExcEnvironmentCallFromSMode
				default:
					return ExcEnvironmentCallFromUMode
				}
			case 0x001: // ebreak
				return ExcBreakpoint
			case 0x302: // mret
				c.PC = c.CSR.Read(MEPC)
				c.Mode = Mode(c.CSR.Read(MSTATUS) >> mstatusMPPLo & 0b11)
				c.CSR.WriteBit(MSTATUS, mstatusMIE, c.CSR.ReadBit(MSTATUS, mstatusMPIE))
				c.CSR.WriteBit(MSTATUS, mstatusMPIE, 1)
				c.CSR.WriteBits(MSTATUS, mstatusMPPLo, mstatusMPPHi, 0)
			case 0x105: // wfi
				c.wfi = true
			default:
				return ExcIllegalInstruction
			}
			return ExcNone
		}

		csr := inst >> 20
		switch funct3 {
		case 0x1: // csrrw
			t := c.CSR.Read(csr)
			c.CSR.Write(csr, c.XRegs.Read(rs1))
			c.XRegs.Write(rd, t)
		case 0x2: // csrrs
			t := c.CSR.Read(csr)
			c.CSR.Write(csr, t|c.XRegs.Read(rs1))
			c.XRegs.Write(rd, t)
		case 0x3: // csrrc
			t := c.CSR.Read(csr)
			c.CSR.Write(csr, t&^c.XRegs.Read(rs1))
			c.XRegs.Write(rd, t)
		case 0x5: // csrrwi
			t := c.CSR.Read(csr)
			c.CSR.Write(csr, uint64(rs1))
			c.XRegs.Write(rd, t)
		case 0x6: // csrrsi
			t := c.CSR.Read(csr)
			c.CSR.Write(csr, t|uint64(rs1))
			c.XRegs.Write(rd, t)
		case 0x7: // csrrci
			t := c.CSR.Read(csr)
			c.CSR.Write(csr, t&^uint64(rs1))
			c.XRegs.Write(rd, t)
		default:
			return ExcIllegalInstruction
		}

	default:
		return ExcIllegalInstruction
	}
	return ExcNone
}

func boolToReg(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// div64 implements the RISC-V signed division semantics: division by zero
// yields -1 and the MinInt64/-1 overflow yields the dividend.
func div64(a, b uint64) uint64 {
	sa, sb := int64(a), int64(b)
	switch {
	case sb == 0:
		return ^uint64(0)
	case sa == -1<<63 && sb == -1:
		return a
	default:
		return uint64(sa / sb)
	}
}

func rem64(a, b uint64) uint64 {
	sa, sb := int64(a), int64(b)
	switch {
	case sb == 0:
		return a
	case sa == -1<<63 && sb == -1:
		return 0
	default:
		return uint64(sa % sb)
	}
}

func div32(a, b int32) uint64 {
	switch {
	case b == 0:
		return ^uint64(0)
	case a == -1<<31 && b == -1:
		return uint64(int64(a))
	default:
		return uint64(int64(a / b))
	}
}

func rem32(a, b int32) uint64 {
	switch {
	case b == 0:
		return uint64(int64(a))
	case a == -1<<31 && b == -1:
		return 0
	default:
		return uint64(int64(a % b))
	}
}
