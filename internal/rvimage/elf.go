// Package rvimage loads a RISC-V ELF64 executable and exposes its loadable
// segments and entry point to the transpiler. Grounded on the host repo's
// ELF section/program-header layout (elf_writer.go, elf_sections.go),
// inverted from a writer into a reader: the struct field layout and
// constant names are the same, only the direction of data flow changed.
package rvimage

import (
	"encoding/binary"
	"fmt"
)

const (
	elfMagic   = 0x464C457F // "\x7fELF" little-endian
	ptLoad     = 1
	etExec     = 2
	etDyn      = 3
	emRiscv    = 243
	elfClass64 = 2
)

// Segment is one PT_LOAD program segment: bytes from the file mapped at
// VAddr in the guest address space. MemSize may exceed len(Bytes) (BSS);
// the difference is implicitly zero-filled.
type Segment struct {
	VAddr   uint64
	MemSize uint64
	Bytes   []byte
	Exec    bool
	Write   bool
}

// Image is a parsed RISC-V ELF64 executable.
type Image struct {
	Entry    uint64
	Segments []Segment
}

// Load parses data as an ELF64 RV64 executable.
func Load(data []byte) (*Image, error) {
	if len(data) < 64 {
		return nil, fmt.Errorf("rvimage: file too short for an ELF header")
	}
	if binary.LittleEndian.Uint32(data[0:4]) != elfMagic {
		return nil, fmt.Errorf("rvimage: missing ELF magic")
	}
	if data[4] != elfClass64 {
		return nil, fmt.Errorf("rvimage: only ELFCLASS64 is supported")
	}
	typ := binary.LittleEndian.Uint16(data[16:18])
	if typ != etExec && typ != etDyn {
		return nil, fmt.Errorf("rvimage: unsupported e_type %d", typ)
	}
	machine := binary.LittleEndian.Uint16(data[18:20])
	if machine != emRiscv {
		return nil, fmt.Errorf("rvimage: e_machine %d is not EM_RISCV", machine)
	}

	entry := binary.LittleEndian.Uint64(data[24:32])
	phoff := binary.LittleEndian.Uint64(data[32:40])
	phentsize := binary.LittleEndian.Uint16(data[54:56])
	phnum := binary.LittleEndian.Uint16(data[56:58])

	img := &Image{Entry: entry}
	for i := uint16(0); i < phnum; i++ {
		off := phoff + uint64(i)*uint64(phentsize)
		if off+56 > uint64(len(data)) {
			return nil, fmt.Errorf("rvimage: program header %d out of bounds", i)
		}
		ph := data[off : off+56]
		ptype := binary.LittleEndian.Uint32(ph[0:4])
		if ptype != ptLoad {
			continue
		}
		flags := binary.LittleEndian.Uint32(ph[4:8])
		fileOff := binary.LittleEndian.Uint64(ph[8:16])
		vaddr := binary.LittleEndian.Uint64(ph[16:24])
		filesz := binary.LittleEndian.Uint64(ph[32:40])
		memsz := binary.LittleEndian.Uint64(ph[40:48])

		if fileOff+filesz > uint64(len(data)) {
			return nil, fmt.Errorf("rvimage: segment data out of bounds at file offset %d", fileOff)
		}
		seg := Segment{
			VAddr:   vaddr,
			MemSize: memsz,
			Bytes:   append([]byte(nil), data[fileOff:fileOff+filesz]...),
			Exec:    flags&1 != 0,
			Write:   flags&2 != 0,
		}
		img.Segments = append(img.Segments, seg)
	}
	return img, nil
}

// ReadWord reads a little-endian 32-bit word at guest address addr. Returns
// an error if addr does not fall inside any loaded segment.
func (img *Image) ReadWord(addr uint64) (uint32, error) {
	b, err := img.readAt(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadByte reads a single byte at guest address addr.
func (img *Image) ReadByte(addr uint64) (byte, error) {
	b, err := img.readAt(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (img *Image) readAt(addr uint64, n uint64) ([]byte, error) {
	for _, seg := range img.Segments {
		if addr >= seg.VAddr && addr+n <= seg.VAddr+seg.MemSize {
			end := addr + n - seg.VAddr
			if end <= uint64(len(seg.Bytes)) {
				return seg.Bytes[addr-seg.VAddr : end], nil
			}
			// Inside MemSize but beyond FileSize: BSS, reads as zero.
			buf := make([]byte, n)
			if addr-seg.VAddr < uint64(len(seg.Bytes)) {
				copy(buf, seg.Bytes[addr-seg.VAddr:])
			}
			return buf, nil
		}
	}
	return nil, fmt.Errorf("rvimage: address %#x not mapped", addr)
}

// TextSegments returns the executable segments, in the order they appear in
// the program header table, which the CLI's buildRom iterates to find
// instructions.
func (img *Image) TextSegments() []Segment {
	var out []Segment
	for _, s := range img.Segments {
		if s.Exec {
			out = append(out, s)
		}
	}
	return out
}

// DataSegments returns the writable, non-executable segments whose initial
// contents the ROM synthesizer must copy into guest memory at boot.
func (img *Image) DataSegments() []Segment {
	var out []Segment
	for _, s := range img.Segments {
		if s.Write && !s.Exec {
			out = append(out, s)
		}
	}
	return out
}
