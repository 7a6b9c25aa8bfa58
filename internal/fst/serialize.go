package fst

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// magic and version identify the stable binary format of spec.md §6.3:
// little-endian, "ZFST" (4 bytes) · version:u16 · state_count:u32 ·
// alphabet_size:u32, then per state: is_final:u8 ·
// final_weight:f32 (present iff final) · arc_count:u32 ·
// arcs (in_label:u32, weight:f32, target:u32) sorted by in_label.
var magic = [4]byte{'Z', 'F', 'S', 'T'}

const version uint16 = 1

// Save writes f to path in the §6.3 binary format. alphabetSize is the
// vocabulary size the FST's labels are drawn from; it is recorded in
// the header. Read reads it back but neither checks it nor keeps it.
func Save(f *FST, alphabetSize int, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fst: create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := Write(f, alphabetSize, w); err != nil {
		return err
	}
	return w.Flush()
}

// Write encodes f to w in the §6.3 binary format.
func Write(f *FST, alphabetSize int, w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("fst: write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return fmt.Errorf("fst: write version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(f.States))); err != nil {
		return fmt.Errorf("fst: write state count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(alphabetSize)); err != nil {
		return fmt.Errorf("fst: write alphabet size: %w", err)
	}

	for _, s := range f.States {
		isFinal := uint8(0)
		if s.IsFinal {
			isFinal = 1
		}
		if err := binary.Write(w, binary.LittleEndian, isFinal); err != nil {
			return fmt.Errorf("fst: write is_final: %w", err)
		}
		if s.IsFinal {
			if err := binary.Write(w, binary.LittleEndian, s.FinalWeight); err != nil {
				return fmt.Errorf("fst: write final_weight: %w", err)
			}
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Arcs))); err != nil {
			return fmt.Errorf("fst: write arc_count: %w", err)
		}
		for _, a := range s.Arcs {
			if err := binary.Write(w, binary.LittleEndian, uint32(a.InLabel)); err != nil {
				return fmt.Errorf("fst: write in_label: %w", err)
			}
			if err := binary.Write(w, binary.LittleEndian, a.Weight); err != nil {
				return fmt.Errorf("fst: write weight: %w", err)
			}
			if err := binary.Write(w, binary.LittleEndian, uint32(a.Target)); err != nil {
				return fmt.Errorf("fst: write target: %w", err)
			}
		}
	}

	return nil
}

// Load reads an FST previously written by Save.
func Load(path string) (*FST, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fst: open %s: %w", path, err)
	}
	defer file.Close()

	return Read(bufio.NewReader(file))
}

// Read decodes an FST from r in the §6.3 binary format.
func Read(r io.Reader) (*FST, error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, fmt.Errorf("fst: read magic: %w", err)
	}
	if got != magic {
		return nil, fmt.Errorf("fst: bad magic %q, want %q", got, magic)
	}

	var ver uint16
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return nil, fmt.Errorf("fst: read version: %w", err)
	}
	if ver != version {
		return nil, fmt.Errorf("fst: unsupported version %d, want %d", ver, version)
	}

	var stateCount, alphabetSize uint32
	if err := binary.Read(r, binary.LittleEndian, &stateCount); err != nil {
		return nil, fmt.Errorf("fst: read state count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &alphabetSize); err != nil {
		return nil, fmt.Errorf("fst: read alphabet size: %w", err)
	}

	f := &FST{States: make([]State, stateCount)}

	for i := range f.States {
		var isFinal uint8
		if err := binary.Read(r, binary.LittleEndian, &isFinal); err != nil {
			return nil, fmt.Errorf("fst: read is_final: %w", err)
		}

		s := State{IsFinal: isFinal != 0}
		if s.IsFinal {
			if err := binary.Read(r, binary.LittleEndian, &s.FinalWeight); err != nil {
				return nil, fmt.Errorf("fst: read final_weight: %w", err)
			}
		}

		var arcCount uint32
		if err := binary.Read(r, binary.LittleEndian, &arcCount); err != nil {
			return nil, fmt.Errorf("fst: read arc_count: %w", err)
		}

		s.Arcs = make([]Arc, arcCount)
		for j := range s.Arcs {
			var inLabel, target uint32
			var weight float32

			if err := binary.Read(r, binary.LittleEndian, &inLabel); err != nil {
				return nil, fmt.Errorf("fst: read in_label: %w", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &weight); err != nil {
				return nil, fmt.Errorf("fst: read weight: %w", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &target); err != nil {
				return nil, fmt.Errorf("fst: read target: %w", err)
			}

			s.Arcs[j] = Arc{InLabel: int32(inLabel), Weight: weight, Target: int32(target)}
		}

		f.States[i] = s
	}

	return f, nil
}
