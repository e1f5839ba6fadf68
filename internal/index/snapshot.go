package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"time"
)

// Snapshot format (versioned, little-endian):
// [magic 'FIQX'] [u32 version] [s64 builtAtUnixNano]
// [u32 rootLen] [root bytes]
// [u32 numFiles] [u32 namesLen] [name bytes]
// [numFiles x u32 offsets] [numFiles x u16 lengths]
// [u32 numTrigrams] then per trigram: [3 bytes] [u32 count] [count x u32 ids]

const snapshotVersion = 1

var snapshotMagic = [4]byte{'F', 'I', 'Q', 'X'}

var errCorruptSnapshot = errors.New("corrupt index snapshot")

// SaveSnapshot writes ix to path. Callers treat failure as best-effort;
// a partial file is rejected by the next load.
func SaveSnapshot(path string, ix *Index) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	u16 := func(v uint16) { _ = binary.Write(w, binary.LittleEndian, v) }
	u32 := func(v uint32) { _ = binary.Write(w, binary.LittleEndian, v) }
	s64 := func(v int64) { _ = binary.Write(w, binary.LittleEndian, v) }

	w.Write(snapshotMagic[:])
	u32(snapshotVersion)
	s64(ix.builtAt.UnixNano())

	u32(uint32(len(ix.root)))
	w.WriteString(ix.root)

	u32(uint32(len(ix.spans)))
	u32(uint32(len(ix.names)))
	w.Write(ix.names)
	for _, s := range ix.spans {
		u32(s.off)
	}
	for _, s := range ix.spans {
		u16(s.length)
	}

	u32(uint32(len(ix.posting)))
	for t, ids := range ix.posting {
		w.Write(t[:])
		u32(uint32(len(ids)))
		_ = binary.Write(w, binary.LittleEndian, ids)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// LoadSnapshot reads an index persisted with SaveSnapshot. Any structural
// problem (bad magic, unknown version, out-of-range counts or IDs) is an
// error; the cache layer treats every error as a miss and rebuilds.
func LoadSnapshot(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	// No length field may claim more bytes than the file holds.
	limit := uint64(info.Size())

	r := bufio.NewReader(f)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if magic != snapshotMagic {
		return nil, errCorruptSnapshot
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != snapshotVersion {
		return nil, errCorruptSnapshot
	}

	var builtNano int64
	if err := binary.Read(r, binary.LittleEndian, &builtNano); err != nil {
		return nil, err
	}

	var rootLen uint32
	if err := binary.Read(r, binary.LittleEndian, &rootLen); err != nil {
		return nil, err
	}
	if uint64(rootLen) > limit {
		return nil, errCorruptSnapshot
	}
	rootBytes := make([]byte, rootLen)
	if _, err := io.ReadFull(r, rootBytes); err != nil {
		return nil, err
	}

	var numFiles, namesLen uint32
	if err := binary.Read(r, binary.LittleEndian, &numFiles); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &namesLen); err != nil {
		return nil, err
	}
	if uint64(namesLen) > limit || uint64(numFiles)*6 > limit {
		return nil, errCorruptSnapshot
	}

	ix := &Index{
		root:    string(rootBytes),
		builtAt: time.Unix(0, builtNano),
		names:   make([]byte, namesLen),
		spans:   make([]span, numFiles),
		posting: make(map[trigram][]uint32),
	}
	if _, err := io.ReadFull(r, ix.names); err != nil {
		return nil, err
	}

	offs := make([]uint32, numFiles)
	if err := binary.Read(r, binary.LittleEndian, offs); err != nil {
		return nil, err
	}
	lens := make([]uint16, numFiles)
	if err := binary.Read(r, binary.LittleEndian, lens); err != nil {
		return nil, err
	}
	for i := range ix.spans {
		if uint64(offs[i])+uint64(lens[i]) > uint64(namesLen) {
			return nil, errCorruptSnapshot
		}
		ix.spans[i] = span{off: offs[i], length: lens[i]}
	}

	var numTrigrams uint32
	if err := binary.Read(r, binary.LittleEndian, &numTrigrams); err != nil {
		return nil, err
	}
	for n := uint32(0); n < numTrigrams; n++ {
		var t trigram
		if _, err := io.ReadFull(r, t[:]); err != nil {
			return nil, err
		}
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, err
		}
		if uint64(count)*4 > limit {
			return nil, errCorruptSnapshot
		}
		ids := make([]uint32, count)
		if err := binary.Read(r, binary.LittleEndian, ids); err != nil {
			return nil, err
		}
		for _, id := range ids {
			if id >= numFiles {
				return nil, errCorruptSnapshot
			}
		}
		ix.posting[t] = ids
	}

	return ix, nil
}
