package chgraph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

const (
	magicBytes = "CHROUTE1"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 100_000_000
)

// fileHeader is the binary snapshot header.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

// WriteBinary serializes a Store's GraphData to a binary file: a header,
// the rank array, and the flattened edge list, trailed by a CRC32 of
// everything that precedes it. Writes to a temp file and renames into
// place so a crash mid-write never leaves a truncated snapshot at path.
func WriteBinary(path string, s *Store) error {
	data := s.GraphData()

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	cw := &crc32Writer{w: f, hash: crc32.NewIEEE()}

	hdr := fileHeader{
		Version:  version,
		NumNodes: uint32(len(data.Ranks)),
		NumEdges: uint32(len(data.Edges)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range data.Ranks {
		if err := binary.Write(cw, binary.LittleEndian, r); err != nil {
			return fmt.Errorf("write rank: %w", err)
		}
	}
	for _, e := range data.Edges {
		if err := writeEdgeRecord(cw, e); err != nil {
			return fmt.Errorf("write edge: %w", err)
		}
	}

	checksum := cw.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write crc32: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary deserializes a binary snapshot written by WriteBinary and
// reconstructs a query-ready Store via LoadGraphData.
func ReadBinary(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	cr := &crc32Reader{r: f, hash: crc32.NewIEEE()}

	var hdr fileHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	data := GraphData{
		Ranks: make([]int32, hdr.NumNodes),
		Edges: make([]EdgeRecord, hdr.NumEdges),
	}
	for i := range data.Ranks {
		if err := binary.Read(cr, binary.LittleEndian, &data.Ranks[i]); err != nil {
			return nil, fmt.Errorf("read rank %d: %w", i, err)
		}
	}
	for i := range data.Edges {
		rec, err := readEdgeRecord(cr)
		if err != nil {
			return nil, fmt.Errorf("read edge %d: %w", i, err)
		}
		data.Edges[i] = rec
	}

	expectedCRC := cr.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read crc32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("crc32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	return LoadGraphData(data)
}

func writeEdgeRecord(w io.Writer, e EdgeRecord) error {
	fields := []any{e.From, e.To, e.Weight, e.IsShortcut, e.Via}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func readEdgeRecord(r io.Reader) (EdgeRecord, error) {
	var e EdgeRecord
	for _, f := range []any{&e.From, &e.To, &e.Weight, &e.IsShortcut, &e.Via} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return EdgeRecord{}, err
		}
	}
	return e, nil
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
