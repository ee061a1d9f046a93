package unit

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// Wire layout of an encoded preunit, all integers little-endian:
//  1. Creator id, 2 bytes.
//  2. Height, 4 bytes.
//  3. Signature, 64 bytes.
//  4. Number of processes (crown length), 2 bytes.
//  5. Crown heights, 4 bytes each, MaxUint32 standing for a missing parent.
//  6. Crown control hash, 32 bytes.
//  7. Size of the unit data, 4 bytes, followed by that much data.
//  8. Size of the random source data, 4 bytes, followed by that much data.

// Encode writes the wire representation of a unit or preunit to w. Only the fields common to
// both (gomel.BaseUnit) are read, so a gomel.Unit already in a dag can be encoded directly,
// without first turning it back into a preunit.
func Encode(pu gomel.BaseUnit, w io.Writer) error {
	heights := pu.View().Heights
	var head bytes.Buffer
	head.Grow(2 + 4 + 64 + 2 + 4*len(heights) + gomel.HashLength)

	writeUint16(&head, pu.Creator())
	writeUint32(&head, uint32(pu.Height()))
	head.Write(pu.Signature())
	writeUint16(&head, uint16(len(heights)))
	for _, h := range heights {
		if h < 0 {
			writeUint32(&head, math.MaxUint32)
		} else {
			writeUint32(&head, uint32(h))
		}
	}
	head.Write(pu.View().ControlHash[:])
	if _, err := w.Write(head.Bytes()); err != nil {
		return err
	}

	if err := writeChunk(w, pu.Data()); err != nil {
		return err
	}
	return writeChunk(w, pu.RandomSourceData())
}

// Decode reads a preunit previously written by Encode from r.
func Decode(r io.Reader) (gomel.Preunit, error) {
	creator, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	height32, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	signature := make([]byte, 64)
	if _, err := io.ReadFull(r, signature); err != nil {
		return nil, err
	}
	nProc, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	heights := make([]int, nProc)
	for i := range heights {
		h, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		if h == math.MaxUint32 {
			heights[i] = -1
		} else {
			heights[i] = int(h)
		}
	}
	var controlHash gomel.Hash
	if _, err := io.ReadFull(r, controlHash[:]); err != nil {
		return nil, err
	}
	data, err := readChunk(r)
	if err != nil {
		return nil, err
	}
	rsData, err := readChunk(r)
	if err != nil {
		return nil, err
	}

	view := gomel.NewCrown(heights, &controlHash)
	pu := &preunit{
		creator:          creator,
		height:           int(height32),
		view:             view,
		signature:        signature,
		data:             data,
		randomSourceData: rsData,
	}
	pu.hash = *gomel.ComputeHash(creator, pu.height, view, data, rsData)
	return pu, nil
}

// EncodeToBytes encodes a unit or preunit to a freshly allocated byte slice.
func EncodeToBytes(pu gomel.BaseUnit) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(pu, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeFromBytes decodes a preunit previously produced by EncodeToBytes.
func DecodeFromBytes(data []byte) (gomel.Preunit, error) {
	return Decode(bytes.NewReader(data))
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeChunk(w io.Writer, data []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	_, err := w.Write(data)
	return err
}

func readChunk(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
