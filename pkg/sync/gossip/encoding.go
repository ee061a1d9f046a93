package gossip

import (
	"encoding/binary"
	"io"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/unit"
)

// Wire layout:
//   dagInfo:   nProc (uint16), then per process a count (uint16) followed by that many
//              (hash [32]byte, height uint32) pairs.
//   requests:  nProc (uint16), then per process a count (uint16) followed by that many
//              hash [32]byte values.
//   unit batch: nLayers (uint16), then per layer a count (uint16) followed by that many
//              units encoded back to back with pkg/unit.Encode — self-delimiting, so no
//              further framing is needed between units.

func writeUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func encodeUnitInfo(w io.Writer, ui unitInfo) error {
	if _, err := w.Write(ui.hash[:]); err != nil {
		return err
	}
	return writeUint32(w, ui.height)
}

func decodeUnitInfo(r io.Reader) (unitInfo, error) {
	var h gomel.Hash
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return unitInfo{}, err
	}
	height, err := readUint32(r)
	if err != nil {
		return unitInfo{}, err
	}
	return unitInfo{hash: &h, height: height}, nil
}

func encodeProcessInfo(w io.Writer, pi processInfo) error {
	if err := writeUint16(w, uint16(len(pi))); err != nil {
		return err
	}
	for _, ui := range pi {
		if err := encodeUnitInfo(w, ui); err != nil {
			return err
		}
	}
	return nil
}

func decodeProcessInfo(r io.Reader) (processInfo, error) {
	n, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	pi := make(processInfo, n)
	for i := range pi {
		ui, err := decodeUnitInfo(r)
		if err != nil {
			return nil, err
		}
		pi[i] = ui
	}
	return pi, nil
}

func encodeDagInfo(w io.Writer, info dagInfo) error {
	if err := writeUint16(w, uint16(len(info))); err != nil {
		return err
	}
	for _, pi := range info {
		if err := encodeProcessInfo(w, pi); err != nil {
			return err
		}
	}
	return nil
}

func decodeDagInfo(r io.Reader) (dagInfo, error) {
	nProc, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	info := make(dagInfo, nProc)
	for i := range info {
		pi, err := decodeProcessInfo(r)
		if err != nil {
			return nil, err
		}
		info[i] = pi
	}
	return info, nil
}

func encodeProcessRequests(w io.Writer, pr processRequests) error {
	if err := writeUint16(w, uint16(len(pr))); err != nil {
		return err
	}
	for _, h := range pr {
		if _, err := w.Write(h[:]); err != nil {
			return err
		}
	}
	return nil
}

func decodeProcessRequests(r io.Reader) (processRequests, error) {
	n, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	pr := make(processRequests, n)
	for i := range pr {
		var h gomel.Hash
		if _, err := io.ReadFull(r, h[:]); err != nil {
			return nil, err
		}
		pr[i] = &h
	}
	return pr, nil
}

func encodeRequests(w io.Writer, reqs requests) error {
	if err := writeUint16(w, uint16(len(reqs))); err != nil {
		return err
	}
	for _, pr := range reqs {
		if err := encodeProcessRequests(w, pr); err != nil {
			return err
		}
	}
	return nil
}

func decodeRequests(r io.Reader) (requests, error) {
	nProc, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	reqs := make(requests, nProc)
	for i := range reqs {
		pr, err := decodeProcessRequests(r)
		if err != nil {
			return nil, err
		}
		reqs[i] = pr
	}
	return reqs, nil
}

func encodeLayer(w io.Writer, layer []gomel.Unit) error {
	if err := writeUint16(w, uint16(len(layer))); err != nil {
		return err
	}
	for _, u := range layer {
		if err := unit.Encode(u, w); err != nil {
			return err
		}
	}
	return nil
}

func decodeLayer(r io.Reader) ([]gomel.Preunit, error) {
	n, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	layer := make([]gomel.Preunit, n)
	for i := range layer {
		pu, err := unit.Decode(r)
		if err != nil {
			return nil, err
		}
		layer[i] = pu
	}
	return layer, nil
}

func encodeUnits(w io.Writer, layers [][]gomel.Unit) error {
	if err := writeUint16(w, uint16(len(layers))); err != nil {
		return err
	}
	for _, layer := range layers {
		if err := encodeLayer(w, layer); err != nil {
			return err
		}
	}
	return nil
}

func decodeUnits(r io.Reader) ([][]gomel.Preunit, error) {
	nLayers, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	layers := make([][]gomel.Preunit, nLayers)
	for i := range layers {
		layer, err := decodeLayer(r)
		if err != nil {
			return nil, err
		}
		layers[i] = layer
	}
	return layers, nil
}
