package vm

import (
	"bytes"
	"encoding/gob"
)

type cpuState struct {
	A, F, B, C, D, E, H, L byte
	SP, PC                 uint16
	IME                    bool
	Bus                    []byte
}

func encodeState(st cpuState) []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(st)
	return buf.Bytes()
}

func decodeState(data []byte) (cpuState, error) {
	var st cpuState
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st)
	return st, err
}
