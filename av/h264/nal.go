// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

// Nal is an immutable descriptor for one NAL unit found in an Annex B
// byte stream. It owns no bytes; StartOff addresses the header byte and
// EndOff is the exclusive end of the NAL (the offset of the next start
// code, or of end-of-file). Callers read the referenced bytes from the
// same Byte Source the scanner was built over.
type Nal struct {
	Header   NalHeader
	StartOff uint64
	EndOff   uint64
}

// Size is the number of bytes the NAL occupies, header byte included.
func (n Nal) Size() uint64 {
	return n.EndOff - n.StartOff
}

// PayloadLen is the number of payload bytes, excluding the header byte.
func (n Nal) PayloadLen() uint64 {
	return n.Size() - 1
}
