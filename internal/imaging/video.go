// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imaging

import (
	"encoding/binary"
	"errors"
)

// ErrNoVideoTrack is returned when a container has no track with a
// picture size.
var ErrNoVideoTrack = errors.New("no video track found")

// maxBoxDepth bounds how far VideoSize descends into nested boxes.
const maxBoxDepth = 8

// VideoSize returns the display size of the first video track of an
// ISO base media file (MP4, M4V, MOV). Only box headers and the track
// header are read.
func VideoSize(data []byte) (width, height int, err error) {
	w, h, found := walkBoxes(data, 0)
	if !found {
		return 0, 0, ErrNoVideoTrack
	}
	if int64(w)*int64(h) > MaxPixels {
		return 0, 0, errors.New("video frame too large")
	}
	return w, h, nil
}

// walkBoxes scans sibling boxes in b, descending into moov and trak, and
// returns the first non-zero tkhd size.
func walkBoxes(b []byte, depth int) (int, int, bool) {
	if depth > maxBoxDepth {
		return 0, 0, false
	}
	for len(b) >= 8 {
		size := uint64(binary.BigEndian.Uint32(b[0:4]))
		typ := string(b[4:8])
		header := uint64(8)
		switch size {
		case 0:
			size = uint64(len(b))
		case 1:
			if len(b) < 16 {
				return 0, 0, false
			}
			size = binary.BigEndian.Uint64(b[8:16])
			header = 16
		}
		if size < header || size > uint64(len(b)) {
			return 0, 0, false
		}
		body := b[header:size]

		switch typ {
		case "moov", "trak":
			if w, h, ok := walkBoxes(body, depth+1); ok {
				return w, h, true
			}
		case "tkhd":
			if w, h, ok := trackSize(body); ok {
				return w, h, true
			}
		}
		b = b[size:]
	}
	return 0, 0, false
}

// trackSize reads the 16.16 fixed-point width and height at the end of
// a tkhd body. Audio tracks carry zero and are skipped.
func trackSize(body []byte) (int, int, bool) {
	if len(body) < 4 {
		return 0, 0, false
	}
	// version(1) flags(3), then times, track id and duration: 20 bytes
	// in version 0 and 32 in version 1. Reserved, layer, group, volume
	// and the matrix take 52 more.
	offset := 4 + 20
	if body[0] == 1 {
		offset = 4 + 32
	}
	offset += 52
	if len(body) < offset+8 {
		return 0, 0, false
	}
	w := int(binary.BigEndian.Uint32(body[offset:]) >> 16)
	h := int(binary.BigEndian.Uint32(body[offset+4:]) >> 16)
	if w == 0 || h == 0 {
		return 0, 0, false
	}
	return w, h, true
}
