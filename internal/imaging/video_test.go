package imaging

import (
	"encoding/binary"
	"errors"
	"testing"
)

// box encodes one ISO BMFF box.
func box(typ string, body ...[]byte) []byte {
	n := 8
	for _, b := range body {
		n += len(b)
	}
	out := make([]byte, 8, n)
	binary.BigEndian.PutUint32(out, uint32(n))
	copy(out[4:], typ)
	for _, b := range body {
		out = append(out, b...)
	}
	return out
}

// tkhd encodes a track header of the given version and size.
func tkhd(version byte, width, height uint32) []byte {
	times := 20
	if version == 1 {
		times = 32
	}
	body := make([]byte, 4+times+52+8)
	body[0] = version
	off := 4 + times + 52
	binary.BigEndian.PutUint32(body[off:], width<<16)
	binary.BigEndian.PutUint32(body[off+4:], height<<16)
	return box("tkhd", body)
}

func TestVideoSize(t *testing.T) {
	ftyp := box("ftyp", []byte("isom\x00\x00\x02\x00isomiso2mp41"))
	mvhd := box("mvhd", make([]byte, 100))
	audio := box("trak", tkhd(0, 0, 0), box("mdia"))

	tests := []struct {
		name  string
		data  []byte
		wantW int
		wantH int
	}{
		{"version 0", append(ftyp, box("moov", mvhd, box("trak", tkhd(0, 1920, 1080)))...), 1920, 1080},
		{"version 1", append(ftyp, box("moov", box("trak", tkhd(1, 720, 1280)))...), 720, 1280},
		{"audio track first", append(ftyp, box("moov", audio, box("trak", tkhd(0, 640, 360)))...), 640, 360},
		{"mdat before moov", append(append(ftyp, box("mdat", make([]byte, 64))...), box("moov", box("trak", tkhd(0, 320, 240)))...), 320, 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := VideoSize(tt.data)
			if err != nil {
				t.Fatalf("VideoSize: %v", err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestVideoSizeRejects(t *testing.T) {
	truncated := box("moov", box("trak", tkhd(0, 1920, 1080)))
	truncated = truncated[:len(truncated)-10]

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a container", []byte("definitely not an mp4 file")},
		{"audio only", box("moov", box("trak", tkhd(0, 0, 0)))},
		{"truncated", truncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := VideoSize(tt.data); !errors.Is(err, ErrNoVideoTrack) {
				t.Errorf("err = %v, want ErrNoVideoTrack", err)
			}
		})
	}
}
