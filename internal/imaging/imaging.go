// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging reads image and video dimensions for upload metadata.
// Only headers are decoded.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxPixels caps the accepted image area to reject decompression bombs.
// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
const MaxPixels = 100_000_000

// ImageSize returns the width and height of an encoded image.
func ImageSize(data []byte) (width, height int, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return 0, 0, fmt.Errorf("%s image too large: %dx%d exceeds %d pixels", format, cfg.Width, cfg.Height, MaxPixels)
	}
	return cfg.Width, cfg.Height, nil
}
