// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"encoding/base64"
	"fmt"

	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
)

// TOTPEnrollment is a freshly generated TOTP secret plus its QR code.
type TOTPEnrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QR     string `json:"qr"` // base64 PNG
}

// NewTOTP generates a TOTP secret for the given account.
func NewTOTP(account string) (*TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Featherpress",
		AccountName: account,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	return &TOTPEnrollment{
		Secret: key.Secret(),
		URL:    key.URL(),
		QR:     base64.StdEncoding.EncodeToString(png),
	}, nil
}

// ValidateTOTP checks a code against a secret.
func ValidateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
