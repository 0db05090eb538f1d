package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// HKDF info strings. Changing one changes every derived identifier.
const (
	deviceIDInfo = "deviceadmin/device-id/v1"
	deviceIDSize = 16
)

// ErrEmptyFingerprint is returned when there is nothing to derive from.
var ErrEmptyFingerprint = errors.New("empty device fingerprint")

// DeriveDeviceID derives an opaque device identifier from a hardware
// fingerprint using HKDF-SHA256. Surrounding whitespace and letter case in the
// fingerprint are ignored so that the same hardware id read through different
// platform tools maps to the same identifier.
func DeriveDeviceID(fingerprint string) (string, error) {
	fp := strings.ToLower(strings.TrimSpace(fingerprint))
	if fp == "" {
		return "", ErrEmptyFingerprint
	}
	h := hkdf.New(sha256.New, []byte(fp), nil, []byte(deviceIDInfo))
	out := make([]byte, deviceIDSize)
	if _, err := io.ReadFull(h, out); err != nil {
		return "", err
	}
	return "d--" + hex.EncodeToString(out), nil
}

// MustRandom returns n random bytes or panics.
func MustRandom(n int) []byte {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic(err)
	}
	return b
}
