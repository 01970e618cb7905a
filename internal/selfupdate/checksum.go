// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrChecksumMismatch indicates the computed SHA256 hash does not match the expected hash.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumError provides details about a checksum verification failure.
// It wraps ErrChecksumMismatch so callers can use errors.Is for classification.
type ChecksumError struct {
	Filename string
	Expected string
	Got      string
}

// Error returns a human-readable description of the checksum mismatch,
// showing both expected and actual hash values for debugging.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s\nExpected: %s\nGot:      %s", e.Filename, e.Expected, e.Got)
}

// Unwrap returns ErrChecksumMismatch so callers can use errors.Is.
func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// VerifyFile computes the SHA256 hash of the file at path and compares it with
// expectedHash. Returns nil if the hashes match (case-insensitive comparison),
// or a *ChecksumError wrapping ErrChecksumMismatch if they differ.
func VerifyFile(path, expectedHash string) error {
	got, err := ComputeFileHash(path)
	if err != nil {
		return err
	}

	if !strings.EqualFold(got, expectedHash) {
		return &ChecksumError{
			Filename: path,
			Expected: strings.ToLower(expectedHash),
			Got:      got,
		}
	}

	return nil
}

// ComputeFileHash computes and returns the lowercase hex-encoded SHA256 digest
// of the file at path. It streams the file through the hash function to avoid
// loading the entire file into memory.
func ComputeFileHash(path string) (_ string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		// Read-only file handle; close errors are exotic (NFS edge cases).
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
