package selfupdate

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// checksumsAsset is the sha256sum manifest published next to release assets.
const checksumsAsset = "checksums.txt"

// ErrChecksumMismatch is wrapped by every *ChecksumError.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumError reports a downloaded asset whose digest differs from the manifest.
type ChecksumError struct {
	Asset    string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Asset, e.Expected, e.Got)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// parseChecksums reads "<sha256>  <file>" lines, as written by sha256sum. The
// binary-mode marker ("*file") is accepted. Malformed lines are ignored.
func parseChecksums(r io.Reader) (map[string]string, error) {
	sums := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		hash, name := strings.ToLower(fields[0]), strings.TrimPrefix(fields[1], "*")
		if len(hash) != sha256.Size*2 {
			continue
		}
		if _, err := hex.DecodeString(hash); err != nil {
			continue
		}
		sums[name] = hash
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}
	return sums, nil
}

// verifyChecksum compares the SHA-256 of path with the manifest entry of asset.
// An asset absent from the manifest is an error.
func verifyChecksum(path, asset string, sums map[string]string) error {
	want, ok := sums[asset]
	if !ok {
		return fmt.Errorf("%s is not listed in %s", asset, checksumsAsset)
	}
	got, err := fileSHA256(path)
	if err != nil {
		return err
	}
	if got != want {
		return &ChecksumError{Asset: asset, Expected: want, Got: got}
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
