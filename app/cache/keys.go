package cache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/minio/highwayhash"
)

// fileHashKey is the hardcoded key used for file fingerprints. A fixed key
// keeps fingerprints stable across runs so cache keys stay comparable.
var fileHashKey = []byte("labeledit frame cache key\x00\x00\x00\x00\x00\x00\x00")

// Fingerprint calculates a HighwayHash of the file content. Two videos with
// identical paths but different content get distinct cache keys.
func Fingerprint(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash, err := highwayhash.New(fileHashKey)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// FrameKey builds the cache key for one decoded frame of a fingerprinted file.
func FrameKey(fingerprint string, frame int) string {
	return fmt.Sprintf("%s|frame:%d", fingerprint, frame)
}
