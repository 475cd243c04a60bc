package safety

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// hashChunkSize is the read size used while streaming a file into the digest.
const hashChunkSize = 8192

// HashFile returns the lowercase hex SHA-256 of the file's full content.
// The file is streamed in fixed-size chunks and never buffered whole.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	sum, err := hashReader(f)
	if err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	return sum, nil
}

func hashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
