package serializer

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// maxDecodedSize bounds gzip output to the largest value a Redis string can
// hold (512 MiB).
var maxDecodedSize = 512 << 20

var errTooLarge = errors.New("gzip: decoded payload too large")

// gzipSerializer compresses SET payloads and inflates replies.
type gzipSerializer struct{}

func (gzipSerializer) Serialize(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("gzip: %w", err)
	}
	// The footer is written by Close.
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func (gzipSerializer) Deserialize(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, int64(maxDecodedSize)+1))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if len(out) > maxDecodedSize {
		return nil, errTooLarge
	}
	return out, nil
}
