package serializer

import (
	"encoding/base64"
	"fmt"
)

// base64Serializer implements the Serializer interface using standard base64 encoding.
type base64Serializer struct{}

func (s base64Serializer) Serialize(data []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(out, data)
	return out, nil
}

func (s base64Serializer) Deserialize(data []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(out, data)
	if err != nil {
		return nil, fmt.Errorf("base64 decode failed: %w", err)
	}
	return out[:n], nil
}
