package terrainlibrary

import (
	"github.com/klauspost/compress/zstd"

	"github.com/KirkDiggler/hexroom/internal/errors"
)

// maxDecodedBytes bounds a decompressed map
const maxDecodedBytes = 64 << 20

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedBytes))
)

// compress zstd-encodes a terrain payload
func compress(data []byte) []byte {
	return encoder.EncodeAll(data, make([]byte, 0, len(data)/4))
}

// decompress reverses compress
func decompress(data []byte) ([]byte, error) {
	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress terrain")
	}
	return out, nil
}
