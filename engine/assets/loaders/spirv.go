package loaders

import (
	"fmt"
	"io"
	"os"
)

const spirvMagic uint32 = 0x07230203

// SPIRVLoader reads compiled shader modules from disk.
type SPIRVLoader struct{}

func (sl *SPIRVLoader) Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if err := validate(buf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}

func validate(b []byte) error {
	if len(b) == 0 || len(b)%4 != 0 {
		return fmt.Errorf("SPIR-V module size %d is not a multiple of 4", len(b))
	}
	if words := bytesToBytecode(b[:4]); words[0] != spirvMagic {
		return fmt.Errorf("invalid SPIR-V magic number %#08x", words[0])
	}
	return nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
