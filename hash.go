package abacus

import (
	"encoding/hex"
	"io"
)

// keyHash returns the hex digest naming the record file for key.
func (s *FileStore) keyHash(key string) string {
	return s.digest("key:" + key)
}

// checksum returns the hex digest stored alongside a value.
func (s *FileStore) checksum(value string) string {
	return s.digest("value:" + value)
}

func (s *FileStore) digest(data string) string {
	h := s.hashFunc()
	_, _ = io.WriteString(h, data)
	return hex.EncodeToString(h.Sum(nil))
}
