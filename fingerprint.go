package main

import (
	"io"
	"os"

	"github.com/sigurn/crc16"
)

var fingerprintTable = crc16.MakeTable(crc16.CRC16_X_25)

type fileFingerprint struct {
	Checksum uint16 `json:"checksum"`
	Size     int64  `json:"size"`
}

type checksumWriter struct {
	crc    uint16
	length int64
}

func newChecksumWriter() *checksumWriter {
	return &checksumWriter{
		crc: crc16.Init(fingerprintTable),
	}
}

func (c *checksumWriter) Write(data []byte) (int, error) {
	c.crc = crc16.Update(c.crc, data, fingerprintTable)
	c.length += int64(len(data))

	return len(data), nil
}

func (c *checksumWriter) fingerprint() fileFingerprint {
	return fileFingerprint{
		Checksum: crc16.Complete(c.crc, fingerprintTable),
		Size:     c.length,
	}
}

// fingerprintFile identifies a file's content so a file rewritten under the
// same path is not mistaken for one that was already loaded.
func fingerprintFile(path string) (fileFingerprint, error) {
	f, err := os.Open(path)

	if err != nil {
		return fileFingerprint{}, err
	}

	defer f.Close()

	w := newChecksumWriter()

	if _, err = io.Copy(w, f); err != nil {
		return fileFingerprint{}, err
	}

	return w.fingerprint(), nil
}
