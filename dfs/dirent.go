package dfs

import (
	"bytes"
	"encoding/binary"
)

// Directory entry types.
const (
	DTUnknown = 0x00
	DTReg     = 0x01
	DTDir     = 0x02
)

// DirentNameSize is the fixed capacity of the name field, NUL included.
const DirentNameSize = 256

// DirentSize is the size in bytes of one directory entry record. Getdents
// buffers are consumed in whole multiples of it.
const DirentSize = 1 + 1 + 2 + DirentNameSize

// Dirent is one directory entry. On the wire it is laid out as
// type (1 byte), name length (1 byte), record length (2 bytes, little
// endian) and a NUL padded name.
type Dirent struct {
	Type    uint8
	NameLen uint8
	RecLen  uint16
	Name    string
}

// PutDirent encodes d into the first DirentSize bytes of buf. Names are cut
// to DirentNameSize-1 bytes. It panics if buf is shorter than DirentSize.
func PutDirent(buf []byte, d *Dirent) {
	rec := buf[:DirentSize]
	rec[0] = d.Type
	rec[1] = d.NameLen
	binary.LittleEndian.PutUint16(rec[2:4], d.RecLen)
	name := rec[4:]
	n := copy(name[:DirentNameSize-1], d.Name)
	clear(name[n:])
}

// ParseDirent decodes one record from the start of buf.
func ParseDirent(buf []byte) Dirent {
	rec := buf[:DirentSize]
	name := rec[4:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return Dirent{
		Type:    rec[0],
		NameLen: rec[1],
		RecLen:  binary.LittleEndian.Uint16(rec[2:4]),
		Name:    string(name),
	}
}

// ParseDirents decodes every whole record in buf.
func ParseDirents(buf []byte) []Dirent {
	out := make([]Dirent, 0, len(buf)/DirentSize)
	for len(buf) >= DirentSize {
		out = append(out, ParseDirent(buf))
		buf = buf[DirentSize:]
	}
	return out
}
