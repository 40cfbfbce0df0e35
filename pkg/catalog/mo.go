package catalog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	moMagic        = 0x950412de
	moHeaderSize   = 28
	moContextSplit = "\x04"
	moPluralSplit  = "\x00"
)

// ReadMO parses a compiled GNU MO catalog.
func ReadMO(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrReadCatalog, err)
	}
	return ParseMO(data)
}

// ParseMO parses MO data held in memory.
func ParseMO(data []byte) (*Catalog, error) {
	if len(data) < moHeaderSize {
		return nil, fmt.Errorf("%w: file too short", ErrInvalidMO)
	}

	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(data) == moMagic:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(data) == moMagic:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad magic number", ErrInvalidMO)
	}

	if major := order.Uint32(data[4:]) >> 16; major > 1 {
		return nil, fmt.Errorf("%w: unsupported revision %d", ErrInvalidMO, major)
	}
	count := int(order.Uint32(data[8:]))
	origTable := int(order.Uint32(data[12:]))
	transTable := int(order.Uint32(data[16:]))

	str := func(table, i int) (string, error) {
		pos := table + i*8
		if pos < 0 || pos+8 > len(data) {
			return "", fmt.Errorf("%w: string table out of range", ErrInvalidMO)
		}
		length := int(order.Uint32(data[pos:]))
		off := int(order.Uint32(data[pos+4:]))
		if off < 0 || length < 0 || off+length > len(data) {
			return "", fmt.Errorf("%w: string %d out of range", ErrInvalidMO, i)
		}
		return string(data[off : off+length]), nil
	}

	c := NewCatalog()
	for i := range count {
		id, err := str(origTable, i)
		if err != nil {
			return nil, err
		}
		tr, err := str(transTable, i)
		if err != nil {
			return nil, err
		}
		if id == "" {
			c.setHeader(tr)
			continue
		}
		if strings.Contains(id, moContextSplit) {
			continue
		}
		id, _, _ = strings.Cut(id, moPluralSplit)
		tr, _, _ = strings.Cut(tr, moPluralSplit)
		c.Set(id, tr)
	}
	return c, nil
}

// WriteMO compiles a catalog into little-endian MO form. Entries are sorted
// by source text as the format requires; no hash table is written.
func WriteMO(w io.Writer, c *Catalog) error {
	type pair struct{ id, str string }
	pairs := []pair{{id: "", str: c.Header}}
	for id, str := range c.All() {
		pairs = append(pairs, pair{id: id, str: str})
	}

	n := len(pairs)
	origTable := moHeaderSize
	transTable := origTable + n*8
	dataStart := transTable + n*8

	buf := make([]byte, dataStart)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], moMagic)
	le.PutUint32(buf[8:], uint32(n))
	le.PutUint32(buf[12:], uint32(origTable))
	le.PutUint32(buf[16:], uint32(transTable))
	le.PutUint32(buf[24:], uint32(dataStart))

	put := func(table, i int, s string) {
		le.PutUint32(buf[table+i*8:], uint32(len(s)))
		le.PutUint32(buf[table+i*8+4:], uint32(len(buf)))
		buf = append(buf, s...)
		buf = append(buf, 0)
	}
	for i, p := range pairs {
		put(origTable, i, p.id)
	}
	for i, p := range pairs {
		put(transTable, i, p.str)
	}

	if _, err := w.Write(buf); err != nil {
		return errors.Join(ErrWriteCatalog, err)
	}
	return nil
}
