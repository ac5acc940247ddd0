package matrix

import (
	"database/sql/driver"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// Binary layout: uint32 rows, uint32 cols (little endian), then rows*cols
// float64 values in row-major order, also little endian.
const headerLen = 8

func (m Dense) MarshalBinary() ([]byte, error) {
	if uint64(m.rows) > math.MaxUint32 || uint64(m.cols) > math.MaxUint32 {
		return nil, matrixErrorf("MarshalBinary", ErrBadShape, "%dx%d", m.rows, m.cols)
	}
	buf := make([]byte, headerLen+8*len(m.data))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.rows))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.cols))
	off := headerLen
	for _, v := range m.data {
		binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
		off += 8
	}
	return buf, nil
}

func (m *Dense) UnmarshalBinary(b []byte) error {
	if len(b) < headerLen {
		return matrixErrorf("UnmarshalBinary", ErrCorrupt, "short header (%d bytes)", len(b))
	}
	r := binary.LittleEndian.Uint32(b[0:4])
	c := binary.LittleEndian.Uint32(b[4:8])
	body := b[headerLen:]
	// the header is untrusted; size it in uint64 before allocating
	if len(body)%8 != 0 || uint64(r)*uint64(c) != uint64(len(body)/8) {
		return matrixErrorf("UnmarshalBinary", ErrCorrupt, "%dx%d header with %d body bytes", r, c, len(body))
	}
	rows, cols := int(r), int(c)
	data := make([]float64, len(body)/8)
	for k := range data {
		data[k] = math.Float64frombits(binary.LittleEndian.Uint64(body[k*8 : k*8+8]))
	}
	*m = Dense{rows: rows, cols: cols, data: data}
	return nil
}

// Value stores the binary layout in a bytes column.
func (m Dense) Value() (driver.Value, error) {
	return m.MarshalBinary()
}

func (m *Dense) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Dense{}
		return nil
	case []byte:
		return m.UnmarshalBinary(v)
	case string:
		return m.UnmarshalBinary([]byte(v))
	default:
		return fmt.Errorf("matrix: cannot scan %T", src)
	}
}

func (Dense) GormDataType() string { return "bytes" }

// JSON form is a plain [][]float64. A matrix with zero rows loses its column
// count on the wire; callers that care compare shapes with that in mind.
func (m Dense) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToRows())
}

func (m *Dense) UnmarshalJSON(b []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	d, err := FromRows(rows)
	if err != nil {
		return err
	}
	*m = d
	return nil
}
