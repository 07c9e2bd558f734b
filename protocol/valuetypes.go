package protocol

import "math/big"

// Decimal is an arbitrary-precision decimal value: mantissa * 10^Exp.
type Decimal struct {
	Mantissa *big.Int
	Exp      int
}

// Null sentinel magic value used by the temporal integer encodings
// (LongDate, SecondDate, DayDate, SecondTime) to distinguish NULL from a
// legitimate zero offset when the target column is nullable.
const temporalNullSentinel = 3_155_380_704_000_000_001

// LongDate stores 100-nanosecond ticks since 0001-01-01.
type LongDate int64

// SecondDate stores seconds since 0001-01-01.
type SecondDate int64

// DayDate stores days since 0001-01-01.
type DayDate int32

// SecondTime stores seconds-of-day.
type SecondTime int32

// DBString carries raw bytes that failed to decode as CESU-8 or UTF-8, so
// callers can still inspect the wire-original bytes.
type DBString struct{ Bytes []byte }

// LobLocator identifies an in-progress LOB transfer together with whatever
// prefix arrived inline with the row.
type LobLocator struct {
	ID          uint64
	IsLast      bool
	CharLength  int64 // declared total length; bytes for BLOB/CLOB, code units for NCLOB
	ByteLength  int64
	Prefix      []byte
}

// OutLob is supplied by the caller when streaming a LOB value outbound.
// encodeLobParameter calls Read until io.EOF or until lobInlineChunkCap
// bytes are read; content past that cap is not sent by this path.
type OutLob struct {
	Read func(p []byte) (n int, err error)
}

// Array is a heterogeneous, single-level ARRAY value. Nested arrays are
// forbidden by the wire format; elements are always nullable.
type Array struct {
	ElemTypeCode typeCode
	Elems        []any
}
