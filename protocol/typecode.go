package protocol

// typeCode identifies the wire representation of a value - the HdbValue
// type id that precedes every encoded value (high bit set marks NULL on a
// nullable target, see value.go).
type typeCode byte

const (
	tcNull         typeCode = 0
	tcTinyint      typeCode = 1
	tcSmallint     typeCode = 2
	tcInteger      typeCode = 3
	tcBigint       typeCode = 4
	tcDecimal      typeCode = 5
	tcReal         typeCode = 6
	tcDouble       typeCode = 7
	tcChar         typeCode = 8
	tcVarchar      typeCode = 9
	tcNChar        typeCode = 10
	tcNVarchar     typeCode = 11
	tcBinary       typeCode = 12
	tcVarbinary    typeCode = 13
	tcDate         typeCode = 14
	tcTime         typeCode = 15
	tcTimestamp    typeCode = 16
	tcBoolean      typeCode = 28
	tcString       typeCode = 29
	tcNString      typeCode = 30
	tcBLob         typeCode = 31
	tcCLob         typeCode = 32
	tcNCLob        typeCode = 33
	tcText         typeCode = 51
	tcShortText    typeCode = 52
	tcBintext      typeCode = 53
	tcAlphanum     typeCode = 55
	tcLongdate     typeCode = 61
	tcSeconddate   typeCode = 62
	tcDaydate      typeCode = 63
	tcSecondtime   typeCode = 64
	tcClocationid  typeCode = 70
	tcBlobDiskReserved    typeCode = 71
	tcClobDiskReserved    typeCode = 72
	tcNclobDiskReserved   typeCode = 73
	tcFixed8       typeCode = 81
	tcFixed12      typeCode = 82
	tcFixed16      typeCode = 76
	tcSTPoint      typeCode = 74
	tcSTGeometry   typeCode = 75
	tcArray        typeCode = 77
	tcDBString     typeCode = 127 // driver-internal: non-CESU-8/non-UTF-8 string fallback
)

// Exported wire type-id constants, for callers outside this package (see
// hdb/stmt.go's parameter range checks) that need to recognize a
// descriptor's TypeCode without reaching into typeCode internals.
const (
	TypeTinyint   int8 = int8(tcTinyint)
	TypeSmallint  int8 = int8(tcSmallint)
	TypeInteger   int8 = int8(tcInteger)
	TypeBigint    int8 = int8(tcBigint)
	TypeReal      int8 = int8(tcReal)
	TypeDouble    int8 = int8(tcDouble)
	TypeBoolean   int8 = int8(tcBoolean)
	TypeBLob      int8 = int8(tcBLob)
	TypeCLob      int8 = int8(tcCLob)
	TypeNCLob     int8 = int8(tcNCLob)
)

const tcNullMask = 0x80 // high bit set in the wire type id marks a NULL value for a nullable target

// for most types the NULL encoding on the wire is the type code itself
// with the high bit set; secondtime has an HDB quirk where that value
// collides with a real code, so it special-cases.
const tcSecondtimeNull = typeCode(0xB0)

func (tc typeCode) isLob() bool {
	switch tc {
	case tcBLob, tcCLob, tcNCLob, tcText, tcBintext, tcSTPoint, tcSTGeometry:
		return true
	default:
		return false
	}
}

func (tc typeCode) isVariableLength() bool {
	switch tc {
	case tcChar, tcVarchar, tcNChar, tcNVarchar, tcBinary, tcVarbinary,
		tcString, tcNString, tcShortText, tcAlphanum, tcText, tcBintext,
		tcSTPoint, tcSTGeometry, tcArray, tcDBString:
		return true
	default:
		return false
	}
}

func (tc typeCode) isDecimalType() bool {
	switch tc {
	case tcDecimal, tcFixed8, tcFixed12, tcFixed16:
		return true
	default:
		return false
	}
}

func (tc typeCode) isTemporal() bool {
	switch tc {
	case tcDate, tcTime, tcTimestamp, tcLongdate, tcSeconddate, tcDaydate, tcSecondtime:
		return true
	default:
		return false
	}
}

// supportNullValue reports whether tc has a reserved wire encoding for
// NULL distinct from setting the high bit of the leading type byte (used
// for the small set of types where the plain high-bit convention would
// collide with a valid value).
func (tc typeCode) supportNullValue() bool { return tc == tcSecondtime }

// nullValue returns the byte written on the wire to represent NULL for tc.
func (tc typeCode) nullValue() byte {
	if tc == tcSecondtime {
		return byte(tcSecondtimeNull) // HDB quirk: avoid colliding with a real SECONDTIME code
	}
	return byte(tc) | tcNullMask
}

// encTc returns tc with the NULL bit cleared; no other type code is
// remapped (fixed decimal widths keep their own codes).
func (tc typeCode) encTc() typeCode { return tc &^ tcNullMask }

func (tc typeCode) dataType() dataType {
	switch tc {
	case tcTinyint:
		return dtTinyint
	case tcSmallint:
		return dtSmallint
	case tcInteger:
		return dtInteger
	case tcBigint:
		return dtBigint
	case tcReal:
		return dtReal
	case tcDouble:
		return dtDouble
	case tcDecimal, tcFixed8, tcFixed12, tcFixed16:
		return dtDecimal
	case tcBoolean:
		return dtBoolean
	case tcDate, tcTime, tcTimestamp, tcLongdate, tcSeconddate, tcDaydate, tcSecondtime:
		return dtTime
	case tcBLob, tcCLob, tcNCLob, tcText, tcBintext, tcSTPoint, tcSTGeometry:
		return dtLob
	case tcBinary, tcVarbinary:
		return dtBytes
	case tcArray:
		return dtArray
	default:
		return dtString
	}
}

func (tc typeCode) typeName() string {
	switch tc {
	case tcTinyint:
		return "TINYINT"
	case tcSmallint:
		return "SMALLINT"
	case tcInteger:
		return "INTEGER"
	case tcBigint:
		return "BIGINT"
	case tcDecimal:
		return "DECIMAL"
	case tcReal:
		return "REAL"
	case tcDouble:
		return "DOUBLE"
	case tcChar:
		return "CHAR"
	case tcVarchar:
		return "VARCHAR"
	case tcNChar:
		return "NCHAR"
	case tcNVarchar:
		return "NVARCHAR"
	case tcBinary:
		return "BINARY"
	case tcVarbinary:
		return "VARBINARY"
	case tcBoolean:
		return "BOOLEAN"
	case tcString:
		return "STRING"
	case tcNString:
		return "NSTRING"
	case tcBLob:
		return "BLOB"
	case tcCLob:
		return "CLOB"
	case tcNCLob:
		return "NCLOB"
	case tcText:
		return "TEXT"
	case tcShortText:
		return "SHORTTEXT"
	case tcBintext:
		return "BINTEXT"
	case tcAlphanum:
		return "ALPHANUM"
	case tcLongdate:
		return "LONGDATE"
	case tcSeconddate:
		return "SECONDDATE"
	case tcDaydate:
		return "DAYDATE"
	case tcSecondtime:
		return "SECONDTIME"
	case tcFixed8:
		return "FIXED8"
	case tcFixed12:
		return "FIXED12"
	case tcFixed16:
		return "FIXED16"
	case tcSTPoint:
		return "ST_POINT"
	case tcSTGeometry:
		return "ST_GEOMETRY"
	case tcArray:
		return "ARRAY"
	case tcDBString:
		return "DBSTRING"
	default:
		return "UNKNOWN"
	}
}

// dataType buckets a typeCode into the handful of Go-side representations
// the value codec actually produces/consumes.
type dataType int

const (
	dtUnknown dataType = iota
	dtTinyint
	dtSmallint
	dtInteger
	dtBigint
	dtReal
	dtDouble
	dtDecimal
	dtBoolean
	dtTime
	dtString
	dtBytes
	dtLob
	dtArray
)
