package protocol

import (
	"fmt"

	"github.com/hdbgo/hdb/cesu8"
)

// optionValueKind tags the wire representation of an option's value in the
// generic Id->Value options-map parts (ConnectOptions, ClientInfo,
// StatementContext, TransactionFlags, SessionContext, ...).
type optionValueKind int8

const (
	ovkNil     optionValueKind = 0
	ovkInt     optionValueKind = 1
	ovkBigint  optionValueKind = 2
	ovkDouble  optionValueKind = 3
	ovkBoolean optionValueKind = 4
	ovkString  optionValueKind = 5
	ovkBytes   optionValueKind = 6
)

// optionValue is one entry's payload in an options map: exactly one of the
// fields is meaningful, selected by Kind.
type optionValue struct {
	Kind    optionValueKind
	Int     int32
	Bigint  int64
	Double  float64
	Boolean bool
	String  string
	Bytes   []byte
}

func optInt(n int32) optionValue       { return optionValue{Kind: ovkInt, Int: n} }
func optBigint(n int64) optionValue    { return optionValue{Kind: ovkBigint, Bigint: n} }
func optDouble(f float64) optionValue  { return optionValue{Kind: ovkDouble, Double: f} }
func optBool(b bool) optionValue       { return optionValue{Kind: ovkBoolean, Boolean: b} }
func optString(s string) optionValue   { return optionValue{Kind: ovkString, String: s} }
func optBytes(p []byte) optionValue    { return optionValue{Kind: ovkBytes, Bytes: p} }

// options is the generic Id->Value map shared by every options-style part.
// Id is a small per-part integer enum (connectOptionID, clientInfoID, ...);
// callers cast to/from their own named id type.
type options map[int8]optionValue

func decodeOptions(d *decoder, argCount int32) options {
	opts := make(options, argCount)
	for i := int32(0); i < argCount; i++ {
		id := d.int8()
		kind := optionValueKind(d.int8())
		switch kind {
		case ovkInt:
			opts[id] = optInt(d.int32())
		case ovkBigint:
			opts[id] = optBigint(d.int64())
		case ovkDouble:
			opts[id] = optDouble(d.float64())
		case ovkBoolean:
			opts[id] = optBool(d.bool())
		case ovkString, ovkBytes:
			n, _ := readLength(d)
			p := d.bytes(n)
			if kind == ovkString {
				opts[id] = optString(string(cesu8.ToUTF8(p)))
			} else {
				opts[id] = optBytes(p)
			}
		default:
			opts[id] = optionValue{Kind: ovkNil}
		}
	}
	return opts
}

func encodeOptions(e *encoder, opts options) {
	for id, v := range opts {
		e.int8(id)
		e.int8(int8(v.Kind))
		switch v.Kind {
		case ovkInt:
			e.int32(v.Int)
		case ovkBigint:
			e.int64(v.Bigint)
		case ovkDouble:
			e.float64(v.Double)
		case ovkBoolean:
			e.bool(v.Boolean)
		case ovkString:
			p := cesu8.FromUTF8(v.String)
			writeLength(e, len(p))
			e.bytes(p)
		case ovkBytes:
			writeLength(e, len(v.Bytes))
			e.bytes(v.Bytes)
		}
	}
}

func optionsEncodedSize(opts options) int {
	n := 0
	for _, v := range opts {
		n += 2 // id + kind
		switch v.Kind {
		case ovkInt:
			n += 4
		case ovkBigint, ovkDouble:
			n += 8
		case ovkBoolean:
			n += 1
		case ovkString:
			p := cesu8.FromUTF8(v.String)
			n += lengthIndicatorSize(len(p)) + len(p)
		case ovkBytes:
			n += lengthIndicatorSize(len(v.Bytes)) + len(v.Bytes)
		}
	}
	return n
}

func (o options) getInt(id int8) (int32, bool) {
	v, ok := o[id]
	if !ok || v.Kind != ovkInt {
		return 0, false
	}
	return v.Int, true
}

func (o options) getString(id int8) (string, bool) {
	v, ok := o[id]
	if !ok || v.Kind != ovkString {
		return "", false
	}
	return v.String, true
}

func (o options) getBool(id int8) (bool, bool) {
	v, ok := o[id]
	if !ok || v.Kind != ovkBoolean {
		return false, false
	}
	return v.Boolean, true
}

func (o options) getBytes(id int8) ([]byte, bool) {
	v, ok := o[id]
	if !ok || v.Kind != ovkBytes {
		return nil, false
	}
	return v.Bytes, true
}

func (o options) mustGetString(id int8, what string) (string, error) {
	s, ok := o.getString(id)
	if !ok {
		return "", fmt.Errorf("protocol: missing required option %d (%s)", id, what)
	}
	return s, nil
}
