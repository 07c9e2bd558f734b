// SPDX-FileCopyrightText: 2014-2022 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdb

import (
	"fmt"
	"reflect"

	"github.com/hdbgo/hdb/protocol"
)

// coerceParameter validates v against p's declared type and range before
// any server roundtrip, per the Prepared Statement's parameter-descriptor-
// driven coercion contract: out-of-range or type-mismatched values fail
// locally rather than on the server.
func coerceParameter(p Parameter, v any) (any, error) {
	if v == nil {
		if !p.Nullable {
			return nil, fmt.Errorf("NULL not allowed")
		}
		return nil, nil
	}

	switch p.TypeCode {
	case protocol.TypeTinyint:
		return coerceInt(v, 0, 255)
	case protocol.TypeSmallint:
		return coerceInt(v, -32768, 32767)
	case protocol.TypeInteger:
		return coerceInt(v, -2147483648, 2147483647)
	case protocol.TypeBigint:
		return coerceInt(v, minInt64, maxInt64)
	default:
		return v, nil
	}
}

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)

// coerceInt accepts any Go integer kind (signed or unsigned) and range-
// checks it against [lo, hi] inclusive, returning an int64 on success.
func coerceInt(v any, lo, hi int64) (int64, error) {
	rv := reflect.ValueOf(v)
	var n int64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > uint64(maxInt64) {
			return 0, fmt.Errorf("value %d out of range [%d, %d]", u, lo, hi)
		}
		n = int64(u)
	default:
		return 0, fmt.Errorf("cannot bind %T as an integer parameter", v)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}
