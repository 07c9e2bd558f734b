package protocol

import (
	"fmt"
	"math/big"
)

// The value codec accepts a small set of Go types per HANA type family and
// converts between them; these helpers centralize the accepted conversions
// so value.go's encode dispatch stays a plain switch.

func toUint8(v any) (uint8, error) {
	switch n := v.(type) {
	case uint8:
		return n, nil
	case int:
		return uint8(n), nil
	case int64:
		return uint8(n), nil
	default:
		return 0, fmt.Errorf("protocol: cannot encode %T as TINYINT", v)
	}
}

func toInt16(v any) (int16, error) {
	switch n := v.(type) {
	case int16:
		return n, nil
	case int:
		return int16(n), nil
	case int64:
		return int16(n), nil
	default:
		return 0, fmt.Errorf("protocol: cannot encode %T as SMALLINT", v)
	}
}

func toInt32(v any) (int32, error) {
	switch n := v.(type) {
	case int32:
		return n, nil
	case int:
		return int32(n), nil
	case int64:
		return int32(n), nil
	case DayDate:
		return int32(n), nil
	case SecondTime:
		return int32(n), nil
	default:
		return 0, fmt.Errorf("protocol: cannot encode %T as INTEGER", v)
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case LongDate:
		return int64(n), nil
	case SecondDate:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("protocol: cannot encode %T as BIGINT", v)
	}
}

func toFloat32(v any) (float32, error) {
	switch n := v.(type) {
	case float32:
		return n, nil
	case float64:
		return float32(n), nil
	default:
		return 0, fmt.Errorf("protocol: cannot encode %T as REAL", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("protocol: cannot encode %T as DOUBLE", v)
	}
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case DBString:
		return string(s.Bytes), nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("protocol: cannot encode %T as a string type", v)
	}
}

func toDecimal(v any) (Decimal, error) {
	switch d := v.(type) {
	case Decimal:
		return d, nil
	case int64:
		return Decimal{Mantissa: big.NewInt(d), Exp: 0}, nil
	case int:
		return Decimal{Mantissa: big.NewInt(int64(d)), Exp: 0}, nil
	case *big.Int:
		return Decimal{Mantissa: new(big.Int).Set(d), Exp: 0}, nil
	default:
		return Decimal{}, fmt.Errorf("protocol: cannot encode %T as a decimal type", v)
	}
}
