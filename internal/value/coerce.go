package value

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coerce converts a scanned column value without column type information.
func Coerce(v any) Value {
	return CoerceColumn(v, "")
}

// CoerceColumn converts a scanned column value into a Value. dbType is the
// driver's reported column type name and may be empty.
//
// Raw driver bytes are first decoded according to the column category, then
// the result is matched in fixed order: nil, integer, boolean, floating point
// or decimal, string, and finally the textual form of anything else.
func CoerceColumn(v any, dbType string) Value {
	if b, ok := v.([]byte); ok {
		v = decodeBytes(b, dbType)
	}

	switch t := v.(type) {
	case nil:
		return Null()

	case int64:
		return Integer(t)
	case int:
		return Integer(int64(t))
	case int32:
		return Integer(int64(t))
	case int16:
		return Integer(int64(t))
	case int8:
		return Integer(int64(t))
	case uint32:
		return Integer(int64(t))
	case uint16:
		return Integer(int64(t))
	case uint8:
		return Integer(int64(t))
	case uint64:
		if t <= math.MaxInt64 {
			return Integer(int64(t))
		}
		return String(strconv.FormatUint(t, 10))
	case uint:
		if uint64(t) <= math.MaxInt64 {
			return Integer(int64(t))
		}
		return String(strconv.FormatUint(uint64(t), 10))

	case bool:
		return Boolean(t)

	case float64:
		return Double(t)
	case float32:
		return Double(float64(t))
	case decimal.Decimal:
		return Double(t.InexactFloat64())

	case string:
		return String(t)

	default:
		return String(textOf(t))
	}
}

// binaryText wraps bytes that should be rendered as hex rather than text.
type binaryText []byte

func (b binaryText) String() string {
	return "0x" + hex.EncodeToString(b)
}

func decodeBytes(b []byte, dbType string) any {
	category := CategoryOf(dbType)
	switch category {
	case CategoryInteger:
		if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			return n
		}
		return string(b)

	case CategoryBoolean:
		if ok, err := strconv.ParseBool(string(b)); err == nil {
			return ok
		}
		return string(b)

	case CategoryBit:
		// BIT(1) is the only width with boolean meaning.
		if len(b) == 1 {
			return b[0] != 0
		}
		return binaryText(b)

	case CategoryFloat:
		return parseDecimal(string(b))

	case CategoryText, CategoryTemporal:
		return string(b)

	case CategoryBinary:
		return binaryText(b)

	case CategoryUUID:
		if len(b) == 16 {
			return uuidFromBytes(b, strings.EqualFold(strings.TrimSpace(dbType), "UNIQUEIDENTIFIER"))
		}
		return string(b)

	default:
		if len(b) > 0 && utf8.Valid(b) {
			return string(b)
		}
		return binaryText(b)
	}
}

func parseDecimal(s string) any {
	if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
		return d
	}
	// NaN and Infinity are valid in some engines but not in decimal.
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return s
}

// uuidFromBytes renders 16 raw bytes as a UUID. SQL Server stores the first
// three groups little-endian.
func uuidFromBytes(b []byte, mixedEndian bool) string {
	raw := make([]byte, 16)
	copy(raw, b)
	if mixedEndian {
		raw[0], raw[1], raw[2], raw[3] = raw[3], raw[2], raw[1], raw[0]
		raw[4], raw[5] = raw[5], raw[4]
		raw[6], raw[7] = raw[7], raw[6]
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return binaryText(b).String()
	}
	return id.String()
}

func textOf(v any) string {
	var s string
	switch t := v.(type) {
	case time.Time:
		s = t.Format(time.RFC3339Nano)
	case fmt.Stringer:
		s = t.String()
	case error:
		s = t.Error()
	default:
		s = fmt.Sprint(t)
	}
	if s == "" {
		return fmt.Sprintf("%T", v)
	}
	return s
}
