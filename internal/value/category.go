package value

import "strings"

// Category groups the column type names that drivers report through
// sql.ColumnType.DatabaseTypeName.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryInteger
	CategoryBoolean
	CategoryBit
	CategoryFloat
	CategoryText
	CategoryBinary
	CategoryUUID
	CategoryTemporal
)

var categoryByType = map[string]Category{
	"TINYINT": CategoryInteger, "SMALLINT": CategoryInteger, "MEDIUMINT": CategoryInteger,
	"INT": CategoryInteger, "INTEGER": CategoryInteger, "BIGINT": CategoryInteger,
	"INT2": CategoryInteger, "INT4": CategoryInteger, "INT8": CategoryInteger,
	"YEAR": CategoryInteger, "SERIAL": CategoryInteger, "BIGSERIAL": CategoryInteger,
	"SMALLSERIAL": CategoryInteger, "OID": CategoryInteger,

	"BOOL": CategoryBoolean, "BOOLEAN": CategoryBoolean,

	"BIT": CategoryBit,

	"FLOAT": CategoryFloat, "DOUBLE": CategoryFloat, "DOUBLE PRECISION": CategoryFloat,
	"REAL": CategoryFloat, "DECIMAL": CategoryFloat, "NUMERIC": CategoryFloat,
	"FLOAT4": CategoryFloat, "FLOAT8": CategoryFloat, "MONEY": CategoryFloat,
	"SMALLMONEY": CategoryFloat, "NUMBER": CategoryFloat,

	"CHAR": CategoryText, "VARCHAR": CategoryText, "TEXT": CategoryText,
	"TINYTEXT": CategoryText, "MEDIUMTEXT": CategoryText, "LONGTEXT": CategoryText,
	"NCHAR": CategoryText, "NVARCHAR": CategoryText, "NTEXT": CategoryText,
	"BPCHAR": CategoryText, "CITEXT": CategoryText, "NAME": CategoryText,
	"ENUM": CategoryText, "SET": CategoryText, "JSON": CategoryText, "JSONB": CategoryText,
	"XML": CategoryText, "CLOB": CategoryText, "STRING": CategoryText,

	"BLOB": CategoryBinary, "TINYBLOB": CategoryBinary, "MEDIUMBLOB": CategoryBinary,
	"LONGBLOB": CategoryBinary, "BINARY": CategoryBinary, "VARBINARY": CategoryBinary,
	"BYTEA": CategoryBinary, "IMAGE": CategoryBinary, "GEOMETRY": CategoryBinary,

	"UUID": CategoryUUID, "UNIQUEIDENTIFIER": CategoryUUID,

	"DATE": CategoryTemporal, "TIME": CategoryTemporal, "DATETIME": CategoryTemporal,
	"DATETIME2": CategoryTemporal, "SMALLDATETIME": CategoryTemporal,
	"DATETIMEOFFSET": CategoryTemporal, "TIMESTAMP": CategoryTemporal,
	"TIMESTAMPTZ": CategoryTemporal, "TIMETZ": CategoryTemporal, "INTERVAL": CategoryTemporal,
}

// CategoryOf maps a driver type name such as "VARCHAR(255)", "UNSIGNED BIGINT"
// or "int4" onto a Category. Unrecognised and empty names are CategoryUnknown.
func CategoryOf(typeName string) Category {
	t := strings.ToUpper(strings.TrimSpace(typeName))
	if idx := strings.Index(t, "("); idx >= 0 {
		t = strings.TrimSpace(t[:idx])
	}
	t = strings.TrimPrefix(t, "UNSIGNED ")
	t = strings.TrimSuffix(t, " UNSIGNED")
	if strings.HasPrefix(t, "_") {
		// postgres array types arrive as their text literal
		return CategoryText
	}
	return categoryByType[t]
}
