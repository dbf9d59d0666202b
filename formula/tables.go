package formula

// operatorEntry is one 0x08..0x19 unary/binary operator slot (spec §4.6).
type operatorEntry struct {
	name  string
	arity int
}

// operatorTable covers opcodes 0x08 through 0x19 in order. The spec lists
// 17 named operators for an 18-slot range; the final slot is filled with
// the concatenation operator '&' repeated, since no 18th distinct symbol is
// named in the source material.
var operatorTable = [18]operatorEntry{
	{"-", 2},
	{"+", 2},
	{"+", 1}, // unary plus encountered in binary position; treated as identity
	{"*", 2},
	{"/", 2},
	{"^", 2},
	{"=", 2},
	{"<>", 2},
	{"<=", 2},
	{">=", 2},
	{"<", 2},
	{">", 2},
	{"AND", 2},
	{"OR", 2},
	{"NOT", 1},
	{"neg", 1}, // unary+ / unary- sign slot
	{"&", 2},
	{"&", 2},
}

const (
	arityFollows       = -1
	arityUnimplemented = -2
)

type functionEntry struct {
	name  string
	arity int
}

// functionTable maps a plain function opcode (everything not covered by the
// 0x00..0x1A reserved range) to its name and fixed arity, per spec §4.6.
// Arity arityFollows (-1) means "read arity:i8 next"; arityUnimplemented
// (-2) means the function is recognized but not evaluated.
var functionTable = map[byte]functionEntry{
	0x1B: {"SUM", arityFollows},
	0x1C: {"AVG", arityFollows},
	0x1D: {"COUNT", arityFollows},
	0x1E: {"MIN", arityFollows},
	0x1F: {"MAX", arityFollows},
	0x20: {"NPV", arityFollows},
	0x21: {"IRR", 2},
	0x22: {"ABS", 1},
	0x23: {"INT", 1},
	0x24: {"SQRT", 1},
	0x25: {"LOG", 1},
	0x26: {"LN", 1},
	0x27: {"PI", 0},
	0x28: {"SIN", 1},
	0x29: {"COS", 1},
	0x2A: {"TAN", 1},
	0x2B: {"ATAN2", 2},
	0x2C: {"ATAN", 1},
	0x2D: {"ASIN", 1},
	0x2E: {"ACOS", 1},
	0x2F: {"EXP", 1},
	0x30: {"MOD", 2},
	0x31: {"CHOOSE", arityFollows},
	0x32: {"IS_NA", 1},
	0x33: {"IS_ERR", 1},
	0x34: {"FALSE", 0},
	0x35: {"TRUE", 0},
	0x36: {"RAND", 0},
	0x37: {"DATE", 3},
	0x38: {"TODAY", 0},
	0x39: {"PMT", 3},
	0x3A: {"PV", 3},
	0x3B: {"FV", 3},
	0x3C: {"IF", 3},
	0x3D: {"DAY", 1},
	0x3E: {"MONTH", 1},
	0x3F: {"YEAR", 1},
	0x40: {"ROUND", 2},
	0x41: {"TIME", 3},
	0x42: {"HOUR", 1},
	0x43: {"MINUTE", 1},
	0x44: {"SECOND", 1},
	0x45: {"IS_NUMBER", 1},
	0x46: {"IS_STRING", 1},
	0x47: {"LEN", 1},
	0x48: {"VALUE", 1},
	0x49: {"FIXED", 2},
	0x4A: {"MID", 3},
	0x4B: {"CHAR", 1},
	0x4C: {"CODE", 1},
	0x4D: {"FIND", 3},
	0x4E: {"DATEVALUE", 1},
	0x4F: {"TIMEVALUE", 1},
	0x50: {"CELLPOINTER", 1},
	0x51: {"SUMPRODUCT", arityFollows},
	0x52: {"NA", 0},
	0x53: {"NPER", 3},
	0x54: {"RATE", 3},
	0x55: {"TERM", 3},
	0x56: {"CTERM", 3},
	0x57: {"SLN", 3},
	0x58: {"SYD", 4},
	0x59: {"DDB", 4},
	0x5A: {"VLOOKUP", 3},
	0x5B: {"HLOOKUP", 3},
	0x5C: {"STRING", 2},
	0x5D: {"REPLACE", 4},
	0x5E: {"UPPER", 1},
	0x5F: {"LOWER", 1},
	0x60: {"PROPER", 1},
	0x61: {"TRIM", 1},
	0x62: {"REPEAT", 2},
	0x63: {"CELL", 2},
	0x64: {"EXACT", 2},
	0x65: {"INDEX", arityFollows},
	0x66: {"DDE_LINK", arityUnimplemented},
	0x67: {"MACRO_RUN", arityUnimplemented},
}
