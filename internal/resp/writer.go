package resp

import (
	"bytes"
	"strconv"
)

// EncodeCommand builds a RESP array of bulk strings from raw arguments.
// Bulk strings are length-prefixed, so any byte sequence is safe and no
// quoting is needed.
func EncodeCommand(args ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte('*')
	buf.WriteString(strconv.Itoa(len(args)))
	buf.WriteString("\r\n")
	for _, arg := range args {
		buf.WriteByte('$')
		buf.WriteString(strconv.Itoa(len(arg)))
		buf.WriteString("\r\n")
		buf.Write(arg)
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// EncodeStrings is EncodeCommand for string arguments.
func EncodeStrings(args ...string) []byte {
	raw := make([][]byte, len(args))
	for i, arg := range args {
		raw[i] = []byte(arg)
	}
	return EncodeCommand(raw...)
}
