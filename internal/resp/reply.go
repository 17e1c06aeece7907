// Package resp implements the core of spec.md: a resumable RESP
// multi-bulk request parser, the connection and dispatch machinery
// around it, and the reply encoder handlers use to answer clients.
//
// The reply encoder is grounded on the teacher project's
// redis/protocol/reply.go (ToBytes algorithms and buffer-growth
// arithmetic). The request parser is not derived from the teacher's
// client-side redis/parser/parser.go — see DESIGN.md for why that
// parser could not be reused.
package resp

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// CRLF is the RESP line terminator (component A, spec.md §4.1).
const CRLF = "\r\n"

// WriteStatus writes a RESP simple string: +<str>\r\n. The caller must
// ensure str contains no \r or \n; the encoder does not validate, per
// spec.md §4.1.
func WriteStatus(conn *Connection, str string) int {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.WriteByte('+') //nolint:errcheck
	buf.WriteString(str) //nolint:errcheck
	buf.WriteString(CRLF) //nolint:errcheck
	return conn.writeOut(buf.B)
}

// WriteError writes a RESP error: -<kind> <message>\r\n. This is also
// what the dispatcher uses for the unknown-command reply (kind=argv[0],
// message="not suport").
func WriteError(conn *Connection, kind, message string) int {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.WriteByte('-') //nolint:errcheck
	buf.WriteString(kind) //nolint:errcheck
	buf.WriteByte(' ') //nolint:errcheck
	buf.WriteString(message) //nolint:errcheck
	buf.WriteString(CRLF) //nolint:errcheck
	return conn.writeOut(buf.B)
}

// WriteNullBulk writes the RESP null bulk string: $-1\r\n.
func WriteNullBulk(conn *Connection) int {
	return conn.writeOut([]byte("$-1" + CRLF))
}

// WriteInteger writes a RESP integer: :<decimal>\r\n.
func WriteInteger(conn *Connection, v int64) int {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.WriteByte(':') //nolint:errcheck
	buf.WriteString(strconv.FormatInt(v, 10)) //nolint:errcheck
	buf.WriteString(CRLF) //nolint:errcheck
	return conn.writeOut(buf.B)
}

// WriteBulk writes a RESP bulk string: $<len>\r\n<bytes>\r\n. arg may be
// nil, in which case it is equivalent to WriteNullBulk — matching the
// source's SendBulkReply which has no separate nil case but whose
// std::string length is always >= 0; nil support here is for embedders
// building MultiBulk replies with a missing element.
func WriteBulk(conn *Connection, arg []byte) int {
	if arg == nil {
		return WriteNullBulk(conn)
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.WriteByte('$') //nolint:errcheck
	buf.WriteString(strconv.Itoa(len(arg))) //nolint:errcheck
	buf.WriteString(CRLF) //nolint:errcheck
	buf.Write(arg) //nolint:errcheck
	buf.WriteString(CRLF) //nolint:errcheck
	return conn.writeOut(buf.B)
}

// WriteBulkString is the string convenience form of WriteBulk.
func WriteBulkString(conn *Connection, s string) int {
	return WriteBulk(conn, []byte(s))
}

// WriteMultiBulk writes a RESP array of bulk strings:
// *<n>\r\n<bulk_1>...<bulk_n>, each element built with WriteBulk's
// buffer-growth arithmetic (ported from the teacher's MultiBulkReply.ToBytes,
// which pre-computes the exact buffer length before a single Grow+append
// pass to avoid intermediate string concatenation).
func WriteMultiBulk(conn *Connection, args [][]byte) int {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	n := len(args)
	size := 1 + len(strconv.Itoa(n)) + 2
	for _, arg := range args {
		if arg == nil {
			size += 3 + 2
			continue
		}
		size += 1 + len(strconv.Itoa(len(arg))) + 2 + len(arg) + 2
	}

	if cap(buf.B) < size {
		buf.B = make([]byte, 0, size)
	}
	buf.WriteByte('*') //nolint:errcheck
	buf.WriteString(strconv.Itoa(n)) //nolint:errcheck
	buf.WriteString(CRLF) //nolint:errcheck
	for _, arg := range args {
		if arg == nil {
			buf.WriteString("$-1" + CRLF) //nolint:errcheck
			continue
		}
		buf.WriteByte('$') //nolint:errcheck
		buf.WriteString(strconv.Itoa(len(arg))) //nolint:errcheck
		buf.WriteString(CRLF) //nolint:errcheck
		buf.Write(arg) //nolint:errcheck
		buf.WriteString(CRLF) //nolint:errcheck
	}
	return conn.writeOut(buf.B)
}
