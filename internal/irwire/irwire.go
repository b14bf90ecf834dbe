// Package irwire gives internal/ir.ProgramIR a deterministic binary hand-off
// format. spec.md leaves IR serialization unspecified ("a backend may
// serialize at will"); this package is one such serializer, built directly
// on google.golang.org/protobuf's low-level encoding/protowire primitives —
// a standalone varint/length-delimited encoder the protobuf module ships for
// exactly this kind of hand-rolled, schema-free binary framing, with no
// .proto file or generated code needed. Every message below is field-numbered
// the way a .proto message would be, so a future generated-code backend could
// adopt the same field numbers without changing the wire bytes.
package irwire

import "fmt"

// errTruncated is returned by Decode when the input ends mid-field.
var errTruncated = fmt.Errorf("irwire: truncated input")
