package blob

// ErrorKind labels why a blob or segment decode failed (§7 "Per-segment"
// and "XML"). Recorded on Frame so callers can distinguish a transient
// per-blob failure from one that should be surfaced to an operator.
type ErrorKind string

const (
	ErrorKindNone               ErrorKind = ""
	ErrorKindCRCMismatch        ErrorKind = "crc-mismatch"
	ErrorKindLengthMismatch     ErrorKind = "length-mismatch"
	ErrorKindUnsupportedVersion ErrorKind = "unsupported-version"
	ErrorKindXMLParseError      ErrorKind = "parse-error"
)
