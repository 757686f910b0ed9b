package permission

import (
	"encoding/json"
	"strings"
)

// DecodeStatus tags the outcome of decoding a stored permission blob.
type DecodeStatus int

const (
	// DecodeOK means the stored JSON parsed into a record.
	DecodeOK DecodeStatus = iota
	// DecodeFallback means the column was empty; the role template applies.
	DecodeFallback
	// DecodeMalformed means the column held unparseable JSON; the role
	// template applies and Raw preserves the rejected input.
	DecodeMalformed
)

// DecodeResult is the tagged outcome of Decode. Record is always usable:
// on Fallback and Malformed it holds the role template, so callers degrade to
// role defaults without a separate error path.
type DecodeResult struct {
	Status DecodeStatus
	Record Record
	Raw    string
}

// Decode parses a stored detailed-permissions column for a user with the
// given role. Empty input and parse failures both degrade to the role
// template; nothing stored is overwritten until the caller saves.
func Decode(raw, role string) DecodeResult {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DecodeResult{Status: DecodeFallback, Record: ResolveTemplate(role)}
	}

	var rec Record
	if err := json.Unmarshal([]byte(trimmed), &rec); err != nil || rec == nil {
		return DecodeResult{Status: DecodeMalformed, Record: ResolveTemplate(role), Raw: raw}
	}
	return DecodeResult{Status: DecodeOK, Record: rec}
}

// Encode serializes a record for storage in the jsonb column.
func Encode(rec Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
