package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gridlink/internal/source"
	"gridlink/internal/utils"
)

// DigestUnavailable marks a completed export whose digest could not be
// computed. The export itself still succeeded.
const DigestUnavailable = "error"

// Canonicalize renders rows as line-delimited JSON: one object per row,
// every record newline-terminated. Object keys are emitted in
// lexicographic order, so the byte sequence (and therefore the digest)
// is deterministic for semantically identical rows.
func Canonicalize(rows []source.Row) ([]byte, error) {
	var buf bytes.Buffer
	for _, row := range rows {
		line, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("export: canonicalize row: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Digest computes the content hash of a canonical export: SHA-256 over
// the exact bytes, lowercase hex, 0x-prefixed.
func Digest(canonical []byte) string {
	return "0x" + utils.HashBytes(canonical)
}
