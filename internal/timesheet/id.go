package timesheet

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// idLength is the number of hex characters kept from the digest.
const idLength = 16

// idSeparator joins the identity tuple before hashing. It is not expected to
// appear in any of the four fields.
const idSeparator = "|"

// EntryID derives the stable record key for a time log entry from its identity
// tuple (date, staff id, project id, task id). The same tuple always yields the
// same id across process restarts; any change to any field changes the id.
//
// Inputs must be non-empty; the caller validates them upstream.
func EntryID(date, staffID, projectID, taskID string) string {
	key := strings.Join([]string{date, staffID, projectID, taskID}, idSeparator)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:idLength]
}
