package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID creates a compact, human-readable identifier of the form
// {kind}-{8charHexUUID}, e.g. "incident-a3f8e2b1".
func GenerateID(kind string) string {
	return kind + "-" + shortUUID()
}

// shortUUID creates an 8-character hex string from a UUID. Sufficient
// uniqueness for ids that also carry a kind prefix.
func shortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
