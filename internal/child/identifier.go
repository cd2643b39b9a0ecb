package child

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentifierPrefix tags identifiers issued for the child-record domain.
const IdentifierPrefix = "BABY"

// NewIdentifier produces a candidate identifier of the form
// BABY-YYYY-XXXXXXXX: the wall-clock year at generation time plus the first
// 8 hex characters of a random UUID, uppercased.
//
// The generator performs no uniqueness check; the store's unique constraint
// rejects the (vanishingly rare) collision and callers retry with a fresh
// candidate.
func NewIdentifier(now time.Time) string {
	u := uuid.New()
	suffix := strings.ToUpper(hex.EncodeToString(u[:4]))
	return fmt.Sprintf("%s-%04d-%s", IdentifierPrefix, now.Year(), suffix)
}
