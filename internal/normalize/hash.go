package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// CanonicalFields is the hashing order. Changing it requires a new logic version.
var CanonicalFields = []string{
	"transaction_date",
	"description",
	"amount_in",
	"amount_out",
	"counterparty",
	"source_file",
	"source_file_hash",
	"year",
	"month",
}

func canonicalSegments(t Transaction) ([]string, error) {
	required := map[string]bool{
		"transaction_date": t.TransactionDate != "",
		"source_file":      t.SourceFile != "",
		"source_file_hash": t.SourceFileHash != "",
		"year":             t.Year != 0,
		"month":            t.Month != "",
	}
	for _, f := range CanonicalFields {
		if present, checked := required[f]; checked && !present {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, f)
		}
	}
	return []string{
		t.TransactionDate,
		t.Description,
		t.AmountIn.StringFixed(2),
		t.AmountOut.StringFixed(2),
		t.Counterparty,
		t.SourceFile,
		t.SourceFileHash,
		strconv.Itoa(t.Year),
		t.Month,
	}, nil
}

// Hash fingerprints the canonical fields of t together with both versions as
// lower-case hex SHA-256.
func Hash(t Transaction, mappingVersion, logicVersion string) (string, error) {
	if mappingVersion == "" || logicVersion == "" {
		return "", ErrMissingVersion
	}
	segs, err := canonicalSegments(t)
	if err != nil {
		return "", err
	}
	segs = append(segs, mappingVersion, logicVersion)
	sum := sha256.Sum256([]byte(strings.Join(segs, "|")))
	return hex.EncodeToString(sum[:]), nil
}
