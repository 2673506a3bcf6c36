package pipeline

import (
	"errors"

	"github.com/taxmint/statements/internal/ai"
	"github.com/taxmint/statements/internal/quota"
)

// Sentinel errors for the extraction pipeline. The API layer maps these to
// response codes, so every failure path must end in exactly one of them.
var (
	// ErrUnparseableDocument means the document could not be decoded at
	// all: corrupt PDF, unreadable workbook, empty file.
	ErrUnparseableDocument = errors.New("unparseable document")

	// ErrNoTransactionsFound means the document decoded fine but neither
	// the structural parsers nor the AI chain produced a single candidate.
	ErrNoTransactionsFound = errors.New("no transactions found")
)

// ErrorKind is a stable machine-readable classification for API responses
// and logs.
type ErrorKind string

const (
	KindUnparseableDocument ErrorKind = "unparseable-document"
	KindNoTransactions      ErrorKind = "no-transactions-found"
	KindInsufficientCredits ErrorKind = "insufficient-credits"
	KindAllProvidersFailed  ErrorKind = "all-providers-failed"
	KindMalformedOutput     ErrorKind = "malformed-provider-output"
	KindRateLimited         ErrorKind = "provider-rate-limited"
	KindInternal            ErrorKind = "internal"
)

// Classify maps any pipeline error to its kind. Unknown errors are internal.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUnparseableDocument):
		return KindUnparseableDocument
	case errors.Is(err, ErrNoTransactionsFound):
		return KindNoTransactions
	case errors.Is(err, quota.ErrInsufficientCredits):
		return KindInsufficientCredits
	case errors.Is(err, ai.ErrAllProvidersFailed):
		return KindAllProvidersFailed
	case errors.Is(err, ai.ErrMalformedOutput):
		return KindMalformedOutput
	case errors.Is(err, ai.ErrRateLimited):
		return KindRateLimited
	default:
		return KindInternal
	}
}
