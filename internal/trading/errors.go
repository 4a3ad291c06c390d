package trading

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindInvalidOrder         Kind = "invalid_order"
	KindUnknownAsset         Kind = "unknown_asset"
	KindExactlyOneSizeField  Kind = "exactly_one_size_field"
	KindZeroSizeOrder        Kind = "zero_size_order"
	KindCooldownActive       Kind = "cooldown_active"
	KindBankrupt             Kind = "bankrupt"
	KindNoPosition           Kind = "no_position"
	KindInsufficientPosition Kind = "insufficient_position"
	KindRiskViolation        Kind = "risk_violation"
	KindNonPositiveEquity    Kind = "non_positive_equity"
	KindAccountNotFound      Kind = "account_not_found"
	KindMissingPrice         Kind = "missing_price"
	KindMarketUnavailable    Kind = "market_unavailable"
	KindStorage              Kind = "storage_failure"
)

// Error is the structured failure the engine surfaces instead of raw
// errors: a machine kind, a human message, a remediation hint and the HTTP
// status class callers key off (400 validation, 403 policy, 404 not found,
// 500 infrastructure).
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Retryable reports whether the caller may retry with backoff. Only
// infrastructure failures qualify; policy and validation rejections are
// final for the same input.
func (e *Error) Retryable() bool {
	return e.Status >= http.StatusInternalServerError
}

func AsTradeError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

func validationErr(kind Kind, msg, hint string) *Error {
	return &Error{Kind: kind, Message: msg, Hint: hint, Status: http.StatusBadRequest}
}

func policyErr(kind Kind, msg, hint string) *Error {
	return &Error{Kind: kind, Message: msg, Hint: hint, Status: http.StatusForbidden}
}

func notFoundErr(kind Kind, msg, hint string) *Error {
	return &Error{Kind: kind, Message: msg, Hint: hint, Status: http.StatusNotFound}
}

func infraErr(kind Kind, msg, hint string) *Error {
	return &Error{Kind: kind, Message: msg, Hint: hint, Status: http.StatusInternalServerError}
}
