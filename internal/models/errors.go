package models

import "github.com/rotisserie/eris"

// Error taxonomy shared by every stage of a classification run.
// Setup errors (configuration, parse) abort the run; the others are
// recorded against a single point and the batch continues.
var (
	ErrConfiguration     = eris.New("configuration error")
	ErrParse             = eris.New("parse error")
	ErrIndexOutOfRange   = eris.New("index out of range")
	ErrUnknownLabel      = eris.New("unknown label")
	ErrEmptyNeighborhood = eris.New("empty neighborhood")
)

// Reason maps err onto the name of its taxonomy class.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case eris.Is(err, ErrConfiguration):
		return "ConfigurationError"
	case eris.Is(err, ErrParse):
		return "ParseError"
	case eris.Is(err, ErrIndexOutOfRange):
		return "IndexOutOfRange"
	case eris.Is(err, ErrUnknownLabel):
		return "UnknownLabel"
	case eris.Is(err, ErrEmptyNeighborhood):
		return "EmptyNeighborhood"
	default:
		return "Error"
	}
}

// IsSetupError reports whether err must abort the whole run.
func IsSetupError(err error) bool {
	return eris.Is(err, ErrConfiguration) || eris.Is(err, ErrParse)
}
