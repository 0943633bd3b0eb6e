package entity

import "errors"

// RawBodyError is implemented by remote-call failures that carry the server's
// response body.
type RawBodyError interface {
	error
	RawBody() string
}

// ResponseText returns the text surfaced to the operator for a failed call: the raw
// response body when the server sent one, otherwise the error message.
func ResponseText(err error) string {
	if err == nil {
		return ""
	}
	var rb RawBodyError
	if errors.As(err, &rb) {
		return rb.RawBody()
	}
	return err.Error()
}
