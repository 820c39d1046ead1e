package warehouse

import "errors"

var (
	errNotObject    = errors.New("line is not a JSON object")
	errTrailingData = errors.New("unexpected data after JSON object")
)
