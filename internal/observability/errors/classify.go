// Package errors derives low-cardinality error labels for metric and log tags.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/konutdata/hpi-processor/internal/errors"
)

// Classify maps an error to a stable tag value. Application errors label
// themselves with their code; for anything else the innermost wrapped error
// wins, and its Go type name is flattened to snake_case.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) && appErr.Code != "" {
		return string(appErr.Code)
	}

	t := reflect.TypeOf(rootCause(err))
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.NewReplacer("*", "", ".", "_").Replace(t.String())
	name = strings.ToLower(name)
	if name == "" {
		return "unknown"
	}
	return name
}

func rootCause(err error) error {
	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
