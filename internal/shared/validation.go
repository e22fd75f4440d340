package shared

import (
	"unicode"
	"unicode/utf8"
)

// ValidationFailure is one failed rule as reported by a validator.
type ValidationFailure struct {
	PropertyName string
	ErrorMessage string
}

// NormalizeFieldName converts a property name into the key clients see:
// the first character is lowercased and the rest is kept ("PostGuid" -> "postGuid").
func NormalizeFieldName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}

// ValidationErrors turns validator failures into Validation errors, one per
// failure, in the order they were reported.
func ValidationErrors(failures []ValidationFailure) []Error {
	errs := make([]Error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, ValidationError(NormalizeFieldName(f.PropertyName), f.ErrorMessage))
	}
	return errs
}

// FieldErrors collects the metadata of every Validation error in r into a
// field -> messages map. Messages for a repeated field are appended in order.
// A result without Validation errors yields an empty map.
func FieldErrors[T any](r Result[T]) map[string][]string {
	out := make(map[string][]string)
	_, errs := r.HasError(KindValidation)
	for _, e := range errs {
		for _, m := range e.Metadata {
			out[m.Key] = append(out[m.Key], m.Value)
		}
	}
	return out
}
