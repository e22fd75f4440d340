// Package shared contains the result algebra every request handler returns and
// the closed taxonomy of domain failures it carries.
//
// # Results
//
// A handler answers with a Result[T]: either Ok(value) or Fail(errs...).
// Failures hold at least one Error and keep them in insertion order:
//
//	if post == nil {
//	    return shared.Fail[*PostDTO](shared.NotFoundError()), nil
//	}
//	return shared.Ok(toDTO(post)), nil
//
// The zero Result is neither a success nor a failure. It is what remains when a
// request is aborted by an unexpected error, and the HTTP layer answers it with
// a server error.
//
// # Error Kinds
//
//	Kind            | Message
//	----------------|-----------------------------
//	KindNotFound    | Not found error
//	KindSave        | Save error
//	KindService     | Service error
//	KindValidation  | Validation error: <message>
//	KindGeneric     | caller supplied
//
// Membership checks go through HasError, which matches by Kind:
//
//	if ok, _ := r.HasError(shared.KindNotFound); ok {
//	    // 404
//	}
//
// # Validation
//
// ValidationErrors converts validator failures into one Validation error per
// failure, keyed by the normalized field name (first letter lowercased).
// FieldErrors folds them back into a map[string][]string for the response body.
//
// # Plain Go errors
//
// Infrastructure failures are ordinary errors. Use Wrap/Wrapf to add context,
// IsCanceled/IsTimeout to classify them in logs.
package shared
