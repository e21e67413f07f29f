package orchestrate

// Message resolves a user-facing progress string from an action's
// arguments. Call sites that don't need the arguments can use Static.
//
// A Message is resolved exactly once per invocation, before the
// operation starts, so UI observers always see the progress text
// before the first backend call.
type Message[A any] func(A) string

// Static returns a Message that ignores its arguments.
func Static[A any](text string) Message[A] {
	return func(A) string { return text }
}

// ErrorText resolves a user-facing error string from an action's
// arguments and the normalized failure.
type ErrorText[A any] func(args A, cause error) string

// StaticError returns an ErrorText that ignores both arguments.
func StaticError[A any](text string) ErrorText[A] {
	return func(A, error) string { return text }
}
