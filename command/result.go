package command

// Result is the structured return value of a handler. A non-empty Err
// marks failure; Data carries named result fields on success.
//
// Two keys have delivery semantics: "resultId" (uint64 or float64)
// becomes the callback record's ResultID, and "resultJson" (string)
// becomes its ResultJSON.
type Result struct {
	Data map[string]any
	Err  string
}

// Success builds a success result. data may be nil for a bare ack.
func Success(data map[string]any) Result {
	return Result{Data: data}
}

// Failure builds an error result with a descriptive message.
func Failure(message string) Result {
	return Result{Err: message}
}

// IsSuccess reports whether the handler succeeded.
func (r Result) IsSuccess() bool { return r.Err == "" }

// IsError reports whether the handler failed.
func (r Result) IsError() bool { return r.Err != "" }

// Handler processes one command payload on the main thread and returns
// a structured result. Handlers must not re-enter the executor for the
// same command.
type Handler func(payload any) Result
