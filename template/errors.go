package template

// TemplateError reports a template parse/render failure, or a filter
// applied to a value of the wrong shape (inclause on a non-iterable,
// identifier on a non-string/non-iterable).
type TemplateError struct {
	Msg string
	Err error
}

func (e *TemplateError) Error() string {
	if e.Err != nil {
		return "template: " + e.Msg + ": " + e.Err.Error()
	}
	return "template: " + e.Msg
}

func (e *TemplateError) Unwrap() error { return e.Err }
