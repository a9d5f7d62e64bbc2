package validator

// Validator validates a struct according to its tags.
type Validator interface {
	Validate(data any) error
}
