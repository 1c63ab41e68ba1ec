package form

import "errors"

// Contact field names, as sent by the page.
const (
	FieldFullName = "fullname"
	FieldPhone    = "phone"
	FieldEmail    = "email"
)

// Messages shown for each contact form outcome.
const (
	MsgMissingFields = "Please fill in all fields"
	MsgInvalidEmail  = "Please enter a valid email address"
	MsgInvalidPhone  = "Please enter a valid 10-digit phone number"
	MsgSubmitted     = "Thank you! We will contact you soon."
)

// Contact is a consultation request.
type Contact struct {
	FullName string
	Phone    string
	Email    string
}

// ContactFromFields builds a Contact from submitted field values.
func ContactFromFields(fields map[string]string) Contact {
	return Contact{
		FullName: fields[FieldFullName],
		Phone:    fields[FieldPhone],
		Email:    fields[FieldEmail],
	}
}

// Validate returns the first problem with the request, or nil. Every
// missing field is reported together before any format check runs.
func (c Contact) Validate() error {
	required := Required(MsgMissingFields)
	for _, f := range []struct{ name, value string }{
		{FieldFullName, c.FullName},
		{FieldPhone, c.Phone},
		{FieldEmail, c.Email},
	} {
		if err := Chain(f.name, f.value, required); err != nil {
			return err
		}
	}
	if err := Chain(FieldEmail, c.Email, Email(MsgInvalidEmail)); err != nil {
		return err
	}
	return Chain(FieldPhone, c.Phone, Phone(MsgInvalidPhone))
}

// ValidationMessage returns the user-facing message of a validation error,
// or err.Error() for anything else.
func ValidationMessage(err error) string {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
