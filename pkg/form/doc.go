// Package form validates the contact form and runs its simulated
// submission.
//
// Validators follow a simple contract: they take a field value and return
// nil or a ValidationError carrying the message shown to the user. Format
// validators accept empty values and leave emptiness to Required:
//
//	v := form.Email("")
//	v.Validate("a@b.co") // nil
//	v.Validate("a@b")    // ValidationError
//
// Contact.Validate applies the checks in the order users see them: missing
// fields first, then email, then phone.
//
// There is no backend. Submitter validates synchronously and, on success,
// reports success through a toast after a fixed delay.
package form
