package entities

// InterfaceResult is the outcome of one interface status check
type InterfaceResult struct {
	Name       string
	StatusLine string
	Err        error
}

// Failed reports whether the status command itself could not be executed
func (i InterfaceResult) Failed() bool {
	return i.Err != nil
}
