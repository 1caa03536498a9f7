package runtime

// Must panics if err is non-nil. Only for startup wiring.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
