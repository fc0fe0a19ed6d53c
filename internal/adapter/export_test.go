package adapter

// ResetFactories clears registered factories and returns a restore func.
func ResetFactories() func() {
	factoriesMu.Lock()
	saved := factories
	factories = nil
	factoriesMu.Unlock()
	return func() {
		factoriesMu.Lock()
		factories = saved
		factoriesMu.Unlock()
	}
}
