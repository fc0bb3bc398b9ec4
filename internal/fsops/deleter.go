package fsops

// Deleter abstracts filesystem remove operations
// Enables mocking in tests to observe exactly which paths are removed
type Deleter interface {
	Remove(path string) error
}
