package storage

// ArchiveInterface defines the contract for cycle report archives
type ArchiveInterface interface {
	Store(filename string, data []byte) error
	Retrieve(filename string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(filename string) error
}
