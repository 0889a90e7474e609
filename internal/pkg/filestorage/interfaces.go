package filestorage

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveBytes stores already-read content, keeping the extension of filename
	SaveBytes(data []byte, filename, subPath string) (string, error)

	// DeleteFile removes a file given the URL returned when it was saved
	DeleteFile(fileURL string) error
}
