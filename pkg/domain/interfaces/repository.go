package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Complaint() ComplaintRepository
	Close() error
}
