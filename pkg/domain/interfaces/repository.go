package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	FaultRecord() FaultRecordRepository

	Close() error
}
