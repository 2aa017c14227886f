package memory

import (
	"github.com/leakwatch/leakwatch/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	faultRecord *faultRecordRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		faultRecord: newFaultRecordRepository(),
	}
}

func (m *Memory) FaultRecord() interfaces.FaultRecordRepository {
	return m.faultRecord
}

func (m *Memory) Close() error {
	return nil
}
