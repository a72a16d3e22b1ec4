package service

import (
	"context"

	"air_purifier/internal/appliance"
	"air_purifier/internal/models"
)

type MonitoringService struct {
	acc *guardedAccessory
}

func NewMonitoringService(acc *guardedAccessory) *MonitoringService {
	return &MonitoringService{acc: acc}
}

// GetState returns a snapshot of every characteristic. Nothing is persisted,
// so a fresh process always starts inactive in AUTO.
func (s *MonitoringService) GetState(ctx context.Context) (models.PurifierState, error) {
	_, st, err := s.acc.snapshot(ctx)
	return st, err
}

// Characteristics lists the legal operations per characteristic.
func (s *MonitoringService) Characteristics() []appliance.Descriptor {
	return appliance.Descriptors()
}
