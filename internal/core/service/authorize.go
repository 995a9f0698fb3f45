package service

import (
	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/pkg/metrics"
)

// authorize applies the capability matrix and counts refusals.
func authorize(p domain.Principal, action domain.Action) error {
	if err := domain.Authorize(p, action); err != nil {
		metrics.AuthorizationDenialsTotal.WithLabelValues(string(action)).Inc()
		return err
	}
	return nil
}
