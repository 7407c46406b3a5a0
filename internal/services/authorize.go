package services

import (
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/policy"
)

// authorize checks the static role table for actor.
func authorize(actor *models.Account, op policy.Operation) error {
	if actor == nil {
		return ErrUnauthorized
	}
	if !policy.Allows(actor.Role, op) {
		return ErrForbidden
	}
	return nil
}
