package service

import (
	"github.com/epidash/backend/internal/domain"
)

// FetchLogRepository is re-exported from domain for convenience
type FetchLogRepository = domain.FetchLogRepository
