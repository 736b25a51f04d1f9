package repository

import (
	"errors"
	"fmt"

	"github.com/okian/podium/internal/domain/model"
)

// Store errors.
var (
	ErrReferenceNotFound = fmt.Errorf("%w: referenced community or sport", model.ErrNotFound)
	ErrStoreClosed       = errors.New("store closed")
)
