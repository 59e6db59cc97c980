package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/kkkkikiki/loyalty/internal/form"
	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/store"
)

// Sentinel errors for the loyalty service layer.
var (
	ErrMissingOwner  = errors.New("owner id is required")
	ErrInvalidAmount = errors.New("visit amount must not be negative")
)

var invalidArgument = []error{
	ErrMissingOwner,
	ErrInvalidAmount,
	form.ErrUnknownField,
	form.ErrInvalidField,
	model.ErrInvalidCampaignType,
	model.ErrInvalidDate,
	model.ErrInvalidObjective,
	model.ErrMissingName,
	model.ErrMissingReward,
	model.ErrEndBeforeStart,
}

// connectCode maps a service error to the RPC status returned to callers.
func connectCode(err error) connect.Code {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, form.ErrNotOwner):
		return connect.CodePermissionDenied
	case errors.Is(err, ErrCampaignInactive):
		return connect.CodeFailedPrecondition
	case model.IsStoreError(err):
		return connect.CodeUnavailable
	}
	for _, target := range invalidArgument {
		if errors.Is(err, target) {
			return connect.CodeInvalidArgument
		}
	}
	return connect.CodeInternal
}

func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return err
	}
	return connect.NewError(connectCode(err), err)
}
