package service

import (
	"context"
	"errors"
	"fmt"

	"boards/internal/model"
	"boards/internal/repository"
)

// OwnershipResult is the outcome of checking a caller against a board's author.
type OwnershipResult int

const (
	OwnershipGranted OwnershipResult = iota
	OwnershipNotFound
	OwnershipViolation
)

func (r OwnershipResult) String() string {
	switch r {
	case OwnershipGranted:
		return "granted"
	case OwnershipNotFound:
		return "not_found"
	case OwnershipViolation:
		return "violation"
	default:
		return fmt.Sprintf("OwnershipResult(%d)", int(r))
	}
}

// CheckOwnership loads the board and compares its author with caller. A
// non-nil error means the lookup itself failed; the result is then meaningless.
func (s *BoardService) CheckOwnership(ctx context.Context, id uint, caller string) (OwnershipResult, *model.Board, error) {
	board, err := s.boards.GetByID(ctx, id)
	if errors.Is(err, repository.ErrBoardNotFound) {
		return OwnershipNotFound, nil, nil
	}
	if err != nil {
		return OwnershipNotFound, nil, fmt.Errorf("check ownership of board %d: %w", id, err)
	}
	if !board.IsOwnedBy(caller) {
		return OwnershipViolation, board, nil
	}
	return OwnershipGranted, board, nil
}
