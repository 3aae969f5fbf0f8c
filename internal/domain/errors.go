package domain

import "errors"

// Error message constants - single source of truth for error messages.
// Handlers and tests match on these strings.
const (
	ErrMsgSlotOccupied        = "slot is already occupied"
	ErrMsgInsufficientFunds   = "insufficient funds"
	ErrMsgPoolLocked          = "slot pool is locked"
	ErrMsgNoCropAtSlot        = "no crop at slot"
	ErrMsgNotReady            = "crop is not ready for harvest"
	ErrMsgIdentityUnavailable = "identity unavailable"
	ErrMsgPersistenceFailure  = "persistence failure"

	ErrMsgUnknownSlot      = "unknown slot"
	ErrMsgUnknownCrop      = "unknown crop type"
	ErrMsgUnknownBonus     = "unknown bonus"
	ErrMsgUnknownResearch  = "unknown research item"
	ErrMsgAlreadyOnboarded = "bonus already selected"
	ErrMsgPlayerNotFound   = "player not found"
)

// Gameplay errors are expected, recoverable conditions: the engine reports
// them without altering state. Wrap with fmt.Errorf("%w: ...") for context.
var (
	ErrSlotOccupied      = errors.New(ErrMsgSlotOccupied)
	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrPoolLocked        = errors.New(ErrMsgPoolLocked)
	ErrNoCropAtSlot      = errors.New(ErrMsgNoCropAtSlot)
	ErrNotReady          = errors.New(ErrMsgNotReady)

	// ErrIdentityUnavailable is terminal for session start: the caller must
	// retry resolution rather than fabricate a player id.
	ErrIdentityUnavailable = errors.New(ErrMsgIdentityUnavailable)

	// ErrPersistenceFailure is non-fatal: the in-memory mutation already
	// happened and the next successful write reconciles state.
	ErrPersistenceFailure = errors.New(ErrMsgPersistenceFailure)

	// Validation errors
	ErrUnknownSlot      = errors.New(ErrMsgUnknownSlot)
	ErrUnknownCrop      = errors.New(ErrMsgUnknownCrop)
	ErrUnknownBonus     = errors.New(ErrMsgUnknownBonus)
	ErrUnknownResearch  = errors.New(ErrMsgUnknownResearch)
	ErrAlreadyOnboarded = errors.New(ErrMsgAlreadyOnboarded)
	ErrPlayerNotFound   = errors.New(ErrMsgPlayerNotFound)
)
