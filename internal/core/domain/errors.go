package domain

import "errors"

// Error kinds. Every error returned by the domain wraps exactly one of these,
// so that callers can classify failures with errors.Is.
var (
	// ErrValidation is the kind of malformed, missing or out-of-range input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is the kind of unknown order or session ids.
	ErrNotFound = errors.New("not found")
	// ErrConflict is the kind of duplicate or out-of-order submissions.
	ErrConflict = errors.New("conflict")
	// ErrTimeout is the kind of counterparty silence past a deadline.
	ErrTimeout = errors.New("timeout")
	// ErrDelivery is the kind of relay failures towards offline parties.
	ErrDelivery = errors.New("delivery error")
)

type kindError struct {
	kind error
	msg  string
}

func newError(kind error, msg string) error {
	return &kindError{kind, msg}
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

var (
	// ErrOrderMissingUid ...
	ErrOrderMissingUid = newError(ErrValidation, "missing order uid")
	// ErrOrderInvalidSide ...
	ErrOrderInvalidSide = newError(ErrValidation, "order side must be either bid or ask")
	// ErrOrderInvalidType ...
	ErrOrderInvalidType = newError(ErrValidation, "order type must be limit")
	// ErrOrderMissingAsset ...
	ErrOrderMissingAsset = newError(ErrValidation, "missing order base or quote asset")
	// ErrOrderMissingNetwork ...
	ErrOrderMissingNetwork = newError(ErrValidation, "missing order base or quote network")
	// ErrOrderSameAsset is returned if base and quote identify the same asset
	// on the same network.
	ErrOrderSameAsset = newError(ErrValidation, "order base and quote must differ")
	// ErrOrderInvalidQuantity ...
	ErrOrderInvalidQuantity = newError(ErrValidation, "order quantities must be positive")
	// ErrOrderInvalidHash ...
	ErrOrderInvalidHash = newError(ErrValidation, "order hash must be a 32-byte hex string")
	// ErrOrderPaddedField is returned if a text field of an order has leading
	// or trailing whitespace.
	ErrOrderPaddedField = newError(ErrValidation, "order fields must not be padded with whitespace")
	// ErrOrderMissingId ...
	ErrOrderMissingId = newError(ErrValidation, "missing order id")
	// ErrOrderNotFound ...
	ErrOrderNotFound = newError(ErrNotFound, "order not found")
	// ErrOrderAlreadyExists ...
	ErrOrderAlreadyExists = newError(ErrConflict, "order already exists")
	// ErrAssetNotSupported is returned if an asset/network pair is not part of
	// the supported asset registry.
	ErrAssetNotSupported = newError(ErrValidation, "asset not supported")
	// ErrMarketNotFound ...
	ErrMarketNotFound = newError(ErrNotFound, "market not found")
	// ErrMarketInvalid is returned when parsing a malformed market name.
	ErrMarketInvalid = newError(ErrValidation, "market must be in the form BASE@network/QUOTE@network")

	// ErrSwapInvalidMatch is returned when creating a session out of two
	// orders that do not form a valid pair.
	ErrSwapInvalidMatch = newError(ErrValidation, "orders do not form a valid swap pair")
	// ErrSwapNotFound ...
	ErrSwapNotFound = newError(ErrNotFound, "swap not found")
	// ErrSwapAlreadyExists ...
	ErrSwapAlreadyExists = newError(ErrConflict, "swap already exists")
	// ErrSwapMissingId ...
	ErrSwapMissingId = newError(ErrValidation, "missing swap id")
	// ErrSwapUnknownParty is returned if a submission comes from a user that
	// is not part of the session.
	ErrSwapUnknownParty = newError(ErrValidation, "party is not part of the swap")
	// ErrSwapMissingPublicInfo ...
	ErrSwapMissingPublicInfo = newError(ErrValidation, "missing swap public info")
	// ErrSwapMissingConfirmation ...
	ErrSwapMissingConfirmation = newError(ErrValidation, "missing swap confirmation")
	// ErrSwapInvalidPayload is returned if a party payload is not valid json.
	ErrSwapInvalidPayload = newError(ErrValidation, "swap payload must be valid json")
	// ErrSwapMissingSecretHash is returned if the secret-holder opens a
	// session without committing to a secret hash.
	ErrSwapMissingSecretHash = newError(ErrValidation, "secret holder must provide the secret hash")
	// ErrSwapInvalidSecretHash ...
	ErrSwapInvalidSecretHash = newError(ErrValidation, "secret hash must be a 32-byte hex string")
	// ErrSwapSecretHashMismatch is returned if the secret-holder submits a
	// hash other than the one the session is committed to.
	ErrSwapSecretHashMismatch = newError(ErrValidation, "secret hash does not match swap commitment")
	// ErrSwapInvalidSecret is returned if a revealed secret does not open the
	// session commitment.
	ErrSwapInvalidSecret = newError(ErrValidation, "secret does not match swap hash")
	// ErrSwapConflictingSubmission is returned if a party resubmits a step
	// with a payload different from the one already accepted.
	ErrSwapConflictingSubmission = newError(ErrConflict, "conflicting resubmission for swap step")
	// ErrSwapMustBeOpened is returned if a party commits before both parties
	// opened the session.
	ErrSwapMustBeOpened = newError(ErrConflict, "swap must be opened")
	// ErrSwapMustBeOpening is returned if a party opens a session that
	// already moved to the commit phase.
	ErrSwapMustBeOpening = newError(ErrConflict, "swap must be created or opening")
	// ErrSwapTerminated is returned for any submission to a committed or
	// errored session.
	ErrSwapTerminated = newError(ErrConflict, "swap is terminated")
	// ErrSwapAborted is the failure reason of sessions aborted by a party.
	ErrSwapAborted = newError(ErrConflict, "swap aborted by party")
	// ErrSwapShutdown is the failure reason of sessions still in progress when
	// the registry is closed.
	ErrSwapShutdown = newError(ErrConflict, "swap interrupted by shutdown")
	// ErrSwapExpired is the failure reason of sessions whose counterparty did
	// not advance before the deadline.
	ErrSwapExpired = newError(ErrTimeout, "swap expired waiting for counterparty")

	// ErrPartyNotConnected is returned if a party has no live relay channel.
	ErrPartyNotConnected = newError(ErrDelivery, "party not connected")
	// ErrPartyChannelFull is returned if a party channel cannot take more
	// events.
	ErrPartyChannelFull = newError(ErrDelivery, "party channel buffer is full")
)
