package staking

import "errors"

var (
	errNilState   = errors.New("staking engine: state not configured")
	errNilGateway = errors.New("staking engine: token gateway not configured")

	// Validation errors.
	ErrInvalidAmount    = errors.New("staking engine: amount must be positive")
	ErrInvalidAPY       = errors.New("staking engine: apy must be positive")
	ErrInvalidAllowance = errors.New("staking engine: reward allowance must be positive")

	// State errors.
	ErrPoolExists         = errors.New("staking engine: pool already exists")
	ErrPoolNotFound       = errors.New("staking engine: pool does not exist")
	ErrStakingNotStarted  = errors.New("staking engine: staking not started")
	ErrPoolAlreadyStarted = errors.New("staking engine: pool already started")
	ErrPoolEnded          = errors.New("staking engine: pool validity deadline passed")
	ErrNothingStaked      = errors.New("staking engine: no amount staked")
	ErrClaimsPaused       = errors.New("staking engine: claims paused")
	ErrUnstakingPaused    = errors.New("staking engine: unstaking paused")

	// Authorization errors.
	ErrNotAdmin = errors.New("staking engine: caller is not the admin")

	// External errors. Gateway failures wrap this sentinel.
	ErrTransferFailed = errors.New("staking engine: token transfer failed")

	// ErrAlreadyStaked is part of the deployed error surface; no code path
	// raises it.
	ErrAlreadyStaked = errors.New("staking engine: already staked")
)
