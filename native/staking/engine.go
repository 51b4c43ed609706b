package staking

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"stakehub/core/events"
	nativecommon "stakehub/native/common"
)

type engineState interface {
	GetPool(token common.Address) (*Pool, error)
	PutPool(pool *Pool) error
	GetStake(owner, token common.Address) (*UserStake, error)
	PutStake(stake *UserStake) error
}

// TokenGateway moves tokens between external ledgers and the module custody.
// Both calls are synchronous and atomic-or-fail.
type TokenGateway interface {
	TransferIn(token, from common.Address, amount *big.Int) error
	TransferOut(token, to common.Address, amount *big.Int) error
}

// Authorizer answers whether an account holds the admin capability.
type Authorizer interface {
	IsAdmin(addr common.Address) bool
}

// SingleAdmin authorizes exactly one privileged principal.
type SingleAdmin struct {
	Admin common.Address
}

// IsAdmin implements the Authorizer interface.
func (a SingleAdmin) IsAdmin(addr common.Address) bool { return addr == a.Admin }

// Engine orchestrates pool configuration, stake accounting, reward accrual
// and fee collection. Every public operation runs under the engine mutex so
// state transitions are serialized; record writes are finalized before any
// gateway call and restored if the transfer fails.
type Engine struct {
	mu        sync.Mutex
	state     engineState
	gateway   TokenGateway
	auth      Authorizer
	gates     *nativecommon.GateSet
	emitter   events.Emitter
	nowFn     func() uint64
	feeBps    uint64
	feeWallet *common.Address
}

// NewEngine constructs a staking engine with the default unstake fee, fresh
// lifecycle gates and a no-op emitter.
func NewEngine() *Engine {
	return &Engine{
		gates:   nativecommon.NewGateSet(),
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
		feeBps:  DefaultUnstakeFeeBps,
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetGateway wires the token movement gateway.
func (e *Engine) SetGateway(gateway TokenGateway) { e.gateway = gateway }

// SetAuthorizer configures the admin capability check.
func (e *Engine) SetAuthorizer(auth Authorizer) { e.auth = auth }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetUnstakeFeeBps overrides the early-exit fee (over the 1000 denominator).
func (e *Engine) SetUnstakeFeeBps(bps uint64) { e.feeBps = bps }

// Gates exposes the lifecycle gate set, e.g. for read-only status endpoints.
func (e *Engine) Gates() *nativecommon.GateSet { return e.gates }

func (e *Engine) now() uint64 { return e.nowFn() }

func (e *Engine) requireAdmin(caller common.Address) error {
	if e.auth == nil || !e.auth.IsAdmin(caller) {
		return ErrNotAdmin
	}
	return nil
}

func (e *Engine) loadPool(token common.Address) (*Pool, error) {
	if e.state == nil {
		return nil, errNilState
	}
	pool, err := e.state.GetPool(token)
	if err != nil {
		return nil, err
	}
	if pool == nil || !pool.Exists {
		return nil, ErrPoolNotFound
	}
	return pool, nil
}

func (e *Engine) loadStake(owner, token common.Address) (*UserStake, error) {
	if e.state == nil {
		return nil, errNilState
	}
	stake, err := e.state.GetStake(owner, token)
	if err != nil {
		return nil, err
	}
	if stake == nil {
		stake = &UserStake{Owner: owner, StakingToken: token}
	}
	stake.normalize()
	return stake, nil
}

func (e *Engine) emit(evt events.Event) {
	if e.emitter != nil {
		e.emitter.Emit(evt)
	}
}

// AddPool registers a new pool keyed by the staking-token address and pulls
// the reward allowance from the caller into module custody. Admin only.
func (e *Engine) AddPool(caller common.Address, name string, stakingToken, rewardToken common.Address, apy uint64, validityPeriod uint64, rewardAllowance *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return errNilState
	}
	if e.gateway == nil {
		return errNilGateway
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if apy == 0 {
		return ErrInvalidAPY
	}
	if rewardAllowance == nil || rewardAllowance.Sign() <= 0 {
		return ErrInvalidAllowance
	}
	existing, err := e.state.GetPool(stakingToken)
	if err != nil {
		return err
	}
	if existing != nil && existing.Exists {
		return ErrPoolExists
	}

	pool := &Pool{
		Name:         name,
		StakingToken: stakingToken,
		RewardToken:  rewardToken,
		APY:          apy,
		Validity:     validityPeriod,
		Exists:       true,
	}
	if err := e.state.PutPool(pool); err != nil {
		return err
	}
	if err := e.gateway.TransferIn(rewardToken, caller, rewardAllowance); err != nil {
		// Unwind the registration so the key stays available.
		_ = e.state.PutPool(&Pool{StakingToken: stakingToken})
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	e.emit(events.PoolCreated{
		Name:         name,
		StakingToken: stakingToken,
		RewardToken:  rewardToken,
		APY:          apy,
		Allowance:    new(big.Int).Set(rewardAllowance),
	})
	return nil
}

// StartStaking activates a pool, fixing its validity deadline to now plus the
// configured duration. Rejected once the pool is already started. Admin only.
func (e *Engine) StartStaking(caller, stakingToken common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	pool, err := e.loadPool(stakingToken)
	if err != nil {
		return err
	}
	if pool.Started {
		return ErrPoolAlreadyStarted
	}
	now := e.now()
	pool.StakingStart = now
	pool.Validity = pool.Validity + now
	pool.Started = true
	if err := e.state.PutPool(pool); err != nil {
		return err
	}
	e.emit(events.PoolStarted{StakingToken: stakingToken, StartTime: now, ValidUntil: pool.Validity})
	return nil
}

// PauseStaking clears the started flag. Like the original deployment, the
// guard only admits pools that have not started, so this is a
// configuration-phase toggle rather than a runtime pause. Admin only.
func (e *Engine) PauseStaking(caller, stakingToken common.Address) error {
	return e.setStartedPreStart(caller, stakingToken, false)
}

// ResumeStaking sets the started flag without fixing a deadline; only
// StartStaking converts the validity duration. Gated to the pre-start phase
// like PauseStaking. Admin only.
func (e *Engine) ResumeStaking(caller, stakingToken common.Address) error {
	return e.setStartedPreStart(caller, stakingToken, true)
}

func (e *Engine) setStartedPreStart(caller, stakingToken common.Address, started bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	pool, err := e.loadPool(stakingToken)
	if err != nil {
		return err
	}
	if pool.Started {
		return ErrPoolAlreadyStarted
	}
	pool.Started = started
	return e.state.PutPool(pool)
}

// UpdatePoolAPY edits the annual rate while the pool has not started. Admin
// only.
func (e *Engine) UpdatePoolAPY(caller, stakingToken common.Address, newAPY uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	pool, err := e.loadPool(stakingToken)
	if err != nil {
		return err
	}
	if pool.Started {
		return ErrPoolAlreadyStarted
	}
	if newAPY == 0 {
		return ErrInvalidAPY
	}
	oldAPY := pool.APY
	pool.APY = newAPY
	if err := e.state.PutPool(pool); err != nil {
		return err
	}
	e.emit(events.PoolAPYUpdated{StakingToken: stakingToken, OldAPY: oldAPY, NewAPY: newAPY})
	return nil
}

// SetFeeWallet configures the fee sink receiving early-exit fees. With no
// sink configured fees stay in module custody. Admin only.
func (e *Engine) SetFeeWallet(caller, wallet common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	cloned := wallet
	e.feeWallet = &cloned
	return nil
}

// PauseClaims halts reward claims across all pools. Admin only.
func (e *Engine) PauseClaims(caller common.Address) error {
	return e.setGate(caller, nativecommon.GateClaims, true)
}

// StartClaims re-enables reward claims. Admin only.
func (e *Engine) StartClaims(caller common.Address) error {
	return e.setGate(caller, nativecommon.GateClaims, false)
}

// PauseUnstaking halts withdrawals across all pools. Admin only.
func (e *Engine) PauseUnstaking(caller common.Address) error {
	return e.setGate(caller, nativecommon.GateUnstaking, true)
}

// StartUnstaking re-enables withdrawals. Admin only.
func (e *Engine) StartUnstaking(caller common.Address) error {
	return e.setGate(caller, nativecommon.GateUnstaking, false)
}

// PauseGlobalStaking toggles the staking gate. The flag is carried for
// interface compatibility; no guard consults it.
func (e *Engine) PauseGlobalStaking(caller common.Address, paused bool) error {
	return e.setGate(caller, nativecommon.GateStaking, paused)
}

func (e *Engine) setGate(caller common.Address, gate string, paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.gates.SetPaused(gate, paused)
	return nil
}

// Stake deposits principal into a pool. Accrual runs first for an existing
// position so earlier rewards survive the timestamp reset. Returns the new
// principal.
func (e *Engine) Stake(caller, stakingToken common.Address, amount *big.Int) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, errNilState
	}
	if e.gateway == nil {
		return nil, errNilGateway
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	pool, err := e.loadPool(stakingToken)
	if err != nil {
		return nil, err
	}
	if !pool.Started {
		return nil, ErrStakingNotStarted
	}
	now := e.now()
	if now > pool.Validity {
		return nil, ErrPoolEnded
	}

	stake, err := e.loadStake(caller, stakingToken)
	if err != nil {
		return nil, err
	}
	prior := stake.Clone()

	if stake.Principal.Sign() > 0 {
		accrue(stake, pool, now)
	}
	stake.Principal = new(big.Int).Add(stake.Principal, amount)
	stake.DepositTime = now
	stake.LastAccrual = now

	if err := e.state.PutStake(stake); err != nil {
		return nil, err
	}
	if err := e.gateway.TransferIn(stakingToken, caller, amount); err != nil {
		_ = e.state.PutStake(prior)
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	e.emit(events.Staked{
		Account:      caller,
		StakingToken: stakingToken,
		Amount:       new(big.Int).Set(amount),
		NewPrincipal: new(big.Int).Set(stake.Principal),
	})
	return new(big.Int).Set(stake.Principal), nil
}

// ClaimRewards accrues and pays out the caller's full pending reward. Returns
// the amount paid.
func (e *Engine) ClaimRewards(caller, stakingToken common.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.claimLocked(caller, stakingToken)
}

func (e *Engine) claimLocked(caller, stakingToken common.Address) (*big.Int, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if e.gateway == nil {
		return nil, errNilGateway
	}
	if err := nativecommon.Guard(e.gates, nativecommon.GateClaims); err != nil {
		return nil, ErrClaimsPaused
	}
	pool, err := e.loadPool(stakingToken)
	if err != nil {
		return nil, err
	}
	stake, err := e.loadStake(caller, stakingToken)
	if err != nil {
		return nil, err
	}
	if stake.Principal.Sign() == 0 {
		return nil, ErrNothingStaked
	}
	prior := stake.Clone()

	accrue(stake, pool, e.now())
	paid := new(big.Int).Set(stake.AccruedReward)
	stake.AccruedReward = big.NewInt(0)

	if err := e.state.PutStake(stake); err != nil {
		return nil, err
	}
	if err := e.gateway.TransferOut(pool.RewardToken, caller, paid); err != nil {
		_ = e.state.PutStake(prior)
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	e.emit(events.RewardsClaimed{Account: caller, StakingToken: stakingToken, Paid: new(big.Int).Set(paid)})
	return paid, nil
}

// Unstake pays out pending rewards, deducts the early-exit fee when the pool
// deadline has not passed, returns the remaining principal to the caller and
// resets the position. Returns (net principal, fee, reward paid).
func (e *Engine) Unstake(caller, stakingToken common.Address) (*big.Int, *big.Int, *big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.gates, nativecommon.GateUnstaking); err != nil {
		return nil, nil, nil, ErrUnstakingPaused
	}
	reward, err := e.claimLocked(caller, stakingToken)
	if err != nil {
		return nil, nil, nil, err
	}
	pool, err := e.loadPool(stakingToken)
	if err != nil {
		return nil, nil, nil, err
	}
	stake, err := e.loadStake(caller, stakingToken)
	if err != nil {
		return nil, nil, nil, err
	}
	prior := stake.Clone()

	principal := new(big.Int).Set(stake.Principal)
	now := e.now()
	fee := big.NewInt(0)
	if now < pool.Validity {
		fee = earlyExitFee(principal, e.feeBps)
	}
	net := new(big.Int).Sub(principal, fee)

	stake.Principal = big.NewInt(0)
	stake.AccruedReward = big.NewInt(0)
	stake.DepositTime = 0
	stake.LastAccrual = 0
	if err := e.state.PutStake(stake); err != nil {
		return nil, nil, nil, err
	}
	if err := e.gateway.TransferOut(stakingToken, caller, net); err != nil {
		_ = e.state.PutStake(prior)
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if fee.Sign() > 0 && e.feeWallet != nil {
		if err := e.gateway.TransferOut(stakingToken, *e.feeWallet, fee); err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
	}
	e.emit(events.Unstaked{
		Account:      caller,
		StakingToken: stakingToken,
		Principal:    principal,
		Fee:          fee,
		Net:          new(big.Int).Set(net),
	})
	return net, fee, reward, nil
}

// RewardPerSecondFor reports the current per-second reward rate of a
// position. Read only.
func (e *Engine) RewardPerSecondFor(owner, stakingToken common.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.loadPool(stakingToken)
	if err != nil {
		return nil, err
	}
	stake, err := e.loadStake(owner, stakingToken)
	if err != nil {
		return nil, err
	}
	return RewardPerSecond(stake.Principal, pool.APY), nil
}

// ViewRewards projects the reward accrued through the current instant without
// persisting the accrual. Read only.
func (e *Engine) ViewRewards(owner, stakingToken common.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.loadPool(stakingToken)
	if err != nil {
		return nil, err
	}
	stake, err := e.loadStake(owner, stakingToken)
	if err != nil {
		return nil, err
	}
	return projectReward(stake, pool, e.now()), nil
}

// GetPool returns a copy of the pool record. Read only.
func (e *Engine) GetPool(stakingToken common.Address) (*Pool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, err := e.loadPool(stakingToken)
	if err != nil {
		return nil, err
	}
	return pool.Clone(), nil
}

// GetPosition returns a copy of the caller's stake record, zero-initialized
// when no deposit was ever made. Read only.
func (e *Engine) GetPosition(owner, stakingToken common.Address) (*UserStake, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.loadPool(stakingToken); err != nil {
		return nil, err
	}
	stake, err := e.loadStake(owner, stakingToken)
	if err != nil {
		return nil, err
	}
	return stake.Clone(), nil
}
