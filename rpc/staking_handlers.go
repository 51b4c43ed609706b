package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"stakehub/observability/metrics"
)

type addPoolParams struct {
	Caller          string `json:"caller"`
	Name            string `json:"name"`
	StakingToken    string `json:"stakingToken"`
	RewardToken     string `json:"rewardToken"`
	APY             uint64 `json:"apy"`
	ValidityPeriod  uint64 `json:"validityPeriod"`
	RewardAllowance string `json:"rewardAllowance"`
}

type poolKeyParams struct {
	Caller       string `json:"caller"`
	StakingToken string `json:"stakingToken"`
}

type updateAPYParams struct {
	Caller       string `json:"caller"`
	StakingToken string `json:"stakingToken"`
	NewAPY       uint64 `json:"newApy"`
}

type feeWalletParams struct {
	Caller string `json:"caller"`
	Wallet string `json:"wallet"`
}

type gateParams struct {
	Caller string `json:"caller"`
}

type stakeParams struct {
	Caller       string `json:"caller"`
	StakingToken string `json:"stakingToken"`
	Amount       string `json:"amount"`
}

type positionParams struct {
	Account      string `json:"account"`
	StakingToken string `json:"stakingToken"`
}

type balanceParams struct {
	Token   string `json:"token"`
	Account string `json:"account"`
}

type poolResult struct {
	Name         string `json:"name"`
	StakingToken string `json:"stakingToken"`
	RewardToken  string `json:"rewardToken"`
	APY          uint64 `json:"apy"`
	StakingStart uint64 `json:"stakingStart"`
	Validity     uint64 `json:"validity"`
	Started      bool   `json:"started"`
	Exists       bool   `json:"exists"`
}

type positionResult struct {
	Principal     string `json:"principal"`
	DepositTime   uint64 `json:"depositTime"`
	LastAccrual   uint64 `json:"lastAccrual"`
	AccruedReward string `json:"accruedReward"`
}

type unstakeResult struct {
	Net    string `json:"net"`
	Fee    string `json:"fee"`
	Reward string `json:"reward"`
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseAddress(field, value string) (common.Address, error) {
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("invalid %s address", field)
	}
	return common.HexToAddress(trimmed), nil
}

func parseAmount(amount string) (*big.Int, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return nil, fmt.Errorf("amount is required")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount")
	}
	return value, nil
}

func (s *Server) handleAddPool(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params addPoolParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stakingToken, err := parseAddress("stakingToken", params.StakingToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	rewardToken, err := parseAddress("rewardToken", params.RewardToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	allowance, err := parseAmount(params.RewardAllowance)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	err = s.engine.AddPool(caller, params.Name, stakingToken, rewardToken, params.APY, params.ValidityPeriod, allowance)
	metrics.Staking().ObserveOperation("addPool", err)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	metrics.Staking().PoolConfigured()
	writeResult(w, req.ID, true)
}

func (s *Server) handleStartStaking(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	s.handleAdminPoolOp(w, r, req, "startStaking", s.engine.StartStaking)
}

func (s *Server) handlePauseStaking(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	s.handleAdminPoolOp(w, r, req, "pauseStaking", s.engine.PauseStaking)
}

func (s *Server) handleResumeStaking(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	s.handleAdminPoolOp(w, r, req, "resumeStaking", s.engine.ResumeStaking)
}

func (s *Server) handleAdminPoolOp(w http.ResponseWriter, r *http.Request, req *RPCRequest, method string, op func(common.Address, common.Address) error) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params poolKeyParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stakingToken, err := parseAddress("stakingToken", params.StakingToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	err = op(caller, stakingToken)
	metrics.Staking().ObserveOperation(method, err)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleUpdatePoolAPY(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params updateAPYParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stakingToken, err := parseAddress("stakingToken", params.StakingToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	err = s.engine.UpdatePoolAPY(caller, stakingToken, params.NewAPY)
	metrics.Staking().ObserveOperation("updatePoolAPY", err)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetFeeWallet(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params feeWalletParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	wallet, err := parseAddress("wallet", params.Wallet)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	err = s.engine.SetFeeWallet(caller, wallet)
	metrics.Staking().ObserveOperation("setFeeWallet", err)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetClaimsGate(w http.ResponseWriter, r *http.Request, req *RPCRequest, paused bool) {
	op := s.engine.StartClaims
	method := "startClaims"
	if paused {
		op = s.engine.PauseClaims
		method = "pauseClaims"
	}
	s.handleGateOp(w, r, req, method, op)
}

func (s *Server) handleSetUnstakingGate(w http.ResponseWriter, r *http.Request, req *RPCRequest, paused bool) {
	op := s.engine.StartUnstaking
	method := "startUnstaking"
	if paused {
		op = s.engine.PauseUnstaking
		method = "pauseUnstaking"
	}
	s.handleGateOp(w, r, req, method, op)
}

func (s *Server) handleGateOp(w http.ResponseWriter, r *http.Request, req *RPCRequest, method string, op func(common.Address) error) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params gateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	err = op(caller)
	metrics.Staking().ObserveOperation(method, err)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleStake(w http.ResponseWriter, req *RPCRequest) {
	var params stakeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stakingToken, err := parseAddress("stakingToken", params.StakingToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	principal, err := s.engine.Stake(caller, stakingToken, amount)
	metrics.Staking().ObserveOperation("stake", err)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"principal": principal.String()})
}

func (s *Server) handleClaimRewards(w http.ResponseWriter, req *RPCRequest) {
	var params positionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress("account", params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stakingToken, err := parseAddress("stakingToken", params.StakingToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	paid, err := s.engine.ClaimRewards(caller, stakingToken)
	metrics.Staking().ObserveOperation("claimRewards", err)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"paid": paid.String()})
}

func (s *Server) handleUnstake(w http.ResponseWriter, req *RPCRequest) {
	var params positionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress("account", params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stakingToken, err := parseAddress("stakingToken", params.StakingToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	net, fee, reward, err := s.engine.Unstake(caller, stakingToken)
	metrics.Staking().ObserveOperation("unStake", err)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, unstakeResult{Net: net.String(), Fee: fee.String(), Reward: reward.String()})
}

func (s *Server) handleRewardPerSecond(w http.ResponseWriter, req *RPCRequest) {
	var params positionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	account, err := parseAddress("account", params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stakingToken, err := parseAddress("stakingToken", params.StakingToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	rate, err := s.engine.RewardPerSecondFor(account, stakingToken)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"rewardPerSecond": rate.String()})
}

func (s *Server) handleViewRewards(w http.ResponseWriter, req *RPCRequest) {
	var params positionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	account, err := parseAddress("account", params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stakingToken, err := parseAddress("stakingToken", params.StakingToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	reward, err := s.engine.ViewRewards(account, stakingToken)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"rewards": reward.String()})
}

func (s *Server) handleGetPool(w http.ResponseWriter, req *RPCRequest) {
	var params poolKeyParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stakingToken, err := parseAddress("stakingToken", params.StakingToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	pool, err := s.engine.GetPool(stakingToken)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, poolResult{
		Name:         pool.Name,
		StakingToken: pool.StakingToken.Hex(),
		RewardToken:  pool.RewardToken.Hex(),
		APY:          pool.APY,
		StakingStart: pool.StakingStart,
		Validity:     pool.Validity,
		Started:      pool.Started,
		Exists:       pool.Exists,
	})
}

func (s *Server) handleGetPosition(w http.ResponseWriter, req *RPCRequest) {
	var params positionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	account, err := parseAddress("account", params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stakingToken, err := parseAddress("stakingToken", params.StakingToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	position, err := s.engine.GetPosition(account, stakingToken)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, positionResult{
		Principal:     position.Principal.String(),
		DepositTime:   position.DepositTime,
		LastAccrual:   position.LastAccrual,
		AccruedReward: position.AccruedReward.String(),
	})
}

func (s *Server) handleBalanceOf(w http.ResponseWriter, req *RPCRequest) {
	var params balanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	tok, err := parseAddress("token", params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	account, err := parseAddress("account", params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	balance, err := s.ledger.BalanceOf(tok, account)
	if err != nil {
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]string{"balance": balance.String()})
}
