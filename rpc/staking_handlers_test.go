package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"stakehub/native/staking"
	"stakehub/state"
	"stakehub/storage"
	"stakehub/token"
)

const testToken = "test-secret"

var (
	adminAddr   = common.HexToAddress("0x00000000000000000000000000000000000000AD")
	aliceAddr   = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	custodyAddr = common.HexToAddress("0x0000000000000000000000000000000000000A11")
	stakingTok  = common.HexToAddress("0x0000000000000000000000000000000000000571")
	rewardTok   = common.HexToAddress("0x0000000000000000000000000000000000000572")
)

type testEnv struct {
	server *httptest.Server
	ledger *token.Ledger
	now    *uint64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(AuthTokenEnv, testToken)

	db := storage.NewMemDB()
	ledger := token.NewLedger(db)
	require.NoError(t, ledger.Mint(rewardTok, adminAddr, big.NewInt(1_000_000)))
	require.NoError(t, ledger.Mint(stakingTok, aliceAddr, big.NewInt(1_000_000)))

	now := uint64(1_700_000_000)
	engine := staking.NewEngine()
	engine.SetState(state.NewStakingStore(db))
	engine.SetGateway(token.NewVaultGateway(ledger, custodyAddr))
	engine.SetAuthorizer(staking.SingleAdmin{Admin: adminAddr})
	engine.SetNowFunc(func() uint64 { return now })

	server := httptest.NewServer(NewServer(engine, ledger, nil).Router())
	t.Cleanup(server.Close)
	return &testEnv{server: server, ledger: ledger, now: &now}
}

func (e *testEnv) call(t *testing.T, method string, params interface{}, bearer string) RPCResponse {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	body, err := json.Marshal(RPCRequest{
		JSONRPC: jsonRPCVersion,
		Method:  method,
		Params:  []json.RawMessage{raw},
		ID:      1,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func addPoolParamsFixture(caller common.Address) addPoolParams {
	return addPoolParams{
		Caller:          caller.Hex(),
		Name:            "main",
		StakingToken:    stakingTok.Hex(),
		RewardToken:     rewardTok.Hex(),
		APY:             5,
		ValidityPeriod:  172800,
		RewardAllowance: "500000",
	}
}

func TestAddPoolRequiresBearerToken(t *testing.T) {
	env := newTestEnv(t)
	resp := env.call(t, "staking_addPool", addPoolParamsFixture(adminAddr), "")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	resp = env.call(t, "staking_addPool", addPoolParamsFixture(adminAddr), "wrong-secret")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)
}

func TestAddPoolRequiresAdminCaller(t *testing.T) {
	env := newTestEnv(t)
	resp := env.call(t, "staking_addPool", addPoolParamsFixture(aliceAddr), testToken)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)
}

func TestStakeLifecycleOverRPC(t *testing.T) {
	env := newTestEnv(t)

	resp := env.call(t, "staking_addPool", addPoolParamsFixture(adminAddr), testToken)
	require.Nil(t, resp.Error)

	resp = env.call(t, "staking_getPool", poolKeyParams{StakingToken: stakingTok.Hex()}, "")
	require.Nil(t, resp.Error)
	var pool poolResult
	requireResult(t, resp, &pool)
	require.True(t, pool.Exists)
	require.False(t, pool.Started)
	require.Equal(t, uint64(5), pool.APY)

	// Staking before activation is rejected.
	resp = env.call(t, "staking_stake", stakeParams{
		Caller: aliceAddr.Hex(), StakingToken: stakingTok.Hex(), Amount: "1000",
	}, "")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeServerError, resp.Error.Code)
	require.Contains(t, resp.Error.Message, "not started")

	resp = env.call(t, "staking_startStaking", poolKeyParams{
		Caller: adminAddr.Hex(), StakingToken: stakingTok.Hex(),
	}, testToken)
	require.Nil(t, resp.Error)

	resp = env.call(t, "staking_stake", stakeParams{
		Caller: aliceAddr.Hex(), StakingToken: stakingTok.Hex(), Amount: "1000",
	}, "")
	require.Nil(t, resp.Error)

	var stakeRes map[string]string
	requireResult(t, resp, &stakeRes)
	require.Equal(t, "1000", stakeRes["principal"])

	// The deposit moved into custody.
	balance, err := env.ledger.BalanceOf(stakingTok, custodyAddr)
	require.NoError(t, err)
	require.Equal(t, "501000", balance.String()) // 500000 allowance + 1000 stake

	resp = env.call(t, "staking_getPosition", positionParams{
		Account: aliceAddr.Hex(), StakingToken: stakingTok.Hex(),
	}, "")
	require.Nil(t, resp.Error)
	var position positionResult
	requireResult(t, resp, &position)
	require.Equal(t, "1000", position.Principal)
}

func TestUnstakeOverRPC(t *testing.T) {
	env := newTestEnv(t)
	require.Nil(t, env.call(t, "staking_addPool", addPoolParamsFixture(adminAddr), testToken).Error)
	require.Nil(t, env.call(t, "staking_startStaking", poolKeyParams{
		Caller: adminAddr.Hex(), StakingToken: stakingTok.Hex(),
	}, testToken).Error)
	require.Nil(t, env.call(t, "staking_stake", stakeParams{
		Caller: aliceAddr.Hex(), StakingToken: stakingTok.Hex(), Amount: "1000000",
	}, "").Error)

	*env.now += 86400

	resp := env.call(t, "staking_unStake", positionParams{
		Account: aliceAddr.Hex(), StakingToken: stakingTok.Hex(),
	}, "")
	require.Nil(t, resp.Error)
	var result unstakeResult
	requireResult(t, resp, &result)
	// 0.5% early-exit fee on 1_000_000.
	require.Equal(t, "995000", result.Net)
	require.Equal(t, "5000", result.Fee)
}

func TestClaimGateOverRPC(t *testing.T) {
	env := newTestEnv(t)
	require.Nil(t, env.call(t, "staking_addPool", addPoolParamsFixture(adminAddr), testToken).Error)
	require.Nil(t, env.call(t, "staking_startStaking", poolKeyParams{
		Caller: adminAddr.Hex(), StakingToken: stakingTok.Hex(),
	}, testToken).Error)
	require.Nil(t, env.call(t, "staking_stake", stakeParams{
		Caller: aliceAddr.Hex(), StakingToken: stakingTok.Hex(), Amount: "1000",
	}, "").Error)

	require.Nil(t, env.call(t, "staking_pauseClaims", gateParams{Caller: adminAddr.Hex()}, testToken).Error)
	resp := env.call(t, "staking_claimRewards", positionParams{
		Account: aliceAddr.Hex(), StakingToken: stakingTok.Hex(),
	}, "")
	require.NotNil(t, resp.Error)
	require.Contains(t, resp.Error.Message, "claims paused")

	require.Nil(t, env.call(t, "staking_startClaims", gateParams{Caller: adminAddr.Hex()}, testToken).Error)
	resp = env.call(t, "staking_claimRewards", positionParams{
		Account: aliceAddr.Hex(), StakingToken: stakingTok.Hex(),
	}, "")
	require.Nil(t, resp.Error)
}

func TestMethodNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp := env.call(t, "staking_unknown", struct{}{}, "")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestBalanceOf(t *testing.T) {
	env := newTestEnv(t)
	resp := env.call(t, "token_balanceOf", balanceParams{
		Token: stakingTok.Hex(), Account: aliceAddr.Hex(),
	}, "")
	require.Nil(t, resp.Error)
	var result map[string]string
	requireResult(t, resp, &result)
	require.Equal(t, "1000000", result["balance"])
}

func requireResult(t *testing.T, resp RPCResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
