package gateway

import (
	"context"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var testContract = common.HexToAddress("0x00000000000000000000000000000000000000C1")

type fakeEthClient struct {
	fakeReceiptClient
	callResult  []byte
	callErr     error
	lastCall    ethereum.CallMsg
	logs        []types.Log
	lastQuery   ethereum.FilterQuery
	blockNumber uint64
	nonce       uint64
	gasPrice    *big.Int
	gasLimit    uint64
	estimateErr error
	sendErr     error
	sent        *types.Transaction
	chainID     *big.Int
}

func (f *fakeEthClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.lastCall = msg
	return f.callResult, f.callErr
}

func (f *fakeEthClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.lastQuery = q
	return f.logs, nil
}

func (f *fakeEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	return f.blockNumber, nil
}

func (f *fakeEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if f.gasPrice == nil {
		return big.NewInt(1), nil
	}
	return f.gasPrice, nil
}

func (f *fakeEthClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	if f.gasLimit == 0 {
		return 21_000, nil
	}
	return f.gasLimit, nil
}

func (f *fakeEthClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = tx
	return nil
}

func (f *fakeEthClient) ChainID(ctx context.Context) (*big.Int, error) {
	if f.chainID == nil {
		return big.NewInt(1), nil
	}
	return f.chainID, nil
}

func newTestGateway(t *testing.T, client *fakeEthClient, withKey bool) *EthGateway {
	t.Helper()
	opts := Options{Contract: testContract, GasHeadroomPct: 20}
	if withKey {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		opts.Key = key
	}
	gw, err := NewEthGateway(client, opts, slog.Default())
	require.NoError(t, err)
	return gw
}

func TestReadStateUnpacksOutputs(t *testing.T) {
	parsed := MarketABI()
	best := [32]byte(common.BytesToHash([]byte{0x07}))
	packed, err := parsed.Methods["bestAnswer"].Outputs.Pack(best)
	require.NoError(t, err)

	client := &fakeEthClient{callResult: packed}
	gw := newTestGateway(t, client, false)
	out, err := gw.ReadState(context.Background(), "bestAnswer", [32]byte(common.BytesToHash([]byte{0x51})))
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, best, out[0])
	require.Equal(t, &testContract, client.lastCall.To)
}

func TestQueryEventsPrependsEventTopic(t *testing.T) {
	client := &fakeEthClient{}
	gw := newTestGateway(t, client, false)
	questionTopic := common.BytesToHash([]byte{0x51})
	_, err := gw.QueryEvents(context.Background(), "NewAnswer", [][]common.Hash{{questionTopic}}, 5, 99)
	require.NoError(t, err)
	require.Equal(t, []common.Address{testContract}, client.lastQuery.Addresses)
	require.Len(t, client.lastQuery.Topics, 2)
	require.Equal(t, MarketABI().Events["NewAnswer"].ID, client.lastQuery.Topics[0][0])
	require.Equal(t, questionTopic, client.lastQuery.Topics[1][0])
	require.Equal(t, uint64(5), client.lastQuery.FromBlock.Uint64())
	require.Equal(t, uint64(99), client.lastQuery.ToBlock.Uint64())
}

func TestQueryEventsUnknownEvent(t *testing.T) {
	gw := newTestGateway(t, &fakeEthClient{}, false)
	_, err := gw.QueryEvents(context.Background(), "NoSuchEvent", nil, 0, 1)
	require.Error(t, err)
}

type decodedAnswer struct {
	QuestionID  [32]byte       `abi:"questionId"`
	User        common.Address `abi:"user"`
	Answer      [32]byte       `abi:"answer"`
	HistoryHash [32]byte       `abi:"historyHash"`
	Bond        *big.Int       `abi:"bond"`
	Ts          *big.Int       `abi:"ts"`
}

func TestDecodeEventRoundTrip(t *testing.T) {
	parsed := MarketABI()
	ev := parsed.Events["NewAnswer"]

	questionID := common.BytesToHash([]byte{0x51})
	user := common.HexToAddress("0x00000000000000000000000000000000000000A1")
	answer := [32]byte(common.BytesToHash([]byte{1}))
	history := [32]byte(common.BytesToHash([]byte{0x03}))
	data, err := ev.Inputs.NonIndexed().Pack(answer, history, big.NewInt(10), big.NewInt(1700000000))
	require.NoError(t, err)

	lg := types.Log{
		Address: testContract,
		Topics:  []common.Hash{ev.ID, questionID, common.BytesToHash(user.Bytes())},
		Data:    data,
	}
	gw := newTestGateway(t, &fakeEthClient{}, false)
	var decoded decodedAnswer
	require.NoError(t, gw.DecodeEvent("NewAnswer", lg, &decoded))
	require.Equal(t, [32]byte(questionID), decoded.QuestionID)
	require.Equal(t, user, decoded.User)
	require.Equal(t, answer, decoded.Answer)
	require.Equal(t, history, decoded.HistoryHash)
	require.Zero(t, decoded.Bond.Cmp(big.NewInt(10)))
}

func TestDecodeEventRejectsForeignLog(t *testing.T) {
	gw := newTestGateway(t, &fakeEthClient{}, false)
	lg := types.Log{Topics: []common.Hash{common.BytesToHash([]byte{0xEE})}}
	var decoded decodedAnswer
	require.Error(t, gw.DecodeEvent("NewAnswer", lg, &decoded))
}

func TestSubmitTransactionSignsAndSends(t *testing.T) {
	client := &fakeEthClient{nonce: 7, gasLimit: 100_000}
	gw := newTestGateway(t, client, true)
	handle, err := gw.SubmitTransaction(context.Background(), "claimWinnings",
		[32]byte(common.BytesToHash([]byte{0x51})),
		[][32]byte{},
		[]common.Address{},
		[]*big.Int{},
		[][32]byte{},
	)
	require.NoError(t, err)
	require.NotNil(t, handle)
	require.NotNil(t, client.sent)
	require.Equal(t, uint64(7), client.sent.Nonce())
	require.Equal(t, &testContract, client.sent.To())
	// 20% headroom on top of the estimate.
	require.Equal(t, uint64(120_000), client.sent.Gas())
	require.Equal(t, client.sent.Hash(), handle.Hash())
}

func TestSubmitTransactionRequiresKey(t *testing.T) {
	gw := newTestGateway(t, &fakeEthClient{}, false)
	_, err := gw.SubmitTransaction(context.Background(), "claimWinnings",
		[32]byte{}, [][32]byte{}, []common.Address{}, []*big.Int{}, [][32]byte{})
	require.Error(t, err)
}

func TestSubmitTransactionSurfacesRevertReason(t *testing.T) {
	reason := "history hash mismatch"
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	encoded, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)
	revertData := append(crypto.Keccak256([]byte("Error(string)"))[:4], encoded...)

	client := &fakeEthClient{estimateErr: fakeDataError{
		msg:  "execution reverted",
		data: hexutil.Encode(revertData),
	}}
	gw := newTestGateway(t, client, true)
	_, err = gw.SubmitTransaction(context.Background(), "claimWinnings",
		[32]byte{}, [][32]byte{}, []common.Address{}, []*big.Int{}, [][32]byte{})
	require.Error(t, err)
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, reason, subErr.Reason)
	require.Contains(t, subErr.Error(), reason)
}

type fakeDataError struct {
	msg  string
	data string
}

func (e fakeDataError) Error() string { return e.msg }

func (e fakeDataError) ErrorData() interface{} { return e.data }
