// Package gateway adapts the generic contract-call surface — read state,
// query events, submit a transaction — onto an Ethereum-style JSON-RPC node
// via go-ethereum. It owns ABI binding, signing, gas parameters, and
// confirmation tracking so the market package stays pure.
package gateway

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"oraclemarket/observability"
)

// EthClient is the subset of ethclient.Client the gateway depends on.
type EthClient interface {
	ReceiptClient
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	BlockNumber(ctx context.Context) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	ChainID(ctx context.Context) (*big.Int, error)
}

// Dial connects to the JSON-RPC endpoint with an instrumented HTTP transport.
func Dial(ctx context.Context, endpoint string) (*ethclient.Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("rpc endpoint required")
	}
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}
	rpcClient, err := rpc.DialOptions(ctx, trimmed, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", trimmed, err)
	}
	return ethclient.NewClient(rpcClient), nil
}

// Options configures an EthGateway. Everything that was implicit per-instance
// state in older client designs is explicit here.
type Options struct {
	// Contract is the oracle market contract address.
	Contract common.Address
	// Key signs submitted transactions. Read paths work without it.
	Key *ecdsa.PrivateKey
	// GasHeadroomPct is added on top of the node's gas estimate.
	GasHeadroomPct uint64
	// RateLimit caps outgoing RPC calls per second; zero disables limiting.
	RateLimit float64
	// RateBurst is the limiter burst size; defaults to 1 when limiting is on.
	RateBurst int
}

// EthGateway implements the contract-call gateway over an Ethereum client.
// It is safe for concurrent use; queries for unrelated questions may run
// fully in parallel.
type EthGateway struct {
	client   EthClient
	contract common.Address
	abi      abi.ABI
	key      *ecdsa.PrivateKey
	sender   common.Address
	headroom uint64
	limiter  *rate.Limiter
	log      *slog.Logger
}

// NewEthGateway constructs a gateway bound to the market contract.
func NewEthGateway(client EthClient, opts Options, log *slog.Logger) (*EthGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("eth client required")
	}
	if (opts.Contract == common.Address{}) {
		return nil, fmt.Errorf("contract address required")
	}
	if log == nil {
		log = slog.Default()
	}
	gw := &EthGateway{
		client:   client,
		contract: opts.Contract,
		abi:      MarketABI(),
		key:      opts.Key,
		headroom: opts.GasHeadroomPct,
		log:      log,
	}
	if opts.Key != nil {
		gw.sender = crypto.PubkeyToAddress(opts.Key.PublicKey)
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		gw.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return gw, nil
}

// Sender returns the address transactions are signed with.
func (g *EthGateway) Sender() common.Address {
	if g == nil {
		return common.Address{}
	}
	return g.sender
}

func (g *EthGateway) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}

// ReadState performs an eth_call against the contract and returns the
// unpacked outputs.
func (g *EthGateway) ReadState(ctx context.Context, method string, args ...any) ([]any, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := g.readState(ctx, method, args...)
	observability.Gateway().Observe("read_state", outcome(err), time.Since(start))
	return out, err
}

func (g *EthGateway) readState(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := g.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	result, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &g.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	out, err := g.abi.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

// QueryEvents fetches the contract's logs for the named event over the block
// range, with the supplied values filtering the event's indexed fields in
// order. Logs come back exactly as the node returns them: ledger order,
// nothing omitted or deduplicated.
func (g *EthGateway) QueryEvents(ctx context.Context, event string, topics [][]common.Hash, fromBlock, toBlock uint64) ([]types.Log, error) {
	ev, ok := g.abi.Events[event]
	if !ok {
		return nil, fmt.Errorf("unknown event %q", event)
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	query := ethereum.FilterQuery{
		Addresses: []common.Address{g.contract},
		Topics:    append([][]common.Hash{{ev.ID}}, topics...),
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
	}
	start := time.Now()
	logs, err := g.client.FilterLogs(ctx, query)
	observability.Gateway().Observe("query_events", outcome(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("filter %s logs: %w", event, err)
	}
	return logs, nil
}

// DecodeEvent unpacks a raw log into out, filling both data and indexed
// topic fields.
func (g *EthGateway) DecodeEvent(event string, lg types.Log, out any) error {
	ev, ok := g.abi.Events[event]
	if !ok {
		return fmt.Errorf("unknown event %q", event)
	}
	if len(lg.Topics) == 0 || lg.Topics[0] != ev.ID {
		return fmt.Errorf("log does not match event %q", event)
	}
	if len(lg.Data) > 0 {
		if err := g.abi.UnpackIntoInterface(out, event, lg.Data); err != nil {
			return fmt.Errorf("unpack %s data: %w", event, err)
		}
	}
	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopics(out, indexed, lg.Topics[1:]); err != nil {
		return fmt.Errorf("parse %s topics: %w", event, err)
	}
	return nil
}

// LatestBlock returns the current head block number.
func (g *EthGateway) LatestBlock(ctx context.Context) (uint64, error) {
	if err := g.wait(ctx); err != nil {
		return 0, err
	}
	start := time.Now()
	head, err := g.client.BlockNumber(ctx)
	observability.Gateway().Observe("latest_block", outcome(err), time.Since(start))
	if err != nil {
		return 0, fmt.Errorf("fetch head: %w", err)
	}
	return head, nil
}

// SubmitTransaction packs, signs, and broadcasts a contract call, returning a
// handle for confirmation tracking. Remote rejections — including a claim
// chain the verifier refuses — surface as a SubmissionError carrying the
// revert reason verbatim.
func (g *EthGateway) SubmitTransaction(ctx context.Context, method string, args ...any) (*TxHandle, error) {
	if g.key == nil {
		return nil, fmt.Errorf("submission requires a signing key")
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	handle, err := g.submit(ctx, method, args...)
	observability.Gateway().Observe("submit_transaction", outcome(err), time.Since(start))
	return handle, err
}

func (g *EthGateway) submit(ctx context.Context, method string, args ...any) (*TxHandle, error) {
	data, err := g.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	nonce, err := g.client.PendingNonceAt(ctx, g.sender)
	if err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}
	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch gas price: %w", err)
	}
	gasLimit, err := g.client.EstimateGas(ctx, ethereum.CallMsg{
		From: g.sender,
		To:   &g.contract,
		Data: data,
	})
	if err != nil {
		// Estimation executes the call; a revert here carries the remote
		// verifier's reason.
		return nil, newSubmissionError(method, err)
	}
	if g.headroom > 0 {
		gasLimit += gasLimit * g.headroom / 100
	}
	chainID, err := g.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &g.contract,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), g.key)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", method, err)
	}
	if err := g.client.SendTransaction(ctx, signed); err != nil {
		return nil, newSubmissionError(method, err)
	}
	g.log.Info("transaction submitted",
		"method", method,
		"tx", signed.Hash().Hex(),
		"nonce", nonce,
		"gas", gasLimit,
	)
	return NewTxHandle(g.client, signed.Hash()), nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
