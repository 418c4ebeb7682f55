package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/walletstory/walletstory/internal/domain"
	"github.com/walletstory/walletstory/pkg/retrier"
)

const (
	// DefaultEtherscanURL is the mainnet Etherscan API endpoint.
	DefaultEtherscanURL = "https://api.etherscan.io/api"

	etherscanTimeout = 30 * time.Second
	txPageSize       = 10000 // Etherscan's maximum for txlist
	transferPageSize = 1000
)

var (
	// ErrEtherscanRateLimited means the upstream API throttled us.
	ErrEtherscanRateLimited = errors.New("etherscan rate limit reached")
	// ErrEtherscanInvalidKey means the configured API key was rejected.
	ErrEtherscanInvalidKey = errors.New("invalid etherscan API key")
)

// EtherscanClient fetches account history from the Etherscan REST API.
type EtherscanClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	retrier    *retrier.Retrier
	logger     *zap.Logger
}

// NewEtherscanClient creates a client for the given endpoint and key.
func NewEtherscanClient(apiURL, apiKey string, logger *zap.Logger) *EtherscanClient {
	if apiURL == "" {
		apiURL = DefaultEtherscanURL
	}
	return &EtherscanClient{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: etherscanTimeout,
		},
		retrier: retrier.New(retrier.WithMaxRetries(2)),
		logger:  logger,
	}
}

// envelope is Etherscan's uniform response wrapper. Status "0" covers both
// hard errors and the benign "No transactions found".
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// raw record shapes: Etherscan returns every field as a string.

type etherscanTx struct {
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	GasPrice    string `json:"gasPrice"`
	GasUsed     string `json:"gasUsed"`
	IsError     string `json:"isError"`
}

type etherscanTokenTx struct {
	TimeStamp       string `json:"timeStamp"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenName       string `json:"tokenName"`
	ContractAddress string `json:"contractAddress"`
	From            string `json:"from"`
	To              string `json:"to"`
}

type etherscanNftTx struct {
	TimeStamp       string `json:"timeStamp"`
	TokenName       string `json:"tokenName"`
	TokenID         string `json:"tokenID"`
	ContractAddress string `json:"contractAddress"`
}

// Balance returns the current balance in wei.
func (c *EtherscanClient) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	raw, err := c.fetch(ctx, url.Values{
		"module":  {"account"},
		"action":  {"balance"},
		"address": {address},
		"tag":     {"latest"},
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	var wei string
	if err := json.Unmarshal(raw, &wei); err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "decode balance result")
	}
	balance, err := decimal.NewFromString(wei)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "parse balance %q", wei)
	}
	return balance, nil
}

// Transactions returns the wallet's native transfers, ascending by timestamp.
// A wallet with no history yields an empty slice, not an error.
func (c *EtherscanClient) Transactions(ctx context.Context, address string) ([]domain.NativeTransfer, error) {
	raw, err := c.fetch(ctx, url.Values{
		"module":     {"account"},
		"action":     {"txlist"},
		"address":    {address},
		"startblock": {"0"},
		"endblock":   {"99999999"},
		"page":       {"1"},
		"offset":     {strconv.Itoa(txPageSize)},
		"sort":       {"asc"},
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var records []etherscanTx
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(err, "decode txlist result")
	}

	transfers := make([]domain.NativeTransfer, 0, len(records))
	for _, r := range records {
		ts, err := strconv.ParseInt(r.TimeStamp, 10, 64)
		if err != nil {
			c.logger.Warn("skipping tx with unparseable timestamp",
				zap.String("hash", r.Hash), zap.String("timestamp", r.TimeStamp))
			continue
		}
		transfers = append(transfers, domain.NativeTransfer{
			BlockNumber: r.BlockNumber,
			Timestamp:   ts,
			Hash:        r.Hash,
			From:        r.From,
			To:          r.To,
			ValueWei:    r.Value,
			GasPrice:    r.GasPrice,
			GasUsed:     r.GasUsed,
			Failed:      r.IsError == "1",
		})
	}
	return transfers, nil
}

// TokenTransfers returns the wallet's ERC-20 transfers, ascending by timestamp.
func (c *EtherscanClient) TokenTransfers(ctx context.Context, address string) ([]domain.TokenTransfer, error) {
	raw, err := c.fetch(ctx, url.Values{
		"module":  {"account"},
		"action":  {"tokentx"},
		"address": {address},
		"page":    {"1"},
		"offset":  {strconv.Itoa(transferPageSize)},
		"sort":    {"asc"},
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var records []etherscanTokenTx
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(err, "decode tokentx result")
	}

	transfers := make([]domain.TokenTransfer, 0, len(records))
	for _, r := range records {
		ts, _ := strconv.ParseInt(r.TimeStamp, 10, 64)
		transfers = append(transfers, domain.TokenTransfer{
			Timestamp:       ts,
			TokenSymbol:     r.TokenSymbol,
			TokenName:       r.TokenName,
			ContractAddress: r.ContractAddress,
			From:            r.From,
			To:              r.To,
		})
	}
	return transfers, nil
}

// NFTTransfers returns the wallet's ERC-721 transfers, ascending by timestamp.
func (c *EtherscanClient) NFTTransfers(ctx context.Context, address string) ([]domain.NFTTransfer, error) {
	raw, err := c.fetch(ctx, url.Values{
		"module":  {"account"},
		"action":  {"tokennfttx"},
		"address": {address},
		"page":    {"1"},
		"offset":  {strconv.Itoa(transferPageSize)},
		"sort":    {"asc"},
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var records []etherscanNftTx
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(err, "decode tokennfttx result")
	}

	transfers := make([]domain.NFTTransfer, 0, len(records))
	for _, r := range records {
		ts, _ := strconv.ParseInt(r.TimeStamp, 10, 64)
		transfers = append(transfers, domain.NFTTransfer{
			Timestamp:       ts,
			TokenName:       r.TokenName,
			TokenID:         r.TokenID,
			ContractAddress: r.ContractAddress,
		})
	}
	return transfers, nil
}

// fetch performs one Etherscan call and unwraps the envelope. A nil result
// with nil error means "no records found".
func (c *EtherscanClient) fetch(ctx context.Context, params url.Values) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, errors.New("etherscan API key is not configured")
	}
	params.Set("apikey", c.apiKey)

	requestURL := c.apiURL + "?" + params.Encode()

	body, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, errors.Wrap(err, "create etherscan request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, errors.Wrap(err, "etherscan request failed")
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "read etherscan response")
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("etherscan returned status %d: %s", resp.StatusCode, string(payload))
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "decode etherscan envelope")
	}

	if env.Status == "0" {
		var detail string
		_ = json.Unmarshal(env.Result, &detail)

		switch {
		case env.Message == "No transactions found":
			return nil, nil
		case strings.Contains(detail, "rate limit"):
			return nil, ErrEtherscanRateLimited
		case strings.Contains(detail, "Invalid API Key"):
			return nil, ErrEtherscanInvalidKey
		default:
			return nil, fmt.Errorf("etherscan error: %s - %s", env.Message, detail)
		}
	}

	return env.Result, nil
}
