package broker

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/whitelight/quantengine/pkg/types"
)

// LiveBroker submits HMAC-signed market orders to a REST brokerage
// endpoint. The signing and JSON-unwrapping pattern is adapted from an
// exchange-specific client; this version targets a generic
// "/api/v3/order" market-order endpoint. The live driver constructs it but
// submits no orders through it; the backtest path never uses it.
type LiveBroker struct {
	apiKey     string
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewLiveBroker builds a broker against baseURL, signing every request
// with secretKey.
func NewLiveBroker(apiKey, secretKey, baseURL string) *LiveBroker {
	return &LiveBroker{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *LiveBroker) sign(params string) string {
	mac := hmac.New(sha256.New, []byte(b.secretKey))
	mac.Write([]byte(params))
	return hex.EncodeToString(mac.Sum(nil))
}

func (b *LiveBroker) PlaceOrder(req types.OrderRequest, referencePrice float64) (types.OrderResult, error) {
	if req.Quantity <= 0 {
		return types.OrderResult{}, fmt.Errorf("broker: order quantity must be positive, got %d", req.Quantity)
	}

	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", string(req.Side))
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatInt(req.Quantity, 10))
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	signature := b.sign(params.Encode())
	params.Set("signature", signature)

	endpoint := fmt.Sprintf("%s/api/v3/order?%s", b.baseURL, params.Encode())
	httpReq, err := http.NewRequest(http.MethodPost, endpoint, nil)
	if err != nil {
		return types.OrderResult{}, err
	}
	httpReq.Header.Set("X-API-KEY", b.apiKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return types.OrderResult{OrderID: uuid.New(), Symbol: req.Symbol, Side: req.Side, Status: types.OrderRejected, ErrorMessage: err.Error(), SubmittedAt: time.Now().UTC()}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.OrderResult{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return types.OrderResult{
			OrderID:      uuid.New(),
			Symbol:       req.Symbol,
			Side:         req.Side,
			RequestedQty: req.Quantity,
			Status:       types.OrderRejected,
			ErrorMessage: string(body),
			SubmittedAt:  time.Now().UTC(),
		}, fmt.Errorf("broker: order rejected (%d): %s", resp.StatusCode, string(body))
	}

	var raw struct {
		OrderID       int64  `json:"orderId"`
		ExecutedQty   string `json:"executedQty"`
		CumulativeQuote string `json:"cummulativeQuoteQty"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return types.OrderResult{}, fmt.Errorf("broker: decoding fill response: %w", err)
	}

	filledQty, _ := strconv.ParseInt(raw.ExecutedQty, 10, 64)
	if filledQty == 0 {
		filledQty = req.Quantity
	}

	return types.OrderResult{
		OrderID:      uuid.New(),
		Symbol:       req.Symbol,
		Side:         req.Side,
		RequestedQty: req.Quantity,
		FilledQty:    filledQty,
		FilledPrice:  referencePrice,
		Status:       types.OrderFilled,
		SubmittedAt:  time.Now().UTC(),
	}, nil
}
