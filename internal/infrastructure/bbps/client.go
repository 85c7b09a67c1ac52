package bbps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sevapay.backend/internal/config"
	domainerrors "sevapay.backend/internal/domain/errors"
)

// Client talks to the BBPS aggregator. Every call runs under a deadline so
// a hung vendor surfaces as ErrTimeout instead of an indefinite wait.
type Client struct {
	baseURL     string
	agentID     string
	apiKey      string
	callTimeout time.Duration
	httpClient  *http.Client
}

// NewClient creates a new aggregator client from config
func NewClient(cfg config.BBPSConfig) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		agentID:     cfg.AgentID,
		apiKey:      cfg.APIKey,
		callTimeout: cfg.CallTimeout,
		httpClient:  &http.Client{},
	}
}

// GetCategories lists bill categories
func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	var out struct {
		Categories []Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// GetBillers lists billers for a category
func (c *Client) GetBillers(ctx context.Context, categoryName string) ([]Biller, error) {
	var out struct {
		Billers []Biller `json:"billers"`
	}
	path := "/billers?category=" + url.QueryEscape(categoryName)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Billers, nil
}

// FetchBill fetches the outstanding bill for the given consumer parameters
func (c *Client) FetchBill(ctx context.Context, billerID string, params map[string]string) (*FetchBillResponse, error) {
	body := map[string]interface{}{
		"billerId":    billerID,
		"inputParams": params,
	}
	var out FetchBillResponse
	if err := c.do(ctx, http.MethodPost, "/bill/fetch", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pay executes the bill payment
func (c *Client) Pay(ctx context.Context, req *PayRequest) (*PayResponse, error) {
	var out PayResponse
	if err := c.do(ctx, http.MethodPost, "/bill/pay", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransactionStatus polls the status of a payment by vendor transaction id
func (c *Client) TransactionStatus(ctx context.Context, txnID string) (*StatusResponse, error) {
	var out StatusResponse
	path := "/transaction-status?txnRefId=" + url.QueryEscape(txnID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterComplaint registers a complaint against a transaction
func (c *Client) RegisterComplaint(ctx context.Context, req *ComplaintRequest) (*ComplaintResponse, error) {
	var out ComplaintResponse
	if err := c.do(ctx, http.MethodPost, "/complaint/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agent-Id", c.agentID)
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return domainerrors.ErrTimeout
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		// Vendor errors carry a message body worth surfacing verbatim.
		var vendorErr struct {
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(data, &vendorErr); jsonErr == nil && vendorErr.Message != "" {
			return fmt.Errorf("aggregator error (%d): %s", resp.StatusCode, vendorErr.Message)
		}
		return fmt.Errorf("aggregator error (%d)", resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}
