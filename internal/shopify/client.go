package shopify

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ecomai/internal/logger"
)

const apiVersion = "2023-10"

type Client struct {
	shopDomain  string
	accessToken string
	httpClient  *http.Client
	logger      *logger.Logger
}

func NewClient(shopDomain, accessToken string, logger *logger.Logger) *Client {
	return &Client{
		shopDomain:  shopDomain,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GetProducts fetches a page of products from Shopify
func (c *Client) GetProducts(limit int, sinceID int64) (*ProductsResponse, error) {
	url := fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/products.json", c.shopDomain, apiVersion)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("limit", fmt.Sprintf("%d", limit))
	if sinceID > 0 {
		q.Set("since_id", fmt.Sprintf("%d", sinceID))
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var productsResp ProductsResponse
	if err := json.NewDecoder(resp.Body).Decode(&productsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &productsResp, nil
}

// GetOrders fetches a page of orders created in [fromDate, toDate],
// paginating with since_id.
func (c *Client) GetOrders(limit int, sinceID int64, fromDate, toDate string) (*OrdersResponse, error) {
	url := fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/orders.json", c.shopDomain, apiVersion)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("status", "any")
	if sinceID > 0 {
		q.Set("since_id", fmt.Sprintf("%d", sinceID))
	}
	if fromDate != "" {
		q.Set("created_at_min", fromDate)
	}
	if toDate != "" {
		q.Set("created_at_max", toDate)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var ordersResp OrdersResponse
	if err := json.NewDecoder(resp.Body).Decode(&ordersResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &ordersResp, nil
}

// GetAllOrders walks the orders API until a short page comes back.
func (c *Client) GetAllOrders(fromDate, toDate string) ([]Order, error) {
	const pageSize = 250

	var all []Order
	var sinceID int64

	for {
		page, err := c.GetOrders(pageSize, sinceID, fromDate, toDate)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Orders...)
		if len(page.Orders) < pageSize {
			break
		}
		sinceID = page.Orders[len(page.Orders)-1].ID
	}

	c.logger.Debug("Fetched %d orders from %s", len(all), c.shopDomain)
	return all, nil
}
