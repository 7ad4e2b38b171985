package inquiry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// OrderGateway is the provider-agnostic interface for opening a
// negotiable order in the external commerce platform. The core depends
// only on this single call's success/failure and the returned reference.
type OrderGateway interface {
	// CreateDraftOrder opens an unpriced order tagged for manual shipping
	// review and returns the platform's order reference.
	CreateDraftOrder(ctx context.Context, lead Lead, note string) (string, error)
}

// shopifyGateway creates draft orders through the Shopify admin API.
type shopifyGateway struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewShopifyGateway builds a gateway against the given shop admin URL
// (e.g. https://my-store.myshopify.com) using an admin API access token.
func NewShopifyGateway(baseURL, token string) OrderGateway {
	return &shopifyGateway{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type draftOrderLineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Grams    int    `json:"grams,omitempty"`
}

type draftOrderAddress struct {
	Address1 string `json:"address1,omitempty"`
	Zip      string `json:"zip"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type draftOrderPayload struct {
	DraftOrder struct {
		LineItems       []draftOrderLineItem `json:"line_items"`
		Email           string               `json:"email,omitempty"`
		Note            string               `json:"note,omitempty"`
		Tags            string               `json:"tags"`
		ShippingAddress *draftOrderAddress   `json:"shipping_address,omitempty"`
	} `json:"draft_order"`
}

type draftOrderResponse struct {
	DraftOrder struct {
		ID int64 `json:"id"`
	} `json:"draft_order"`
}

func (g *shopifyGateway) CreateDraftOrder(ctx context.Context, lead Lead, note string) (string, error) {
	payload := draftOrderPayload{}
	for _, item := range lead.Items {
		payload.DraftOrder.LineItems = append(payload.DraftOrder.LineItems, draftOrderLineItem{
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    formatMinorUnits(item.Price),
			Grams:    item.Grams,
		})
	}
	// A draft order needs at least one line; checkout callbacks very early
	// in the flow can arrive with an empty cart.
	if len(payload.DraftOrder.LineItems) == 0 {
		payload.DraftOrder.LineItems = []draftOrderLineItem{{
			Title:    "Shipping inquiry placeholder",
			Quantity: 1,
			Price:    "0.00",
		}}
	}
	payload.DraftOrder.Email = lead.Email
	payload.DraftOrder.Note = note
	payload.DraftOrder.Tags = "manual-shipping-review"
	payload.DraftOrder.ShippingAddress = &draftOrderAddress{
		Address1: lead.Address,
		Zip:      lead.Postcode,
		Name:     lead.CustomerName,
		Phone:    lead.Phone,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode draft order: %w", err)
	}

	url := g.baseURL + "/admin/api/2024-01/draft_orders.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build draft order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create draft order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("create draft order: status %d: %s", resp.StatusCode, snippet)
	}

	var decoded draftOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode draft order response: %w", err)
	}
	if decoded.DraftOrder.ID == 0 {
		return "", fmt.Errorf("draft order response carried no id")
	}
	return strconv.FormatInt(decoded.DraftOrder.ID, 10), nil
}

// formatMinorUnits renders cents as the decimal string the platform
// expects, e.g. 129500 -> "1295.00".
func formatMinorUnits(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
