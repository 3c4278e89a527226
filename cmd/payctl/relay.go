package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	v1 "github.com/blossomshop/payments/internal/api/v1"
	"github.com/blossomshop/payments/internal/model"
	"github.com/blossomshop/payments/internal/session"
	"github.com/blossomshop/payments/pkg/httpclient"
)

// relayClient speaks to the payments API on behalf of one payment attempt.
// It serves both session roles: Initiator for the push, StatusFetcher for
// the poll loop.
type relayClient struct {
	client  httpclient.HTTPClient
	baseURL string
	token   string
	orderID string
	phone   string
}

func newRelayClient(baseURL, token, orderID, phone string) *relayClient {
	return &relayClient{
		client:  httpclient.NewHTTPClient(30 * time.Second),
		baseURL: baseURL,
		token:   token,
		orderID: orderID,
		phone:   phone,
	}
}

func (r *relayClient) Initiate(ctx context.Context, paymentID string) error {
	create := v1.CreatePaymentRequest{PaymentID: paymentID, OrderID: r.orderID, Phone: r.phone}
	if err := r.post(ctx, "/v1/payments", create, nil); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	initiate := v1.InitiatePaymentRequest{PaymentID: paymentID, OrderID: r.orderID, Phone: r.phone}
	if err := r.post(ctx, "/v1/payments/initiate", initiate, nil); err != nil {
		return fmt.Errorf("initiate payment: %w", err)
	}

	return nil
}

func (r *relayClient) FetchStatus(ctx context.Context, paymentID string) (session.PaymentStatus, error) {
	resp, err := r.client.Get(ctx, r.baseURL+"/v1/payments/"+paymentID, r.headers())
	if err != nil {
		return session.PaymentStatus{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return session.PaymentStatus{}, r.asError(resp)
	}

	var record v1.PaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return session.PaymentStatus{}, err
	}

	return session.PaymentStatus{
		Status:        model.PaymentStatus(record.Status),
		ReceiptNumber: record.MpesaReceiptNumber,
		ResultDesc:    record.ResultDesc,
	}, nil
}

func (r *relayClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := r.client.Post(ctx, r.baseURL+path, bytes.NewReader(body), r.headers())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return r.asError(resp)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}

	return nil
}

func (r *relayClient) headers() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + r.token,
	}
}

func (r *relayClient) asError(resp *http.Response) error {
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}

	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}

	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
