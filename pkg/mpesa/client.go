// Package mpesa is a client for the Daraja STK push API: OAuth token fetch,
// signed push-prompt submission, and the callback payload types.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blossomshop/payments/pkg/httpclient"
)

const (
	tokenEndpoint   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushEndpoint = "/mpesa/stkpush/v1/processrequest"

	transactionType = "CustomerPayBillOnline"
	timestampLayout = "20060102150405"
)

type Gateway interface {
	STKPush(ctx context.Context, cmd STKPushCommand) (STKPushResponse, error)
}

type gateway struct {
	client httpclient.HTTPClient
	config Config
	now    func() time.Time
}

func NewGateway(cfg Config, client httpclient.HTTPClient) Gateway {
	return &gateway{config: cfg, client: client, now: time.Now}
}

func (g *gateway) STKPush(ctx context.Context, cmd STKPushCommand) (STKPushResponse, error) {
	token, err := g.fetchToken(ctx)
	if err != nil {
		return STKPushResponse{}, err
	}

	timestamp := g.now().Format(timestampLayout)
	payload := stkPushPayload{
		BusinessShortCode: g.config.ShortCode,
		Password:          buildPassword(g.config.ShortCode, g.config.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            cmd.Amount,
		PartyA:            cmd.Phone,
		PartyB:            g.config.ShortCode,
		PhoneNumber:       cmd.Phone,
		CallBackURL:       g.config.CallbackURL,
		AccountReference:  cmd.AccountReference,
		TransactionDesc:   cmd.TransactionDesc,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return STKPushResponse{}, fmt.Errorf("encoding error: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "application/json",
	}

	resp, err := g.client.Post(ctx, g.config.BaseURL()+stkPushEndpoint, &buf, headers)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return STKPushResponse{}, ErrTimeout
		}

		return STKPushResponse{}, err
	}

	defer resp.Body.Close()

	var response STKPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return STKPushResponse{}, fmt.Errorf("decoding error: %w", err)
	}

	if response.Accepted() {
		return response, nil
	}

	if response.ErrorCode != "" || response.ResponseCode != "" {
		return response, RejectionError{Code: rejectionCode(response), Description: response.Description()}
	}

	return response, ErrServerError
}

func (g *gateway) fetchToken(ctx context.Context) (string, error) {
	basic := base64.StdEncoding.EncodeToString(
		[]byte(g.config.ConsumerKey + ":" + g.config.ConsumerSecret))

	headers := map[string]string{"Authorization": "Basic " + basic}

	resp, err := g.client.Get(ctx, g.config.BaseURL()+tokenEndpoint, headers)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}

		return "", err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrAuthFailed
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decoding error: %w", err)
	}

	if token.AccessToken == "" {
		return "", ErrAuthFailed
	}

	return token.AccessToken, nil
}

func buildPassword(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}

func rejectionCode(r STKPushResponse) string {
	if r.ErrorCode != "" {
		return r.ErrorCode
	}

	return r.ResponseCode
}
