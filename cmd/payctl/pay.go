package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/blossomshop/payments/internal/session"
	"github.com/blossomshop/payments/pkg/phone"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func payCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Create a payment, push the prompt and wait for the result",
		RunE:  runPay,
	}

	cmd.Flags().String("api", "http://localhost:8080", "Payments API base URL")
	cmd.Flags().String("token", os.Getenv("PAYCTL_TOKEN"), "Bearer token (defaults to PAYCTL_TOKEN)")
	cmd.Flags().String("order", "", "Order to pay for")
	cmd.Flags().String("phone", "", "Customer phone number")
	cmd.Flags().Duration("poll", 3*time.Second, "Status poll interval")
	cmd.Flags().Duration("max-wait", 60*time.Second, "How long to wait for confirmation")
	cmd.Flags().Int("retries", 0, "Re-attempts after a timeout or error")
	cmd.MarkFlagRequired("order")
	cmd.MarkFlagRequired("phone")

	return cmd
}

func runPay(cmd *cobra.Command, args []string) error {
	apiURL, _ := cmd.Flags().GetString("api")
	token, _ := cmd.Flags().GetString("token")
	orderID, _ := cmd.Flags().GetString("order")
	phoneNumber, _ := cmd.Flags().GetString("phone")
	poll, _ := cmd.Flags().GetDuration("poll")
	maxWait, _ := cmd.Flags().GetDuration("max-wait")
	retries, _ := cmd.Flags().GetInt("retries")

	if !phone.IsValidKenyan(phoneNumber) {
		return fmt.Errorf("%q is not a valid Kenyan phone number", phoneNumber)
	}

	paymentID := uuid.NewString()
	relay := newRelayClient(apiURL, token, orderID, phoneNumber)

	ctrl := session.NewController(zap.NewNop(), relay, relay,
		session.Config{PollInterval: poll, MaxWait: maxWait})

	fmt.Printf("Paying order %s from %s (payment %s)\n",
		orderID, phone.FormatDisplay(phoneNumber), paymentID)

	ctx := cmd.Context()
	if err := ctrl.Start(ctx, paymentID); err != nil {
		return err
	}

	for {
		final := watch(ctx, ctrl)
		fmt.Println()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if final.State == session.StateCompleted {
			fmt.Printf("Payment confirmed, receipt %s\n", final.Receipt)
			return nil
		}
		if final.State == session.StateFailed {
			return fmt.Errorf("payment failed: %s", final.Message)
		}

		if retries <= 0 {
			return fmt.Errorf("payment not confirmed: %s", final.State)
		}
		retries--

		fmt.Println("Retrying...")
		if err := ctrl.Retry(ctx); err != nil {
			continue
		}
	}
}

func watch(ctx context.Context, ctrl *session.Controller) session.Snapshot {
	for {
		select {
		case snapshot := <-ctrl.Updates():
			if snapshot.State.Terminal() {
				return snapshot
			}
			if snapshot.State == session.StateWaiting {
				fmt.Printf("\rWaiting for confirmation on your phone... %3ds", snapshot.Remaining)
			}
		case <-ctx.Done():
			ctrl.Stop()
			return ctrl.Current()
		}
	}
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [payment-id]",
		Short: "Show the stored record for a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL, _ := cmd.Flags().GetString("api")
			token, _ := cmd.Flags().GetString("token")

			relay := newRelayClient(apiURL, token, "", "")
			status, err := relay.FetchStatus(context.Background(), args[0])
			if err != nil {
				return err
			}

			out, _ := json.MarshalIndent(status, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().String("api", "http://localhost:8080", "Payments API base URL")
	cmd.Flags().String("token", os.Getenv("PAYCTL_TOKEN"), "Bearer token (defaults to PAYCTL_TOKEN)")

	return cmd
}
