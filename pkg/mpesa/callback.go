package mpesa

import "fmt"

const receiptMetadataName = "MpesaReceiptNumber"

// CallbackEnvelope is the gateway's asynchronous result webhook payload.
// Deliveries may be malformed or duplicated; receivers parse defensively.
type CallbackEnvelope struct {
	Body CallbackBody `json:"Body"`
}

type CallbackBody struct {
	STKCallback *STKCallback `json:"stkCallback"`
}

type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

func (c *STKCallback) Success() bool {
	return c.ResultCode == 0
}

// ReceiptNumber scans the metadata list for the gateway's proof of payment.
// Returns an empty string when the callback carries none.
func (c *STKCallback) ReceiptNumber() string {
	if c.CallbackMetadata == nil {
		return ""
	}

	for _, item := range c.CallbackMetadata.Item {
		if item.Name == receiptMetadataName && item.Value != nil {
			return fmt.Sprint(item.Value)
		}
	}

	return ""
}

// CallbackAck is the fixed acknowledgment body returned to the gateway on
// every delivery, regardless of internal processing outcome.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func AcceptedAck() CallbackAck {
	return CallbackAck{ResultCode: 0, ResultDesc: "Accepted"}
}
