package mpesa

const ResponseCodeAccepted = "0"

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`

	// Populated on rejection responses instead of the fields above.
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func (r STKPushResponse) Accepted() bool {
	return r.ResponseCode == ResponseCodeAccepted
}

// Description returns the most specific human-readable outcome text present.
func (r STKPushResponse) Description() string {
	if r.ResponseDescription != "" {
		return r.ResponseDescription
	}

	return r.ErrorMessage
}
