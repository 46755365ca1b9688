package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"footware-store/internal/domain"
	paymentsvc "footware-store/internal/service/payment"

	"github.com/gin-gonic/gin"
)

// Daraja STK callback envelope.
type stkCallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// mpesaCallbackHandler receives the asynchronous STK push outcome. The
// gateway retries on non-200, so every outcome the handler can classify is
// acknowledged with 200; anomalies are logged and audited, never surfaced.
func mpesaCallbackHandler(payments PaymentService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ResultCode": 1, "ResultDesc": "unreadable body"})
			return
		}

		var env stkCallbackEnvelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Body.StkCallback.CheckoutRequestID == "" {
			logger.Printf("mpesa callback: unparseable payload: %s", string(raw))
			c.JSON(http.StatusBadRequest, gin.H{"ResultCode": 1, "ResultDesc": "invalid payload"})
			return
		}
		cb := env.Body.StkCallback

		outcome := domain.PaymentFailed
		var receipt, txnDate *string
		if cb.ResultCode == 0 {
			outcome = domain.PaymentSuccess
			for _, item := range cb.CallbackMetadata.Item {
				switch item.Name {
				case "MpesaReceiptNumber":
					if s, ok := item.Value.(string); ok {
						receipt = &s
					}
				case "TransactionDate":
					// Daraja sends the date as a JSON number, e.g. 20260301103000.
					switch v := item.Value.(type) {
					case float64:
						s := strconv.FormatFloat(v, 'f', -1, 64)
						txnDate = &s
					case string:
						txnDate = &v
					}
				}
			}
		}

		_, err = payments.ApplyCallback(c.Request.Context(), paymentsvc.CallbackInput{
			CheckoutRequestID: cb.CheckoutRequestID,
			Outcome:           outcome,
			MpesaReceipt:      receipt,
			TransactionDate:   txnDate,
			Raw:               raw,
		})
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrUnknownCheckoutRequest),
			errors.Is(err, domain.ErrConflictingCallback):
			// Already logged and audited by the service. Acknowledge so the
			// gateway stops retrying a callback we will never accept.
			logger.Printf("mpesa callback: rejected checkout_request_id=%s reason=%v", cb.CheckoutRequestID, err)
		default:
			// Transient failure: a non-200 makes the gateway redeliver, and
			// ApplyCallback is idempotent under redelivery.
			logger.Printf("mpesa callback: apply failed checkout_request_id=%s error=%v", cb.CheckoutRequestID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"ResultCode": 1, "ResultDesc": "retry"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
	}
}
