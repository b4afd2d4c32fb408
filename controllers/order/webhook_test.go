package orderControllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"github.com/swiftcart-dev/swiftcart-api/payment"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_order_test"

func webhookRouter(db *gorm.DB, mail *fakeSender) *gin.Engine {
	r := gin.New()
	r.POST("/api/payment/webhook", StripeWebhookHandler(db, mail, testWebhookSecret))
	return r
}

func signedEvent(t *testing.T, eventType string, session *payment.CheckoutSession) ([]byte, string) {
	t.Helper()
	object, err := json.Marshal(session)
	require.NoError(t, err)
	payload, err := json.Marshal(map[string]any{
		"id":   "evt_test_1",
		"type": eventType,
		"data": map[string]any{"object": json.RawMessage(object)},
	})
	require.NoError(t, err)

	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	header := fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
	return payload, header
}

func paidSession(t *testing.T, sessionID string) *payment.CheckoutSession {
	t.Helper()
	formJSON, err := json.Marshal(testForm())
	require.NoError(t, err)
	cartJSON, err := json.Marshal(testCart())
	require.NoError(t, err)
	return &payment.CheckoutSession{
		ID:            sessionID,
		PaymentStatus: payment.PaymentStatusPaid,
		PaymentIntent: "pi_wh_1",
		Metadata: map[string]string{
			metadataFormKey: string(formJSON),
			metadataCartKey: string(cartJSON),
		},
	}
}

func postWebhook(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookCreatesOrder(t *testing.T) {
	db := newTestDB(t)
	r := webhookRouter(db, newFakeSender())

	payload, sig := signedEvent(t, payment.EventCheckoutSessionCompleted, paidSession(t, "cs_wh_1"))
	w := postWebhook(r, payload, sig)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"received":true`)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order).Error)
	assert.Equal(t, 200.0, order.TotalPrice)
	assert.Equal(t, models.PaymentMethodCard, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	require.NotNil(t, order.StripeSessionID)
	assert.Equal(t, "cs_wh_1", *order.StripeSessionID)
	require.Len(t, order.Items, 1)
}

func TestWebhookReplayCreatesOneOrder(t *testing.T) {
	db := newTestDB(t)
	r := webhookRouter(db, newFakeSender())

	payload, sig := signedEvent(t, payment.EventCheckoutSessionCompleted, paidSession(t, "cs_wh_replay"))

	// The gateway retries deliveries; every retry must ack 200 and the order
	// must exist exactly once.
	for i := 0; i < 3; i++ {
		w := postWebhook(r, payload, sig)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.EqualValues(t, 1, countOrders(t, db))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	r := webhookRouter(db, newFakeSender())

	payload, _ := signedEvent(t, payment.EventCheckoutSessionCompleted, paidSession(t, "cs_wh_bad"))
	ts := time.Now().Unix()
	forged := fmt.Sprintf("t=%d,v1=%s", ts, "0badc0ffee")

	w := postWebhook(r, payload, forged)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Webhook Error")
	assert.EqualValues(t, 0, countOrders(t, db))
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	db := newTestDB(t)
	r := webhookRouter(db, newFakeSender())

	payload, _ := signedEvent(t, payment.EventCheckoutSessionCompleted, paidSession(t, "cs_wh_nosig"))
	w := postWebhook(r, payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 0, countOrders(t, db))
}

func TestWebhookAcksUnhandledEvents(t *testing.T) {
	db := newTestDB(t)
	r := webhookRouter(db, newFakeSender())

	payload, sig := signedEvent(t, "payment_intent.created", paidSession(t, "cs_wh_other"))
	w := postWebhook(r, payload, sig)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, countOrders(t, db))
}

// The client callback and the webhook race for the same session in
// production; whichever lands second must return the first one's order.
func TestWebhookThenClientCallbackDedup(t *testing.T) {
	db := newTestDB(t)
	gw := newFakeGateway()
	session := paidSession(t, "cs_both_paths")
	gw.sessions[session.ID] = session
	mail := newFakeSender()

	r := webhookRouter(db, mail)
	r.POST("/api/orders/place-order-after-payment", PlaceOrderAfterPaymentHandler(db, gw, mail))

	payload, sig := signedEvent(t, payment.EventCheckoutSessionCompleted, session)
	w := postWebhook(r, payload, sig)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.EqualValues(t, 1, countOrders(t, db))

	confirm := ConfirmOrderRequest{SessionID: session.ID, ShippingForm: testForm(), Cart: testCart()}
	w = performJSON(t, r, http.MethodPost, "/api/orders/place-order-after-payment", confirm)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Order already placed")
	assert.EqualValues(t, 1, countOrders(t, db))
}
