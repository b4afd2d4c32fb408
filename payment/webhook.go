package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventCheckoutSessionCompleted is the only event type that creates orders;
// everything else is acknowledged and ignored.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// Tolerance bounds how old a webhook timestamp may be before the signature is
// rejected as a possible replay.
const Tolerance = 5 * time.Minute

var (
	ErrNoSignature      = errors.New("webhook: missing signature header")
	ErrInvalidSignature = errors.New("webhook: signature mismatch")
	ErrExpiredSignature = errors.New("webhook: timestamp outside tolerance")
)

// Event is a decoded, authenticated webhook event.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Session decodes the event payload as a checkout session object.
func (e *Event) Session() (*CheckoutSession, error) {
	var session CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &session); err != nil {
		return nil, fmt.Errorf("decode session from event: %w", err)
	}
	return &session, nil
}

// ConstructEvent authenticates payload against sigHeader using the shared
// signing secret and returns the decoded event. The signature covers the exact
// raw request bytes, so payload must be the untransformed body.
//
// The header carries a unix timestamp and one or more hex HMAC-SHA256
// candidates: "t=1712000000,v1=abc...,v1=def...". The signed string is
// "<timestamp>.<payload>".
func ConstructEvent(payload []byte, sigHeader, secret string) (Event, error) {
	return constructEvent(payload, sigHeader, secret, time.Now())
}

func constructEvent(payload []byte, sigHeader, secret string, now time.Time) (Event, error) {
	var event Event

	timestamp, candidates, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return event, err
	}

	if now.Sub(time.Unix(timestamp, 0)) > Tolerance {
		return event, ErrExpiredSignature
	}

	expected := computeSignature(timestamp, payload, secret)
	matched := false
	for _, candidate := range candidates {
		sig, decodeErr := hex.DecodeString(candidate)
		if decodeErr != nil {
			continue
		}
		if hmac.Equal(sig, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return event, ErrInvalidSignature
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("webhook: decode event: %w", err)
	}
	return event, nil
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, ErrNoSignature
	}

	var timestamp int64 = -1
	var candidates []string
	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			candidates = append(candidates, parts[1])
		}
	}

	if timestamp < 0 || len(candidates) == 0 {
		return 0, nil, ErrInvalidSignature
	}
	return timestamp, candidates, nil
}

func computeSignature(timestamp int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}
