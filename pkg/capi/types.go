package capi

// Wire types for the Conversions API /{datasource}/events endpoint.

// ActionSourceBusinessMessaging is the action source for conversions that
// originate from a business chat thread.
const ActionSourceBusinessMessaging = "business_messaging"

// MessagingChannelWhatsApp identifies the WhatsApp channel.
const MessagingChannelWhatsApp = "whatsapp"

// Event is one conversion event.
type Event struct {
	EventName        string      `json:"event_name"`
	EventTime        int64       `json:"event_time"`
	ActionSource     string      `json:"action_source"`
	MessagingChannel string      `json:"messaging_channel"`
	UserData         UserData    `json:"user_data"`
	CustomData       *CustomData `json:"custom_data,omitempty"`
}

// UserData ties the event back to the ad click and the business page.
type UserData struct {
	CtwaClid string `json:"ctwa_clid,omitempty"`
	PageID   string `json:"page_id,omitempty"`
}

// CustomData carries an optional conversion value.
type CustomData struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency,omitempty"`
}

// EventRequest is the request body: a batch of events for one datasource.
type EventRequest struct {
	Data []Event `json:"data"`
}

// EventResponse is the success response body.
type EventResponse struct {
	EventsReceived int    `json:"events_received"`
	FBTraceID      string `json:"fbtrace_id,omitempty"`
}

// APIError is the Graph API error envelope.
type APIError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}
