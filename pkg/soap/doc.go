// Package soap implements the WS-BaseNotification messages the device uses to
// manage event subscriptions: Subscribe, Renew and Unsubscribe envelopes, the
// HTTP transport that posts them, and the response parser.
//
// Envelopes are built with etree so every caller supplied value is escaped.
// Durations are expressed the way the device expects them: PDT<seconds>S.
package soap
