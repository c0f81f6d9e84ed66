// Package smsgateway delivers one-time passwords over third-party SMS vendors.
//
// Each backend speaks one vendor's wire format (NIC, Amnex, NetCore, Fast2SMS)
// behind the same Sender contract: a boolean send that never surfaces transport
// errors to the caller. Vendor credentials and message templates are injected
// at startup; a backend with missing mandatory parameters refuses to send
// without touching the network.
package smsgateway
