// Package sms defines the outbound interface for delivering one-time
// passwords over the phone network, either as a text message or a voice
// call.
//
// The package ships two implementations: DevSender, which logs messages
// for local development, and Recorder, an in-memory fake for tests.
// Production deployments plug in their telephony provider behind the
// Sender interface.
package sms
