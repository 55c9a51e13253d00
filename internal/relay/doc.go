// Package relay implements the event side of the relay: the typed channels for
// each topic, the sendMessage command, the periodic sample generators and the
// per-connection session that owns a caller's subscriptions.
package relay
