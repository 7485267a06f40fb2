// Package listener implements the local HTTP endpoint the device posts event
// notifications to, and the process-wide lifecycle that starts it on the first
// subscription and stops it when the last one goes away.
//
// One listener serves every subscription in the process. Each subscription
// registers a routing key; the device is told to post to
// http://ip:port/{key}/ and the listener delivers the parsed event to the sink
// registered under that key.
package listener
