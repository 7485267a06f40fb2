// Package ipcam is the entry point for talking to a 2N intercom or IP camera.
//
// New connects to the device, reads its clock and returns a Device exposing
// the JSON command API and the SOAP event subscription service:
//
//	device, err := ipcam.New(ctx, ipcam.Config{
//		Client: httpclient.Config{Host: "192.168.1.50", SSL: true,
//			AuthType: httpclient.AuthDigest, Username: "admin", Password: "secret"},
//	})
//	sub, err := device.Events().Subscribe(ctx, subscription.SubscribeOptions{AutoRenew: true})
//	event, err := sub.Events().Get(ctx)
package ipcam
