package subscription

import "errors"

var (
	// ErrAlreadyTerminated is returned by Subscribe and Renew after Unsubscribe
	ErrAlreadyTerminated = errors.New("subscription has been unsubscribed")
	// ErrNotSubscribed is returned by Renew before Subscribe
	ErrNotSubscribed = errors.New("subscription is not subscribed")
	// ErrExpired is returned by Renew once the granted timeout has elapsed
	ErrExpired = errors.New("subscription has expired")
	// ErrAlreadySubscribed is returned by a second Subscribe
	ErrAlreadySubscribed = errors.New("subscription is already subscribed")
)
