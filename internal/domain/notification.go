package domain

import "strings"

// Channel is the medium a notification intent asks to be sent over.
type Channel string

// List of notification channels.
const (
	ChannelSMS  Channel = "sms"
	ChannelPush Channel = "push"
)

// NotificationIntent is a customer message requested but not yet sent.
// An external collaborator dispatches it.
type NotificationIntent struct {
	ID         string
	DeliveryID int64
	Message    string
	Channel    Channel
}

// ChannelFor picks sms when the delivery carries a phone number.
func ChannelFor(d Delivery) Channel {
	if strings.TrimSpace(d.PhoneNumber) != "" {
		return ChannelSMS
	}
	return ChannelPush
}
