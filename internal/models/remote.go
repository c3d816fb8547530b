package models

import "time"

// RemoteAction is what a clicker press does to the viewer
type RemoteAction string

const (
	RemoteNext RemoteAction = "next"
	RemotePrev RemoteAction = "prev"
)

// PresenterRemote represents a physical presentation clicker
type PresenterRemote struct {
	ID         string       `json:"id"`
	MACAddress string       `json:"macAddress"`
	Name       string       `json:"name"`
	Action     RemoteAction `json:"action"`
	IsActive   bool         `json:"isActive"`
	PressCount int          `json:"pressCount"`
	LastPress  time.Time    `json:"lastPress,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}
