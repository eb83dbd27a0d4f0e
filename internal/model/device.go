package model

// DeviceRequest is the body accepted by the register and unregister endpoints.
type DeviceRequest struct {
	DeviceToken string `json:"device_token"`
}
