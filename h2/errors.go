package h2

import "errors"

var (
	errSettingsLength = errors.New("h2: SETTINGS frame payload is not a multiple of 6 bytes")
	errUnexpectedAck  = errors.New("h2: unexpected SETTINGS ACK payload")
	errPeerGoingAway  = errors.New("h2: peer sent GOAWAY")
)
