package types

type MessageType uint8

const (
	LoginMessage MessageType = iota
	SystemMessage
	UnauthorizedMessage
	UnknownMessage
	PingPongMessage
	EngagementResultMessage
	XPReportMessage
	ShipXPRequestMessage
	ShipXPMessage
	DisconnectMessage
)
