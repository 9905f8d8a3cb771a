package dnp3

import (
	"avaneesh/dnp3-go/pkg/channel"
)

// Channel is the public entry point for attaching a master session to
// a physical channel. Outstation-side attachment is out of scope for
// this module (master-side only).
type Channel interface {
	// AddMaster adds a master session to this channel
	AddMaster(config MasterConfig, callbacks MasterCallbacks) (Master, error)

	// Shutdown closes the channel and all sessions
	Shutdown() error

	// Statistics returns channel statistics
	Statistics() ChannelStatistics
}

// ChannelStatistics provides channel-level statistics
type ChannelStatistics struct {
	LinkFramesTx    uint64 // Link frames transmitted
	LinkFramesRx    uint64 // Link frames received
	BadLinkFrames   uint64 // Bad link frames
	CRCErrors       uint64 // CRC errors
	TransportTx     uint64 // Transport segments transmitted
	TransportRx     uint64 // Transport segments received
	TransportErrors uint64 // Transport errors
	ActiveSessions  uint64 // Number of active sessions
	PhysicalBytesTx uint64 // Physical bytes transmitted
	PhysicalBytesRx uint64 // Physical bytes received
}

// channelImpl implements the Channel interface
type channelImpl struct {
	channel *channel.Channel
	manager *Manager
}

// AddMaster adds a master session to this channel
func (c *channelImpl) AddMaster(config MasterConfig, callbacks MasterCallbacks) (Master, error) {
	return c.manager.createMaster(config, callbacks, c.channel)
}

// Shutdown closes the channel
func (c *channelImpl) Shutdown() error {
	return c.manager.RemoveChannel(c.channel.ID())
}

// Statistics returns channel statistics
func (c *channelImpl) Statistics() ChannelStatistics {
	stats := c.channel.GetStatistics()
	physStats := c.channel.GetPhysicalStatistics()

	return ChannelStatistics{
		LinkFramesTx:    stats.GetLinkFramesTx(),
		LinkFramesRx:    stats.GetLinkFramesRx(),
		BadLinkFrames:   stats.GetBadLinkFrames(),
		CRCErrors:       stats.GetCRCErrors(),
		TransportTx:     stats.GetTransportTx(),
		TransportRx:     stats.GetTransportRx(),
		TransportErrors: stats.GetTransportErrors(),
		ActiveSessions:  stats.GetActiveSessions(),
		PhysicalBytesTx: physStats.BytesSent,
		PhysicalBytesRx: physStats.BytesReceived,
	}
}
