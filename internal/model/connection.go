package model

// ChannelID identifies a single websocket connection within a room's
// broadcast group. It is distinct from PlayerID: the same player may
// reconnect and receive a fresh channel.
type ChannelID string
