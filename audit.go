package abase

import "github.com/ghitflux/abasev2/internal/audit"

// Re-exported audit types, so integrators can supply sinks without
// importing an internal package.
type (
	// AuditEvent is a single audit record.
	AuditEvent = audit.Event
	// AuditSink receives emitted audit events.
	AuditSink = audit.Sink
	// AuditChannelSink buffers events on a channel for the caller to drain.
	AuditChannelSink = audit.ChannelSink
	// AuditJSONWriterSink writes newline-delimited JSON to an io.Writer.
	AuditJSONWriterSink = audit.JSONWriterSink
)

// NewAuditChannelSink creates a channel-backed sink with the given buffer.
var NewAuditChannelSink = audit.NewChannelSink

// NewAuditJSONWriterSink creates a sink writing one JSON object per line.
var NewAuditJSONWriterSink = audit.NewJSONWriterSink
