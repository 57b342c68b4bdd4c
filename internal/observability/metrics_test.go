package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordSessionOpened("server")
	RecordSessionClosed("server")
	RecordSessionError("connection_closed")
	RecordFrameSent(4)
	RecordFrameReceived(4)
	RecordHTTPRequest("ogpd-a", "GET", "/health", 200, 12*time.Millisecond)
}
