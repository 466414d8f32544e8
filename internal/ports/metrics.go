package ports

import "github.com/haloguard/haloguard-cli/internal/domain"

const (
	FrameSent          = "sent"
	FrameDroppedBusy   = "dropped_not_ready"
	FrameCaptureFailed = "capture_failed"
	FrameSendFailed    = "send_failed"

	StreamMessageResult    = "result"
	StreamMessageMalformed = "malformed"

	HistoryOutcomeOK     = "ok"
	HistoryOutcomeFailed = "failed"
)

type Metrics interface {
	RecordDetection(source domain.ResultSource, prediction domain.Prediction)
	RecordFrame(outcome string)
	RecordStreamMessage(outcome string)
	RecordHistorySync(op string, outcome string)
}

type NopMetrics struct{}

func (NopMetrics) RecordDetection(domain.ResultSource, domain.Prediction) {}
func (NopMetrics) RecordFrame(string)                                    {}
func (NopMetrics) RecordStreamMessage(string)                            {}
func (NopMetrics) RecordHistorySync(string, string)                      {}
