package domain

import "encoding/base64"

const FrameMessageType = "frame"

type StreamFrameMessage struct {
	Type    string `json:"type"`
	Data    string `json:"data"`
	FrameID int64  `json:"frame_id"`
}

// NewJPEGFrameMessage wraps JPEG bytes as a data URL, the form the stream
// endpoint splits on the first comma.
func NewJPEGFrameMessage(frameID int64, jpeg []byte) StreamFrameMessage {
	return StreamFrameMessage{
		Type:    FrameMessageType,
		Data:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg),
		FrameID: frameID,
	}
}
