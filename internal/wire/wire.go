// Package wire frames the messages exchanged between server and agent
// over the session transport: a protobuf envelope holding either a wake
// request or a wake response. The field numbers below are the wire
// contract; both ends of the websocket speak exactly this framing.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Envelope field numbers.
const (
	fieldWakeRequest  = 1
	fieldWakeResponse = 2
)

// WakeRequest field numbers.
const fieldDevice = 1

// Device field numbers.
const (
	fieldDeviceID   = 1
	fieldDeviceName = 2
	fieldDeviceMAC  = 3
)

// WakeResponse field numbers.
const fieldSuccess = 1

// Device identifies the machine the agent should wake.
type Device struct {
	ID   int64
	Name string
	MAC  string
}

type WakeRequest struct {
	Device Device
}

type WakeResponse struct {
	Success bool
}

// Envelope is the discriminated wire message: exactly one of Request or
// Response is set.
type Envelope struct {
	Request  *WakeRequest
	Response *WakeResponse
}

func Encode(env Envelope) []byte {
	var b []byte
	switch {
	case env.Request != nil:
		b = protowire.AppendTag(b, fieldWakeRequest, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeRequest(*env.Request))
	case env.Response != nil:
		b = protowire.AppendTag(b, fieldWakeResponse, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeResponse(*env.Response))
	}
	return b
}

func encodeRequest(req WakeRequest) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldDevice, protowire.BytesType)
	b = protowire.AppendBytes(b, encodeDevice(req.Device))
	return b
}

func encodeDevice(d Device) []byte {
	var b []byte
	if d.ID != 0 {
		b = protowire.AppendTag(b, fieldDeviceID, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(d.ID))
	}
	if d.Name != "" {
		b = protowire.AppendTag(b, fieldDeviceName, protowire.BytesType)
		b = protowire.AppendString(b, d.Name)
	}
	if d.MAC != "" {
		b = protowire.AppendTag(b, fieldDeviceMAC, protowire.BytesType)
		b = protowire.AppendString(b, d.MAC)
	}
	return b
}

func encodeResponse(resp WakeResponse) []byte {
	var b []byte
	if resp.Success {
		b = protowire.AppendTag(b, fieldSuccess, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

// Decode parses an envelope. An error means the message is truncated or
// carries no recognized variant; callers log and drop it, the session
// stays open. Unknown fields are skipped so either end may grow the
// schema without breaking the other.
func Decode(b []byte) (Envelope, error) {
	var env Envelope
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Envelope{}, fmt.Errorf("wire: malformed envelope tag")
		}
		b = b[n:]

		switch {
		case num == fieldWakeRequest && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Envelope{}, fmt.Errorf("wire: truncated wake request")
			}
			req, err := decodeRequest(body)
			if err != nil {
				return Envelope{}, err
			}
			env.Request = &req
			b = b[n:]
		case num == fieldWakeResponse && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Envelope{}, fmt.Errorf("wire: truncated wake response")
			}
			resp, err := decodeResponse(body)
			if err != nil {
				return Envelope{}, err
			}
			env.Response = &resp
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Envelope{}, fmt.Errorf("wire: malformed envelope field %d", num)
			}
			b = b[n:]
		}
	}
	if env.Request == nil && env.Response == nil {
		return Envelope{}, fmt.Errorf("wire: empty envelope")
	}
	return env, nil
}

func decodeRequest(b []byte) (WakeRequest, error) {
	var req WakeRequest
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return WakeRequest{}, fmt.Errorf("wire: malformed wake request")
		}
		b = b[n:]

		if num == fieldDevice && typ == protowire.BytesType {
			body, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return WakeRequest{}, fmt.Errorf("wire: truncated device")
			}
			device, err := decodeDevice(body)
			if err != nil {
				return WakeRequest{}, err
			}
			req.Device = device
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return WakeRequest{}, fmt.Errorf("wire: malformed wake request field %d", num)
		}
		b = b[n:]
	}
	return req, nil
}

func decodeDevice(b []byte) (Device, error) {
	var d Device
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Device{}, fmt.Errorf("wire: malformed device")
		}
		b = b[n:]

		switch {
		case num == fieldDeviceID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Device{}, fmt.Errorf("wire: truncated device id")
			}
			d.ID = int64(v)
			b = b[n:]
		case num == fieldDeviceName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Device{}, fmt.Errorf("wire: truncated device name")
			}
			d.Name = v
			b = b[n:]
		case num == fieldDeviceMAC && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Device{}, fmt.Errorf("wire: truncated device mac")
			}
			d.MAC = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Device{}, fmt.Errorf("wire: malformed device field %d", num)
			}
			b = b[n:]
		}
	}
	return d, nil
}

func decodeResponse(b []byte) (WakeResponse, error) {
	var resp WakeResponse
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return WakeResponse{}, fmt.Errorf("wire: malformed wake response")
		}
		b = b[n:]

		if num == fieldSuccess && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return WakeResponse{}, fmt.Errorf("wire: truncated success flag")
			}
			resp.Success = v != 0
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return WakeResponse{}, fmt.Errorf("wire: malformed wake response field %d", num)
		}
		b = b[n:]
	}
	return resp, nil
}
