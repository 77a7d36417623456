package node

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/liun/pkg/field"
)

// SignRequest asks a committee member for its partial signature over
// Message, among the listed CommitteeIDs.
type SignRequest struct {
	Message      uint64   `cbor:"message"`
	CommitteeIDs []uint64 `cbor:"committee_ids"`
}

// SignResponse carries one committee member's partial signature.
type SignResponse struct {
	NodeID  int    `cbor:"node_id"`
	Partial uint64 `cbor:"partial"`
}

// EncodeSignRequest serializes a SignRequest for transport over a
// Channel or MessageBus.
func EncodeSignRequest(message field.Element, committeeIDs []field.Element) ([]byte, error) {
	req := SignRequest{
		Message:      message.Uint64(),
		CommitteeIDs: make([]uint64, len(committeeIDs)),
	}
	for i, id := range committeeIDs {
		req.CommitteeIDs[i] = id.Uint64()
	}
	data, err := cbor.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("node: encoding sign request: %w", err)
	}
	return data, nil
}

// DecodeSignRequest deserializes a SignRequest and converts its fields
// back into field elements.
func DecodeSignRequest(data []byte) (field.Element, []field.Element, error) {
	var req SignRequest
	if err := cbor.Unmarshal(data, &req); err != nil {
		return 0, nil, fmt.Errorf("node: decoding sign request: %w", err)
	}
	committeeIDs := make([]field.Element, len(req.CommitteeIDs))
	for i, id := range req.CommitteeIDs {
		committeeIDs[i] = field.New(id)
	}
	return field.New(req.Message), committeeIDs, nil
}

// EncodeSignResponse serializes a SignResponse for transport.
func EncodeSignResponse(nodeID int, partial field.Element) ([]byte, error) {
	data, err := cbor.Marshal(SignResponse{NodeID: nodeID, Partial: partial.Uint64()})
	if err != nil {
		return nil, fmt.Errorf("node: encoding sign response: %w", err)
	}
	return data, nil
}

// DecodeSignResponse deserializes a SignResponse.
func DecodeSignResponse(data []byte) (int, field.Element, error) {
	var resp SignResponse
	if err := cbor.Unmarshal(data, &resp); err != nil {
		return 0, 0, fmt.Errorf("node: decoding sign response: %w", err)
	}
	return resp.NodeID, field.New(resp.Partial), nil
}
