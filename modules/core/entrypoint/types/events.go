package types

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ConvertEvents converts the events emitted on the SDK event manager into the events returned
// to the host with a contract response. Events without a type are dropped.
func ConvertEvents(events sdk.Events) []wasmvmtypes.Event {
	if len(events) == 0 {
		return nil
	}

	converted := make([]wasmvmtypes.Event, 0, len(events))
	for _, event := range events {
		if event.Type == "" {
			continue
		}

		attributes := make([]wasmvmtypes.EventAttribute, 0, len(event.Attributes))
		for _, attr := range event.Attributes {
			attributes = append(attributes, wasmvmtypes.EventAttribute{
				Key:   attr.Key,
				Value: attr.Value,
			})
		}

		converted = append(converted, wasmvmtypes.Event{
			Type:       event.Type,
			Attributes: attributes,
		})
	}

	return converted
}
