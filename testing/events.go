package ibctesting

import (
	"errors"
	"slices"
	"strconv"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	testifysuite "github.com/stretchr/testify/suite"

	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
)

// ABCIEvents converts the events returned with a contract response into the events the host
// adds to the block results.
func ABCIEvents(events []wasmvmtypes.Event) []abci.Event {
	converted := make([]abci.Event, 0, len(events))
	for _, event := range events {
		attributes := make([]abci.EventAttribute, 0, len(event.Attributes))
		for _, attr := range event.Attributes {
			attributes = append(attributes, abci.EventAttribute{Key: attr.Key, Value: attr.Value, Index: true})
		}

		converted = append(converted, abci.Event{Type: event.Type, Attributes: attributes})
	}

	return converted
}

// ParseChannelIDFromEvents parses events emitted from a channel open callback and returns the
// channel identifier.
func ParseChannelIDFromEvents(events []abci.Event) (string, error) {
	for _, ev := range events {
		if ev.Type == types.EventTypeChannelOpen || ev.Type == types.EventTypeChannelConnect {
			if attribute, found := attributeByKey(ev.Attributes, types.AttributeKeyChannelID); found {
				return attribute.Value, nil
			}
		}
	}
	return "", errors.New("channel identifier event attribute not found")
}

// ParsePacketSequenceFromEvents parses events emitted from a cross-chain payment and returns the
// packet sequence
func ParsePacketSequenceFromEvents(events []abci.Event) (uint64, error) {
	for _, event := range events {
		if event.Type != types.EventTypeSendPacket {
			continue
		}
		if attribute, found := attributeByKey(event.Attributes, types.AttributeKeyPacketSequence); found {
			return strconv.ParseUint(attribute.Value, 10, 64)
		}
	}
	return 0, errors.New("packet sequence event attribute not found")
}

// ParsePaymentIDFromEvents parses events emitted from a payment and returns the payment id
func ParsePaymentIDFromEvents(events []abci.Event) (uint64, error) {
	for _, event := range events {
		if event.Type != types.EventTypePayment {
			continue
		}
		if attribute, found := attributeByKey(event.Attributes, types.AttributeKeyPaymentID); found {
			return strconv.ParseUint(attribute.Value, 10, 64)
		}
	}
	return 0, errors.New("payment id event attribute not found")
}

// AssertEvents asserts that expected events are present in the actual events.
func AssertEvents(
	suite *testifysuite.Suite,
	expected []abci.Event,
	actual []abci.Event,
) {
	foundEvents := make(map[int]bool)

	for i, expectedEvent := range expected {
		for _, actualEvent := range actual {
			if shouldProcessEvent(expectedEvent, actualEvent) {
				attributeMatch := true
				for _, expectedAttr := range expectedEvent.Attributes {
					// any expected attributes that are not contained in the actual events will cause this event
					// not to match
					attributeMatch = attributeMatch && containsAttribute(actualEvent.Attributes, expectedAttr.Key, expectedAttr.Value)
				}

				if attributeMatch {
					foundEvents[i] = true
				}
			}
		}
	}

	for i, expectedEvent := range expected {
		suite.Require().True(foundEvents[i], "event: %s was not found in events", expectedEvent.Type)
	}
}

// shouldProcessEvent returns true if the given expected event should be processed based on event type.
func shouldProcessEvent(expectedEvent abci.Event, actualEvent abci.Event) bool {
	if expectedEvent.Type != actualEvent.Type {
		return false
	}

	return len(expectedEvent.Attributes) == len(actualEvent.Attributes)
}

// containsAttribute returns true if the given key/value pair is contained in the given attributes.
// NOTE: this ignores the indexed field, which can be set or unset depending on how the events are retrieved.
func containsAttribute(attrs []abci.EventAttribute, key, value string) bool {
	return slices.ContainsFunc(attrs, func(attr abci.EventAttribute) bool {
		return attr.Key == key && attr.Value == value
	})
}

// attributeByKey returns the event attribute's value keyed by the given key and a boolean indicating its presence in the given attributes.
func attributeByKey(attributes []abci.EventAttribute, key string) (abci.EventAttribute, bool) {
	idx := slices.IndexFunc(attributes, func(a abci.EventAttribute) bool { return a.Key == key })
	if idx == -1 {
		return abci.EventAttribute{}, false
	}
	return attributes[idx], true
}
