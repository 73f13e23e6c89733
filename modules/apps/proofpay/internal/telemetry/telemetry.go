package telemetry

import (
	"fmt"

	"github.com/hashicorp/go-metrics"

	sdkmath "cosmossdk.io/math"

	"github.com/cosmos/cosmos-sdk/telemetry"

	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"
	coremetrics "github.com/cosmos/ibc-go/v10/modules/core/metrics"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
)

func ReportSendPacket(sourcePort, sourceChannel, destinationPort, destinationChannel string, data types.PaymentPacketData) {
	labels := []metrics.Label{
		telemetry.NewLabel(coremetrics.LabelDestinationPort, destinationPort),
		telemetry.NewLabel(coremetrics.LabelDestinationChannel, destinationChannel),
	}

	denom := data.Token()
	reportAmount([]string{"tx", "msg", "ibc", types.ModuleName}, data.Amount, denom)

	labels = append(labels, telemetry.NewLabel(coremetrics.LabelSource, fmt.Sprintf("%t", !denom.HasPrefix(sourcePort, sourceChannel))))

	telemetry.IncrCounterWithLabels(
		[]string{"ibc", types.ModuleName, "send"},
		1,
		labels,
	)
}

func ReportOnRecvPacket(sourcePort, sourceChannel, destinationPort, destinationChannel string, data types.PaymentPacketData, success bool) {
	labels := []metrics.Label{
		telemetry.NewLabel(coremetrics.LabelSourcePort, sourcePort),
		telemetry.NewLabel(coremetrics.LabelSourceChannel, sourceChannel),
		telemetry.NewLabel("success", fmt.Sprintf("%t", success)),
	}

	denom := data.Token()
	returning := denom.HasPrefix(sourcePort, sourceChannel)

	if success {
		// Modify trace as receive does.
		if returning {
			denom.Trace = denom.Trace[1:]
		} else {
			trace := []transfertypes.Hop{transfertypes.NewHop(destinationPort, destinationChannel)}
			denom.Trace = append(trace, denom.Trace...)
		}

		reportAmount([]string{"ibc", types.ModuleName, "packet", "receive"}, data.Amount, denom)
	}

	labels = append(labels, telemetry.NewLabel(coremetrics.LabelSource, fmt.Sprintf("%t", returning)))

	telemetry.IncrCounterWithLabels(
		[]string{"ibc", types.ModuleName, "receive"},
		1,
		labels,
	)
}

func ReportOnAcknowledgement(sourcePort, sourceChannel string, success bool) {
	telemetry.IncrCounterWithLabels(
		[]string{"ibc", types.ModuleName, "acknowledgement"},
		1,
		[]metrics.Label{
			telemetry.NewLabel(coremetrics.LabelSourcePort, sourcePort),
			telemetry.NewLabel(coremetrics.LabelSourceChannel, sourceChannel),
			telemetry.NewLabel("success", fmt.Sprintf("%t", success)),
		},
	)
}

func ReportOnTimeout(sourcePort, sourceChannel string) {
	telemetry.IncrCounterWithLabels(
		[]string{"ibc", types.ModuleName, "timeout"},
		1,
		[]metrics.Label{
			telemetry.NewLabel(coremetrics.LabelSourcePort, sourcePort),
			telemetry.NewLabel(coremetrics.LabelSourceChannel, sourceChannel),
			telemetry.NewLabel(coremetrics.LabelTimeoutType, "timestamp"),
		},
	)
}

func ReportRedelivered(destinationPort, destinationChannel string) {
	telemetry.IncrCounterWithLabels(
		[]string{"ibc", types.ModuleName, "receive", "redelivered"},
		1,
		[]metrics.Label{
			telemetry.NewLabel(coremetrics.LabelDestinationPort, destinationPort),
			telemetry.NewLabel(coremetrics.LabelDestinationChannel, destinationChannel),
		},
	)
}

func reportAmount(keys []string, amount string, denom transfertypes.Denom) {
	transferAmount, ok := sdkmath.NewIntFromString(amount)
	if ok && transferAmount.IsInt64() {
		telemetry.SetGaugeWithLabels(
			keys,
			float32(transferAmount.Int64()),
			[]metrics.Label{telemetry.NewLabel(coremetrics.LabelDenom, denom.Path())},
		)
	}
}
