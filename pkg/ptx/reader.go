package ptx

import (
	"context"
	"log/slog"

	"github.com/ptxhome/ptxswitchd/internal/errors"
)

const methodGetProp = "get_prop"

// ReadStatus reads every property the model exposes. Flags are fetched in one
// batched get_prop call, names one call each since the switch only accepts a
// single name per request. Short or mistyped replies degrade to unknown values;
// only transport failures are returned as errors.
func ReadStatus(ctx context.Context, model Model, sender Sender, logger *slog.Logger) (*Status, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d, err := LookupModel(string(model))
	if err != nil {
		return nil, err
	}

	flags := d.FlagProperties()
	names := d.NameProperties()

	flagValues, err := readFlags(ctx, sender, flags, logger)
	if err != nil {
		return nil, err
	}

	nameValues := make([]Value, 0, len(names))
	for _, p := range names {
		v, err := readName(ctx, sender, p, logger)
		if err != nil {
			return nil, err
		}
		nameValues = append(nameValues, v)
	}

	// Descriptor order is flags first, then names.
	values := append(flagValues, nameValues...)
	status := newStatus(d, values)

	logger.Debug("switch: status read", "model", model, "status", status.String())
	return status, nil
}

func readFlags(ctx context.Context, sender Sender, flags []PropertyName, logger *slog.Logger) ([]Value, error) {
	out := make([]Value, len(flags))
	if len(flags) == 0 {
		return out, nil
	}

	params := make([]any, len(flags))
	for i := range params {
		params[i] = 0
	}

	reply, err := sender.Send(ctx, methodGetProp, params)
	if err != nil {
		return nil, errors.DeviceUnavailablef("get_prop %v: %w", flags, err)
	}

	if len(reply) < len(params) {
		logger.Debug("switch: malformed reply, flag count mismatch",
			"requested", len(params),
			"received", len(reply))
		return out, nil
	}

	// The switch pads the reply with a trailing value; only the requested prefix counts.
	for i := range flags {
		out[i] = flagValue(reply[i])
		if out[i].IsUnknown() {
			logger.Debug("switch: malformed reply, unexpected flag value",
				"property", flags[i],
				"value", reply[i])
		}
	}
	return out, nil
}

func readName(ctx context.Context, sender Sender, p PropertyName, logger *slog.Logger) (Value, error) {
	reply, err := sender.Send(ctx, methodGetProp, []any{string(p)})
	if err != nil {
		return Unknown(), errors.DeviceUnavailablef("get_prop %s: %w", p, err)
	}
	if len(reply) == 0 {
		logger.Debug("switch: property returned no value", "property", p)
		return Unknown(), nil
	}
	v := nameValue(reply[0])
	if v.IsUnknown() {
		logger.Debug("switch: unexpected type of switch name", "property", p, "value", reply[0])
	}
	return v, nil
}
