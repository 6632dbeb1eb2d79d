package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterCollectors(reg) })
	// a second registration on the same registry must fail loudly
	require.Panics(t, func() { RegisterCollectors(reg) })
}

func TestOutcome(t *testing.T) {
	missing := errors.New("missing")
	isMissing := func(err error) bool { return errors.Is(err, missing) }
	require.Equal(t, "ok", Outcome(nil, isMissing))
	require.Equal(t, "not_found", Outcome(missing, isMissing))
	require.Equal(t, "error", Outcome(errors.New("boom"), isMissing))
	require.Equal(t, "error", Outcome(missing, nil))
}
