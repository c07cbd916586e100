package stplanr

import (
	"strings"

	"github.com/pkg/errors"
)

// ReductionKind is the function combining contributions of multiple routes to the same segment
type ReductionKind uint16

const (
	REDUCTION_SUM = ReductionKind(iota + 1)
	REDUCTION_COUNT
	REDUCTION_MEAN
	REDUCTION_MAX
)

func (iotaIdx ReductionKind) String() string {
	if !iotaIdx.valid() {
		return "unknown"
	}
	return [...]string{"sum", "count", "mean", "max"}[iotaIdx-1]
}

// valid reports whether the kind is one of the supported reductions
func (kind ReductionKind) valid() bool {
	switch kind {
	case REDUCTION_SUM, REDUCTION_COUNT, REDUCTION_MEAN, REDUCTION_MAX:
		return true
	}
	return false
}

// ParseReduction parses reduction kind from its text form
func ParseReduction(value string) (ReductionKind, error) {
	switch strings.ToLower(value) {
	case "sum":
		return REDUCTION_SUM, nil
	case "count":
		return REDUCTION_COUNT, nil
	case "mean":
		return REDUCTION_MEAN, nil
	case "max":
		return REDUCTION_MAX, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedReduction, "reduction '%s'", value)
	}
}
