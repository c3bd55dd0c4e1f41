package series

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DefaultWindow is the moving-average width used by the dashboard.
const DefaultWindow = 7

var ErrInvalidWindow = errors.New("moving average window must be positive")

// MovingAverage returns a trailing mean over at most window values ending at
// each index. The window shrinks near the start; nothing is padded.
func MovingAverage(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	out := make([]float64, len(values))
	sum := decimal.Zero
	for i, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
		if i >= window {
			sum = sum.Sub(decimal.NewFromFloat(values[i-window]))
		}
		n := min(i+1, window)
		out[i] = roundDecimal(sum.Div(decimal.NewFromInt(int64(n))))
	}
	return out, nil
}
