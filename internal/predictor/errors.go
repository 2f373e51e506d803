package predictor

import "errors"

var (
	// ErrPredictorDisabled indicates no regressor is configured
	ErrPredictorDisabled = errors.New("predictor disabled")

	// ErrPredictorUnavailable indicates the regressor is unreachable
	ErrPredictorUnavailable = errors.New("predictor unavailable")

	// ErrInvalidPrediction indicates the regressor answered with an unusable payload
	ErrInvalidPrediction = errors.New("invalid prediction response")

	// ErrConnectionFailed indicates the transport could not be set up
	ErrConnectionFailed = errors.New("predictor connection failed")
)
