package model

import "errors"

var (
	// ErrEmptyInput is returned when a stage receives a series with zero records.
	ErrEmptyInput = errors.New("empty input series")
	// ErrDivisionByZero is returned when a percent change has a zero reference close.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNoData marks a fetch that failed or came back empty.
	ErrNoData = errors.New("no data available")
	// ErrInvalidWindow is returned for indicator windows with a non-positive length.
	ErrInvalidWindow = errors.New("invalid indicator window")
	// ErrUnknownChartKind is returned when a chart kind is neither line nor candlestick.
	ErrUnknownChartKind = errors.New("unknown chart kind")
	// ErrInvalidPeriod is returned for periods outside the supported set.
	ErrInvalidPeriod = errors.New("unsupported period")
	// ErrInvalidRecord is returned for bars with a non-finite price or a negative volume.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrUnknownIndicator is returned when an indicator name cannot be parsed.
	ErrUnknownIndicator = errors.New("unknown indicator")
)
