package model

import (
	"strconv"
	"strings"
)

// Currency is a currency code as sent by the caller, e.g. "USD".
type Currency string

func (c Currency) String() string {
	return string(c)
}

// ConversionKey identifies one cacheable conversion. An empty Date means no date
// was supplied and is part of the identity.
type ConversionKey struct {
	Source Currency
	Target Currency
	Date   string
}

func NewConversionKey(source, target, date string) ConversionKey {
	return ConversionKey{
		Source: Currency(source),
		Target: Currency(target),
		Date:   date,
	}
}

// String renders the key for logs and flight grouping. Fields are quoted so
// distinct keys never render the same.
func (k ConversionKey) String() string {
	return strings.Join([]string{
		strconv.Quote(k.Source.String()),
		strconv.Quote(k.Target.String()),
		strconv.Quote(k.Date),
	}, "_")
}
