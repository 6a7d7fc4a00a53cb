package model

// ConversionRecord is what the provider told us for a key. Never mutated after
// it is cached.
type ConversionRecord struct {
	ExchangeRate    float64  `json:"exchange_rate"`
	Date            string   `json:"date,omitempty"`
	ConvertedAmount *float64 `json:"converted_amount,omitempty"`
}

// Clone returns a copy that shares no memory with r.
func (r ConversionRecord) Clone() ConversionRecord {
	if r.ConvertedAmount != nil {
		amount := *r.ConvertedAmount
		r.ConvertedAmount = &amount
	}
	return r
}

type ConversionResult struct {
	Source          Currency `json:"source"`
	Target          Currency `json:"target"`
	Date            string   `json:"date,omitempty"`
	ExchangeRate    float64  `json:"exchangeRate"`
	ConvertedAmount *float64 `json:"convertedAmount,omitempty"`
	FromCache       bool     `json:"fromCache"`
}

func NewConversionResult(key ConversionKey, record ConversionRecord, fromCache bool) *ConversionResult {
	record = record.Clone()
	return &ConversionResult{
		Source:          key.Source,
		Target:          key.Target,
		Date:            record.Date,
		ExchangeRate:    record.ExchangeRate,
		ConvertedAmount: record.ConvertedAmount,
		FromCache:       fromCache,
	}
}
