package types

import "time"

type Currency string

const (
	CurrencyCOP  Currency = "COP"
	CurrencyUSD  Currency = "USD"
	CurrencyUSDT Currency = "USDT"
	CurrencyEUR  Currency = "EUR"
	CurrencyVES  Currency = "VES"
)

func (c Currency) String() string {
	return string(c)
}

type RateType string

const (
	RateTypeMID  RateType = "MID"
	RateTypeBUY  RateType = "BUY"
	RateTypeSELL RateType = "SELL"
)

func (r RateType) String() string {
	return string(r)
}

type Source string

func (s Source) String() string {
	return string(s)
}

// Field identifies a single reconciled rate of a RateSet
type Field string

const (
	FieldUSDVESOfficial Field = "usd_ves_official" // VES per 1 USD (BCV)
	FieldUSDVESParallel Field = "usd_ves_parallel" // VES per 1 USD (parallel market)
	FieldEURUSD         Field = "eur_usd"          // USD per 1 EUR
	FieldEURVESOfficial Field = "eur_ves_official" // VES per 1 EUR (BCV)
	FieldUSDTCOPBuy     Field = "usdt_cop_buy"     // COP cost of 1 USDT
	FieldUSDTVESSell    Field = "usdt_ves_sell"    // VES received for 1 USDT
	FieldUSDCOP         Field = "usd_cop"          // COP per 1 USD (forex)
)

// Fields lists every rate field in display order
var Fields = []Field{
	FieldUSDVESOfficial,
	FieldUSDVESParallel,
	FieldEURUSD,
	FieldEURVESOfficial,
	FieldUSDTCOPBuy,
	FieldUSDTVESSell,
	FieldUSDCOP,
}

func (f Field) String() string {
	return string(f)
}

// Label returns the human-readable pair label for the field
func (f Field) Label() string {
	switch f {
	case FieldUSDVESOfficial:
		return "USD/VES official (BCV)"
	case FieldUSDVESParallel:
		return "USD/VES parallel"
	case FieldEURUSD:
		return "EUR/USD"
	case FieldEURVESOfficial:
		return "EUR/VES official (BCV)"
	case FieldUSDTCOPBuy:
		return "USDT/COP (BUY)"
	case FieldUSDTVESSell:
		return "USDT/VES (SELL)"
	case FieldUSDCOP:
		return "USD/COP"
	default:
		return string(f)
	}
}

// ExchangeRate is a single reading yielded by a rate provider
type ExchangeRate struct {
	FetchedAt time.Time `json:"fetched_at"`
	Field     Field     `json:"field"`
	Base      Currency  `json:"base"`
	Target    Currency  `json:"target"`
	RateType  RateType  `json:"rate_type"`
	Source    Source    `json:"source"`
	Rate      float64   `json:"rate"`
}

// FetchParams biases trade-size dependent lookups (P2P).
// Zero values mean no bias
type FetchParams struct {
	COPAmount float64
	VESAmount float64
}

// User is the authenticated caller, as resolved from a session
type User struct {
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Plan      string     `json:"plan"`
	Active    bool       `json:"active"`
}

// Usable reports if the user account is active and its plan has not expired
func (u *User) Usable(now time.Time) bool {
	if u == nil || !u.Active {
		return false
	}

	return u.ExpiresAt == nil || u.ExpiresAt.After(now)
}
