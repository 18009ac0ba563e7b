package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// countryCurrency maps a country name to its ISO 4217 currency code.
var countryCurrency = map[string]string{
	"United States":  "USD",
	"Canada":         "CAD",
	"United Kingdom": "GBP",
	"European Union": "EUR",
	"Germany":        "EUR",
	"France":         "EUR",
	"Italy":          "EUR",
	"Spain":          "EUR",
	"Netherlands":    "EUR",
	"Belgium":        "EUR",
	"Austria":        "EUR",
	"Portugal":       "EUR",
	"Finland":        "EUR",
	"Ireland":        "EUR",
	"Luxembourg":     "EUR",
	"Greece":         "EUR",
	"Slovenia":       "EUR",
	"Cyprus":         "EUR",
	"Malta":          "EUR",
	"Slovakia":       "EUR",
	"Estonia":        "EUR",
	"Latvia":         "EUR",
	"Lithuania":      "EUR",
	"Croatia":        "EUR",
	"Japan":          "JPY",
	"Australia":      "AUD",
	"New Zealand":    "NZD",
	"Switzerland":    "CHF",
	"Singapore":      "SGD",
	"Hong Kong":      "HKD",
	"China":          "CNY",
	"India":          "INR",
	"South Korea":    "KRW",
	"Brazil":         "BRL",
	"Mexico":         "MXN",
	"Russia":         "RUB",
	"South Africa":   "ZAR",
	"Norway":         "NOK",
	"Sweden":         "SEK",
	"Denmark":        "DKK",
	"Poland":         "PLN",
	"Czech Republic": "CZK",
	"Hungary":        "HUF",
	"Romania":        "RON",
	"Bulgaria":       "BGN",
	"Israel":         "ILS",
	"Turkey":         "TRY",
	"Egypt":          "EGP",
	"Nigeria":        "NGN",
	"Kenya":          "KES",
	"Morocco":        "MAD",
	"Ghana":          "GHS",
	"Tunisia":        "TND",
	"Algeria":        "DZD",
	"Ethiopia":       "ETB",
	"Uganda":         "UGX",
	"Tanzania":       "TZS",
	"Zambia":         "ZMW",
	"Zimbabwe":       "ZWL",
	"Botswana":       "BWP",
	"Namibia":        "NAD",
	"Lesotho":        "LSL",
	"Swaziland":      "SZL",
	"Mauritius":      "MUR",
	"Seychelles":     "SCR",
	"Madagascar":     "MGA",
	"Comoros":        "KMF",
	"Djibouti":       "DJF",
	"Eritrea":        "ERN",
	"Somalia":        "SOS",
	"Sudan":          "SDG",
	"South Sudan":    "SSP",
	"Chad":           "XAF",
	"Central African Republic":         "XAF",
	"Cameroon":                         "XAF",
	"Equatorial Guinea":                "XAF",
	"Gabon":                            "XAF",
	"Republic of the Congo":            "XAF",
	"Democratic Republic of the Congo": "CDF",
	"Angola":              "AOA",
	"Benin":               "XOF",
	"Burkina Faso":        "XOF",
	"Cape Verde":          "CVE",
	"Cote d'Ivoire":       "XOF",
	"Gambia":              "GMD",
	"Guinea":              "GNF",
	"Guinea-Bissau":       "XOF",
	"Liberia":             "LRD",
	"Mali":                "XOF",
	"Mauritania":          "MRU",
	"Niger":               "XOF",
	"Senegal":             "XOF",
	"Sierra Leone":        "SLL",
	"Togo":                "XOF",
	"Argentina":           "ARS",
	"Bolivia":             "BOB",
	"Chile":               "CLP",
	"Colombia":            "COP",
	"Ecuador":             "USD",
	"Guyana":              "GYD",
	"Paraguay":            "PYG",
	"Peru":                "PEN",
	"Suriname":            "SRD",
	"Uruguay":             "UYU",
	"Venezuela":           "VES",
	"Belize":              "BZD",
	"Costa Rica":          "CRC",
	"El Salvador":         "USD",
	"Guatemala":           "GTQ",
	"Honduras":            "HNL",
	"Nicaragua":           "NIO",
	"Panama":              "PAB",
	"Bahamas":             "BSD",
	"Barbados":            "BBD",
	"Cuba":                "CUP",
	"Dominican Republic":  "DOP",
	"Haiti":               "HTG",
	"Jamaica":             "JMD",
	"Trinidad and Tobago": "TTD",
	"Afghanistan":         "AFN",
	"Armenia":             "AMD",
	"Azerbaijan":          "AZN",
	"Bahrain":             "BHD",
	"Bangladesh":          "BDT",
	"Bhutan":              "BTN",
	"Brunei":              "BND",
	"Cambodia":            "KHR",
	"Georgia":             "GEL",
	"Indonesia":           "IDR",
	"Iran":                "IRR",
	"Iraq":                "IQD",
	"Jordan":              "JOD",
	"Kazakhstan":          "KZT",
	"Kuwait":              "KWD",
	"Kyrgyzstan":          "KGS",
	"Laos":                "LAK",
	"Lebanon":             "LBP",
	"Malaysia":            "MYR",
	"Maldives":            "MVR",
	"Mongolia":            "MNT",
	"Myanmar":             "MMK",
	"Nepal":               "NPR",
	"North Korea":         "KPW",
	"Oman":                "OMR",
	"Pakistan":            "PKR",
	"Palestine":           "ILS",
	"Philippines":         "PHP",
	"Qatar":               "QAR",
	"Saudi Arabia":        "SAR",
	"Sri Lanka":           "LKR",
	"Syria":               "SYP",
	"Tajikistan":          "TJS",
	"Thailand":            "THB",
	"Timor-Leste":         "USD",
	"Turkmenistan":        "TMT",
	"United Arab Emirates": "AED",
	"Uzbekistan":           "UZS",
	"Vietnam":              "VND",
	"Yemen":                "YER",
	"Albania":              "ALL",
	"Andorra":              "EUR",
	"Belarus":              "BYN",
	"Bosnia and Herzegovina": "BAM",
	"Iceland":                "ISK",
	"Kosovo":                 "EUR",
	"Liechtenstein":          "CHF",
	"Moldova":                "MDL",
	"Monaco":                 "EUR",
	"Montenegro":             "EUR",
	"North Macedonia":        "MKD",
	"San Marino":             "EUR",
	"Serbia":                 "RSD",
	"Ukraine":                "UAH",
	"Vatican City":           "EUR",
	"Fiji":                   "FJD",
	"Kiribati":               "AUD",
	"Marshall Islands":       "USD",
	"Micronesia":             "USD",
	"Nauru":                  "AUD",
	"Palau":                  "USD",
	"Papua New Guinea":       "PGK",
	"Samoa":                  "WST",
	"Solomon Islands":        "SBD",
	"Tonga":                  "TOP",
	"Tuvalu":                 "AUD",
	"Vanuatu":                "VUV",
}

var currencySymbols = map[string]string{
	"AED": "د.إ",
	"AFN": "؋",
	"ALL": "L",
	"AMD": "֏",
	"ANG": "ƒ",
	"AOA": "Kz",
	"ARS": "$",
	"AUD": "A$",
	"AWG": "ƒ",
	"AZN": "₼",
	"BAM": "КМ",
	"BBD": "$",
	"BDT": "৳",
	"BGN": "лв",
	"BHD": ".د.ب",
	"BIF": "Fr",
	"BMD": "$",
	"BND": "$",
	"BOB": "Bs.",
	"BRL": "R$",
	"BSD": "$",
	"BTN": "Nu.",
	"BWP": "P",
	"BYN": "Br",
	"BZD": "$",
	"CAD": "C$",
	"CDF": "Fr",
	"CHF": "Fr",
	"CLP": "$",
	"CNY": "¥",
	"COP": "$",
	"CRC": "₡",
	"CUP": "$",
	"CVE": "$",
	"CZK": "Kč",
	"DJF": "Fr",
	"DKK": "kr",
	"DOP": "$",
	"DZD": "د.ج",
	"EGP": "£",
	"ERN": "Nfk",
	"ETB": "Br",
	"EUR": "€",
	"FJD": "$",
	"FKP": "£",
	"GBP": "£",
	"GEL": "₾",
	"GHS": "₵",
	"GIP": "£",
	"GMD": "D",
	"GNF": "Fr",
	"GTQ": "Q",
	"GYD": "$",
	"HKD": "HK$",
	"HNL": "L",
	"HRK": "kn",
	"HTG": "G",
	"HUF": "Ft",
	"IDR": "Rp",
	"ILS": "₪",
	"INR": "₹",
	"IQD": "ع.د",
	"IRR": "﷼",
	"ISK": "kr",
	"JMD": "$",
	"JOD": "د.ا",
	"JPY": "¥",
	"KES": "Sh",
	"KGS": "с",
	"KHR": "៛",
	"KMF": "Fr",
	"KPW": "₩",
	"KRW": "₩",
	"KWD": "د.ك",
	"KYD": "$",
	"KZT": "₸",
	"LAK": "₭",
	"LBP": "ل.ل",
	"LKR": "Rs",
	"LRD": "$",
	"LSL": "L",
	"LYD": "ل.د",
	"MAD": "د.م.",
	"MDL": "L",
	"MGA": "Ar",
	"MKD": "ден",
	"MMK": "Ks",
	"MNT": "₮",
	"MOP": "P",
	"MRU": "UM",
	"MUR": "₨",
	"MVR": ".ރ",
	"MWK": "MK",
	"MXN": "$",
	"MYR": "RM",
	"MZN": "MT",
	"NAD": "$",
	"NGN": "₦",
	"NIO": "C$",
	"NOK": "kr",
	"NPR": "₨",
	"NZD": "NZ$",
	"OMR": "ر.ع.",
	"PAB": "B/.",
	"PEN": "S/",
	"PGK": "K",
	"PHP": "₱",
	"PKR": "₨",
	"PLN": "zł",
	"PYG": "₲",
	"QAR": "ر.ق",
	"RON": "lei",
	"RSD": "дин.",
	"RUB": "₽",
	"RWF": "Fr",
	"SAR": "ر.س",
	"SBD": "$",
	"SCR": "₨",
	"SDG": "ج.س.",
	"SEK": "kr",
	"SGD": "S$",
	"SHP": "£",
	"SLL": "Le",
	"SOS": "Sh",
	"SRD": "$",
	"SSP": "£",
	"STN": "Db",
	"SYP": "ل.س",
	"SZL": "L",
	"THB": "฿",
	"TJS": "ЅМ",
	"TMT": "m",
	"TND": "د.ت",
	"TOP": "T$",
	"TRY": "₺",
	"TTD": "$",
	"TWD": "NT$",
	"TZS": "Sh",
	"UAH": "₴",
	"UGX": "Sh",
	"USD": "$",
	"UYU": "$",
	"UZS": "so'm",
	"VES": "Bs.S",
	"VND": "₫",
	"VUV": "Vt",
	"WST": "T",
	"XAF": "Fr",
	"XCD": "$",
	"XOF": "Fr",
	"XPF": "Fr",
	"YER": "﷼",
	"ZAR": "R",
	"ZMW": "ZK",
	"ZWL": "$",
}

// zeroDecimalCurrencies are displayed with no fractional part.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
}

// threeDecimalCurrencies subdivide into 1000 units.
var threeDecimalCurrencies = map[string]bool{
	"BHD": true,
	"IQD": true,
	"JOD": true,
	"KWD": true,
	"OMR": true,
}

// CurrencyForCountry resolves a country name to its currency code,
// defaulting to USD for unknown countries.
func CurrencyForCountry(country string) string {
	if code, ok := countryCurrency[country]; ok {
		return code
	}
	return "USD"
}

// CurrencySymbol returns the display symbol for a currency code. An
// unknown code is its own symbol.
func CurrencySymbol(code string) string {
	if symbol, ok := currencySymbols[strings.ToUpper(code)]; ok {
		return symbol
	}
	return code
}

// FormatPrice renders an amount for display. Zero-decimal currencies
// round to whole units with thousands separators, dinar-family
// currencies keep three decimals, everything else keeps two.
func FormatPrice(amount decimal.Decimal, code string) string {
	upper := strings.ToUpper(code)
	symbol := CurrencySymbol(upper)

	switch {
	case zeroDecimalCurrencies[upper]:
		return symbol + groupThousands(amount.Round(0).StringFixed(0))
	case threeDecimalCurrencies[upper]:
		return symbol + amount.StringFixed(3)
	default:
		return symbol + amount.StringFixed(2)
	}
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

type CurrencyService struct {
	converterURL string
	client       *http.Client

	events EventCountrySource
}

// EventCountrySource is the slice of the event store the currency
// resolver needs.
type EventCountrySource interface {
	FindCountriesByOrganizer(ctx context.Context, organizerID uint) ([]string, error)
}

func NewCurrencyService(converterURL string, events EventCountrySource) *CurrencyService {
	return &CurrencyService{
		converterURL: converterURL,
		client:       &http.Client{},
		events:       events,
	}
}

type convertRequest struct {
	Amount decimal.Decimal `json:"amount"`
	From   string          `json:"from"`
	To     string          `json:"to"`
}

type convertResponse struct {
	ConvertedAmount *decimal.Decimal `json:"convertedAmount"`
}

// Convert asks the remote converter for an amount in another currency.
// Conversion failures never propagate as errors, the caller gets the
// original amount back with ok=false and decides how to degrade.
func (s *CurrencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	if strings.EqualFold(from, to) {
		return amount, true
	}

	body, err := json.Marshal(convertRequest{
		Amount: amount,
		From:   strings.ToUpper(from),
		To:     strings.ToUpper(to),
	})
	if err != nil {
		zap.L().Error("currency conversion failed", zap.Error(err))
		return amount, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.converterURL, bytes.NewReader(body))
	if err != nil {
		zap.L().Error("currency conversion failed", zap.Error(err))
		return amount, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		zap.L().Error("currency conversion failed", zap.Error(err))
		return amount, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		zap.L().Error("currency conversion failed", zap.Int("status", resp.StatusCode))
		return amount, false
	}

	var converted convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&converted); err != nil {
		zap.L().Error("currency conversion failed", zap.Error(err))
		return amount, false
	}

	if converted.ConvertedAmount == nil {
		return amount, false
	}

	return *converted.ConvertedAmount, true
}

// OrganizerCurrency picks the settlement currency for an organizer.
// Organizers running events in more than one country settle in SGD,
// single-country organizers settle in that country's currency.
func (s *CurrencyService) OrganizerCurrency(ctx context.Context, organizerID uint) (string, error) {
	countries, err := s.events.FindCountriesByOrganizer(ctx, organizerID)
	if err != nil {
		return "", fmt.Errorf("s.events.FindCountriesByOrganizer -> %w", err)
	}

	switch len(countries) {
	case 0:
		return "SGD", nil
	case 1:
		return CurrencyForCountry(countries[0]), nil
	default:
		return "SGD", nil
	}
}
